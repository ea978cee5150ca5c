// This file is part of the dwarfcache module.
//
// dwarfcache is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dwarfcache is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dwarfcache.  If not, see <https://www.gnu.org/licenses/>.

package test

import "strings"

// Writer is an implementation of io.Writer that accumulates what has been
// written to it so that it can be compared against an expected string.
type Writer struct {
	b strings.Builder
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.b.Write(p)
}

// Compare the accumulated output with the expected string.
func (w *Writer) Compare(expected string) bool {
	return w.b.String() == expected
}

// Clear the accumulated output.
func (w *Writer) Clear() {
	w.b.Reset()
}

// String returns the accumulated output.
func (w *Writer) String() string {
	return w.b.String()
}
