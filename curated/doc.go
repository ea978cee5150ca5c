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

// Package curated provides error values that can be tested against the
// pattern they were created with. Packages declare their error patterns as
// string constants:
//
//	const InvalidDwarf = "invalid dwarf: %v"
//
// and create errors with Errorf():
//
//	return curated.Errorf(InvalidDwarf, "bad opcode")
//
// Callers test with Is() for an exact pattern match or Has() for a match
// anywhere in the chain of wrapped values. Because formatting is deferred
// until Error() is called, wrapping a curated error inside another curated
// error preserves the inner pattern for Has().
package curated
