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

// Package logger is the central log for the dwarfcache module. it is used
// for recoverable oddities found while parsing debug information. structural
// corruption is never logged, it is always reported through an error value.
package logger

import (
	"fmt"
	"io"
	"strings"
)

// Permission implementations say whether the caller is allowed to create new
// log entries.
type Permission interface {
	AllowLogging() bool
}

type allow struct{}

func (_ allow) AllowLogging() bool {
	return true
}

// Allow is a ready-made Permission that always permits logging.
var Allow Permission = allow{}

// the maximum number of entries in a logger before the earliest entries are
// discarded.
const maxEntries = 256

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.detail)
}

// Logger is an instance of the central log. the zero value is not usable,
// use NewLogger().
type Logger struct {
	entries []entry

	// if echo is not nil, new entries are written to it as they arrive
	echo io.Writer
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger() *Logger {
	return &Logger{
		entries: make([]entry, 0, maxEntries),
	}
}

// central is the package-wide logger instance. the package level functions
// forward to it.
var central = NewLogger()

// Log adds a new entry to the logger.
func (l *Logger) Log(perm Permission, tag string, detail string) {
	if !perm.AllowLogging() {
		return
	}

	// split multi-line details into separate entries so that the log reads
	// well when written out
	for _, d := range strings.Split(detail, "\n") {
		if d == "" {
			continue
		}

		e := entry{tag: tag, detail: d}

		if len(l.entries) >= maxEntries {
			l.entries = l.entries[1:]
		}
		l.entries = append(l.entries, e)

		if l.echo != nil {
			l.echo.Write([]byte(e.String() + "\n"))
		}
	}
}

// Logf adds a new formatted entry to the logger.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	l.Log(perm, tag, fmt.Sprintf(format, args...))
}

// Clear all entries from the logger.
func (l *Logger) Clear() {
	l.entries = l.entries[:0]
}

// Write the entire log to the io.Writer.
func (l *Logger) Write(output io.Writer) {
	if output == nil {
		return
	}
	for _, e := range l.entries {
		io.WriteString(output, e.String()+"\n")
	}
}

// Tail writes the last number of entries to the io.Writer. a number of zero
// or less writes nothing.
func (l *Logger) Tail(output io.Writer, number int) {
	if output == nil || number <= 0 {
		return
	}

	s := len(l.entries) - number
	if s < 0 {
		s = 0
	}
	for _, e := range l.entries[s:] {
		io.WriteString(output, e.String()+"\n")
	}
}

// SetEcho prints entries to the io.Writer as they arrive. a nil value stops
// any echoing.
func (l *Logger) SetEcho(output io.Writer, writeRecent bool) {
	l.echo = output
	if output != nil && writeRecent {
		l.Write(output)
	}
}
