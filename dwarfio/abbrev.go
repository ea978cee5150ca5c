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

package dwarfio

import (
	"github.com/jetsetilly/dwarfcache/leb128"
)

type attrForm struct {
	attr uint16
	form uint16
}

type abbrev struct {
	tag      uint16
	children bool
	attrs    []attrForm
}

// abbrevTable maps the abbreviation codes of one compilation unit to the
// decoded declarations.
type abbrevTable struct {
	entries map[uint64]*abbrev
}

// LoadAbbrevTable decodes the whole of .debug_abbrev into tables keyed by
// their offset within the section. compilation unit headers refer to their
// table by that offset.
//
// a file without a .debug_abbrev section is not an error: DWARF version 1
// has no abbreviations.
func (r *Reader) LoadAbbrevTable() error {
	sec := r.file.SectionByName(".debug_abbrev")
	if sec == nil {
		return nil
	}

	data := sec.Data
	pos := 0
	tableStart := uint64(0)
	table := &abbrevTable{entries: make(map[uint64]*abbrev)}

	uleb := func() uint64 {
		v, n := leb128.DecodeULEB128(data[pos:])
		pos += n
		return v
	}

	for pos < len(data) {
		code := uleb()
		if code == 0 {
			// end of one table. the next table, if any, starts at the
			// current position
			r.abbrev[tableStart] = table
			tableStart = uint64(pos)
			table = &abbrevTable{entries: make(map[uint64]*abbrev)}
			continue
		}

		ab := &abbrev{}
		ab.tag = uint16(uleb())
		if pos >= len(data) {
			r.fail("truncated abbreviation table")
			return r.err
		}
		ab.children = data[pos] != 0
		pos++

		for {
			attr := uleb()
			form := uleb()
			if attr == 0 && form == 0 {
				break
			}
			ab.attrs = append(ab.attrs, attrForm{attr: uint16(attr), form: uint16(form)})
			if pos > len(data) {
				r.fail("truncated abbreviation table")
				return r.err
			}
		}

		table.entries[code] = ab
	}

	// a table that runs to the very end of the section without a zero code
	if len(table.entries) > 0 {
		r.abbrev[tableStart] = table
	}

	return r.err
}
