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

package dwarfcache

import (
	"github.com/jetsetilly/dwarfcache/curated"
	"github.com/jetsetilly/dwarfcache/objfile"
)

// the number of buckets in a public names table.
const symHashSize = 1023

// CalcSymbolNameHash returns the bucket of a symbol name in a public names
// table. the version suffix of a versioned symbol ("name@@version") is not
// part of the hash.
func CalcSymbolNameHash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		if s[i] == '@' && i+1 < len(s) && s[i+1] == '@' {
			break
		}
		h = (h << 4) + uint32(s[i])
		g := h & 0xf0000000
		if g != 0 {
			h ^= g >> 24
		}
		h &^= g
	}
	return h % symHashSize
}

func (tbl *PubNamesTable) add(id uint64, hash uint32) {
	tbl.Entries = append(tbl.Entries, PubNamesInfo{ID: id, Next: tbl.Hash[hash]})
	tbl.Hash[hash] = uint32(len(tbl.Entries) - 1)
}

// loadPubNames reads an explicit public names or public types section. entry
// offsets in the section are relative to their unit; the table stores
// absolute entity identifiers.
func (c *Cache) loadPubNames(debugInfo *objfile.Section, sec *objfile.Section, tbl *PubNamesTable) error {
	rd := c.rd

	tbl.Hash = make([]uint32, symHashSize)
	tbl.Entries = make([]PubNamesInfo, 1, sec.Size/16+16)

	rd.EnterSection(nil, sec, 0)
	defer rd.ExitSection()

	for rd.Pos() < sec.Size {
		size := uint64(rd.ReadU4())
		dwarf64 := false
		if size == 0xffffffff {
			dwarf64 = true
			size = rd.ReadU8()
		}
		if rd.Err() != nil {
			return rd.Err()
		}
		next := rd.Pos() + size

		if rd.ReadU2() == 2 {
			var refSize uint8 = 4
			if dwarf64 {
				refSize = 8
			}
			unitOffs := rd.ReadUX(refSize)
			unitSize := rd.ReadUX(refSize)
			if rd.Err() != nil {
				return rd.Err()
			}
			if unitOffs+unitSize > debugInfo.Size {
				return curated.Errorf(InvalidDwarf, "invalid unit size in pub names section")
			}

			for {
				objOffs := rd.ReadUX(refSize)
				if rd.Err() != nil {
					return rd.Err()
				}
				if objOffs == 0 {
					break
				}
				if objOffs >= unitSize {
					return curated.Errorf(InvalidDwarf, "invalid object offset in pub names section")
				}
				name := rd.ReadString()
				if rd.Err() != nil {
					return rd.Err()
				}
				tbl.add(debugInfo.Addr+unitOffs+objOffs, CalcSymbolNameHash(name))
			}
		}

		if next < rd.Pos() {
			return curated.Errorf(InvalidDwarf, "invalid pub names section")
		}
		rd.SetPos(next)
	}

	return rd.Err()
}

// createPubNames synthesises a public names table from the externally
// visible definitions of every compilation unit. used when the file carries
// no .debug_pubnames section.
func (c *Cache) createPubNames(tbl *PubNamesTable) error {
	tbl.Hash = make([]uint32, symHashSize)
	tbl.Entries = make([]PubNamesInfo, 1, 16)

	for unit := c.CompUnits; unit != nil; unit = unit.Sibling {
		obj, err := c.GetChildren(unit)
		if err != nil {
			return err
		}
		for ; obj != nil; obj = obj.Sibling {
			if obj.Flags&FlagExternal != 0 && obj.Definition == nil && obj.Name != "" {
				tbl.add(obj.ID, CalcSymbolNameHash(obj.Name))
			}
		}
	}

	return nil
}

// FindPubObjects calls the visit function for every object in the table with
// the given name, in reverse order of insertion. iteration stops when the
// visit function returns false.
func (c *Cache) FindPubObjects(tbl *PubNamesTable, name string, visit func(*ObjectInfo) bool) {
	idx := tbl.Hash[CalcSymbolNameHash(name)]
	for idx != 0 {
		entry := tbl.Entries[idx]
		obj := FindObject(c, entry.ID)
		if obj != nil && obj.Name == name {
			if !visit(obj) {
				return
			}
		}
		idx = entry.Next
	}
}
