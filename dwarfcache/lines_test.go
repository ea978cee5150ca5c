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
	"sort"
	"testing"

	"github.com/jetsetilly/dwarfcache/dwarf"
	"github.com/jetsetilly/dwarfcache/test"
)

// a version 2 line number program using the opcode geometry of the DWARF
// standard examples: opcode base 13, line base -5, line range 14.
func TestLineNumbersV2(t *testing.T) {
	info := &secBuilder{}
	h := info.unitHeader(2, 0)
	info.uleb(abCompUnit).str("main.c").u4(0x1000).u4(0x1040).u4(0).str("/src")
	info.uleb(0)
	info.endUnit(h)

	lines := &secBuilder{}
	lenAt := lines.pos()
	lines.u4(0)
	lines.u2(2) // version
	hdrAt := lines.pos()
	lines.u4(0) // header size, patched below
	hdrStart := lines.pos()
	lines.u1(1)    // minimum instruction length
	lines.u1(1)    // default is_stmt
	lines.u1(0xfb) // line base -5
	lines.u1(14)   // line range
	lines.u1(13)   // opcode base
	lines.bytes(0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 0, 1)
	lines.u1(0) // no directories
	lines.str("a.c").uleb(0).uleb(0).uleb(0)
	lines.u1(0) // end of file names
	lines.patchU4(hdrAt, uint32(lines.pos()-hdrStart))

	// program
	lines.u1(0).uleb(5).u1(dwarf.LNESetAddress).u4(0x1000)
	lines.u1(dwarf.LNSAdvanceLine).sleb(10)
	lines.u1(0xe0) // special: line -4, address +15
	lines.u1(0).uleb(1).u1(dwarf.LNEEndSequence)
	lines.patchU4(lenAt, uint32(lines.pos()-lenAt-4))

	f := testFile(map[string][]byte{
		".debug_abbrev": testAbbrev(),
		".debug_info":   info.b,
		".debug_line":   lines.b,
	})

	c, err := GetCache(f)
	test.DemandSuccess(t, err)
	unit := c.CompUnits.CompUnit

	err = c.LoadLineNumbers(unit)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, unit.LineInfoLoaded, true)

	// file zero is the unit name, file one the first file of the header
	test.DemandEquality(t, len(unit.Files), 2)
	test.ExpectEquality(t, unit.Files[0].Name, "main.c")
	test.ExpectEquality(t, unit.Files[0].Dir, "/src")
	test.ExpectEquality(t, unit.Files[1].Name, "a.c")
	test.ExpectEquality(t, unit.Files[1].Dir, "/src")

	// the special opcode advanced the line by -5 + (211 % 14) = -4 from 11,
	// and the address by 211 / 14 = 15
	test.DemandEquality(t, len(unit.States), 2)
	test.ExpectEquality(t, unit.States[0].File, uint32(1))
	test.ExpectEquality(t, unit.States[0].Line, uint32(7))
	test.ExpectEquality(t, unit.States[0].Address, uint64(0x100f))
	test.ExpectEquality(t, unit.States[0].Flags, uint16(LineIsStmt))

	test.ExpectEquality(t, unit.States[1].Flags&LineEndSequence != 0, true)
	test.ExpectEquality(t, unit.States[1].Address, uint64(0x100f))

	// states are address sorted, the index is position sorted
	test.ExpectEquality(t, sort.SliceIsSorted(unit.States, func(i, j int) bool {
		return unit.States[i].Address < unit.States[j].Address
	}), true)
	test.DemandEquality(t, len(unit.StatesIndex), 2)

	// loading is idempotent
	err = c.LoadLineNumbers(unit)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(unit.States), 2)

	// the unit's files joined the cache wide file name hash
	var found []*FileInfo
	c.FindFileInfos("a.c", func(file *FileInfo) bool {
		found = append(found, file)
		return true
	})
	test.DemandEquality(t, len(found), 1)
	test.ExpectEquality(t, found[0].CompUnit, unit)
}

// an unknown standard opcode is a structural error.
func TestLineNumbersBadOpcode(t *testing.T) {
	info := &secBuilder{}
	h := info.unitHeader(2, 0)
	info.uleb(abCompUnit).str("main.c").u4(0x1000).u4(0x1040).u4(0).str("/src")
	info.uleb(0)
	info.endUnit(h)

	lines := &secBuilder{}
	lenAt := lines.pos()
	lines.u4(0)
	lines.u2(2)
	hdrAt := lines.pos()
	lines.u4(0)
	hdrStart := lines.pos()
	lines.u1(1)
	lines.u1(1)
	lines.u1(0xfb)
	lines.u1(14)
	lines.u1(14) // opcode base of 14 leaves opcode 13 undefined
	lines.bytes(0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 0, 1, 0)
	lines.u1(0)
	lines.u1(0)
	lines.patchU4(hdrAt, uint32(lines.pos()-hdrStart))
	lines.u1(13) // undefined standard opcode
	lines.patchU4(lenAt, uint32(lines.pos()-lenAt-4))

	f := testFile(map[string][]byte{
		".debug_abbrev": testAbbrev(),
		".debug_info":   info.b,
		".debug_line":   lines.b,
	})

	c, err := GetCache(f)
	test.DemandSuccess(t, err)
	unit := c.CompUnits.CompUnit

	err = c.LoadLineNumbers(unit)
	test.DemandFailure(t, err)

	// the unit's line tables were discarded and the unit is not marked as
	// loaded
	test.ExpectEquality(t, unit.LineInfoLoaded, false)
	test.ExpectSuccess(t, unit.States == nil)
}
