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

package objfile_test

import (
	"testing"

	"github.com/jetsetilly/dwarfcache/objfile"
	"github.com/jetsetilly/dwarfcache/test"
)

func testFile() *objfile.File {
	f := &objfile.File{Name: "fixture.elf"}
	f.Sections = append(f.Sections, nil)
	f.Sections = append(f.Sections, &objfile.Section{
		File:  f,
		Name:  ".text",
		Addr:  0x1000,
		Size:  0x100,
		Flags: objfile.SectionFlagAlloc | objfile.SectionFlagExecInst,
	})
	f.Sections = append(f.Sections, &objfile.Section{
		File: f,
		Name: ".debug_info",
		Size: 0x100,
	})
	return f
}

func TestSectionByName(t *testing.T) {
	f := testFile()

	sec := f.SectionByName(".text")
	test.DemandSuccess(t, sec != nil)
	test.ExpectEquality(t, sec.Addr, uint64(0x1000))

	test.ExpectSuccess(t, f.SectionByName(".comment") == nil)
}

func TestSectionByAddress(t *testing.T) {
	f := testFile()

	sec := f.SectionByAddress(0x1080)
	test.DemandSuccess(t, sec != nil)
	test.ExpectEquality(t, sec.Name, ".text")

	// the address one past the end of the section is not inside it
	test.ExpectSuccess(t, f.SectionByAddress(0x1100) == nil)

	// unallocated sections are never found by address, even though the
	// .debug_info section notionally covers address zero
	test.ExpectSuccess(t, f.SectionByAddress(0x10) == nil)
}

func TestCloseListener(t *testing.T) {
	f := testFile()

	var closed []*objfile.File
	objfile.AddCloseListener(func(file *objfile.File) {
		closed = append(closed, file)
	})

	f.Close()
	test.DemandEquality(t, len(closed), 1)
	test.ExpectEquality(t, closed[0], f)
	test.ExpectSuccess(t, f.Sections == nil)
}
