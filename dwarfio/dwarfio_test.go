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

package dwarfio_test

import (
	"testing"

	"github.com/jetsetilly/dwarfcache/dwarf"
	"github.com/jetsetilly/dwarfcache/dwarfio"
	"github.com/jetsetilly/dwarfcache/objfile"
	"github.com/jetsetilly/dwarfcache/test"
)

func testFile(data []byte, str []byte) *objfile.File {
	f := &objfile.File{Name: "fixture.elf"}
	f.Sections = append(f.Sections, nil)
	f.Sections = append(f.Sections, &objfile.Section{
		File: f,
		Name: ".debug_info",
		Size: uint64(len(data)),
		Data: data,
	})
	if str != nil {
		f.Sections = append(f.Sections, &objfile.Section{
			File: f,
			Name: ".debug_str",
			Size: uint64(len(str)),
			Data: str,
		})
	}
	f.Sections = append(f.Sections, &objfile.Section{
		File:  f,
		Name:  ".text",
		Addr:  0x1000,
		Size:  0x100,
		Flags: objfile.SectionFlagAlloc,
	})
	return f
}

func TestReaderPrimitives(t *testing.T) {
	data := []byte{
		0x12,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0xf0, 0xde, 0xbc, 0x9a, 0x78, 0x56, 0x34, 0x12,
		0xb9, 0x64, // uleb 12857
		0x7e, // sleb -2
		'a', 'b', 'c', 0x00,
	}

	f := testFile(data, nil)
	r := dwarfio.NewReader(f)

	r.EnterSection(nil, f.Sections[1], 0)
	test.ExpectEquality(t, r.ReadU1(), uint8(0x12))
	test.ExpectEquality(t, r.ReadU2(), uint16(0x1234))
	test.ExpectEquality(t, r.ReadU4(), uint32(0x12345678))
	test.ExpectEquality(t, r.ReadU8(), uint64(0x123456789abcdef0))
	test.ExpectEquality(t, r.ReadULEB128(), uint64(12857))
	test.ExpectEquality(t, r.ReadSLEB128(), int64(-2))
	test.ExpectEquality(t, r.ReadString(), "abc")
	test.ExpectEquality(t, r.Pos(), uint64(len(data)))
	test.DemandSuccess(t, r.Err())

	// positioning
	r.SetPos(1)
	test.ExpectEquality(t, r.ReadU2(), uint16(0x1234))
	r.Skip(4)
	test.ExpectEquality(t, r.Pos(), uint64(7))
	r.ExitSection()
}

func TestReaderSectionStack(t *testing.T) {
	f := testFile([]byte{0x01, 0x02, 0x03, 0x04}, nil)
	r := dwarfio.NewReader(f)

	r.EnterSection(nil, f.Sections[1], 0)
	test.ExpectEquality(t, r.ReadU1(), uint8(0x01))

	// a nested entry into the same section has its own position
	r.EnterSection(nil, f.Sections[1], 3)
	test.ExpectEquality(t, r.ReadU1(), uint8(0x04))
	r.ExitSection()

	// the outer position is restored
	test.ExpectEquality(t, r.ReadU1(), uint8(0x02))
	r.ExitSection()
}

func TestReaderStickyError(t *testing.T) {
	f := testFile([]byte{0x01}, nil)
	r := dwarfio.NewReader(f)

	r.EnterSection(nil, f.Sections[1], 0)
	test.ExpectEquality(t, r.ReadU1(), uint8(0x01))
	test.DemandSuccess(t, r.Err())

	// reading past the end of the section fails and the error sticks
	test.ExpectEquality(t, r.ReadU4(), uint32(0))
	test.DemandFailure(t, r.Err())
	test.ExpectEquality(t, r.ReadU1(), uint8(0))
	test.DemandFailure(t, r.Err())

	r.ClearErr()
	test.DemandSuccess(t, r.Err())
	r.ExitSection()
}

func TestReaderAttributes(t *testing.T) {
	data := []byte{
		'i', 'n', 'l', 0x00, // string
		0x04, 0x00, 0x00, 0x00, // strp offset 4
		0x2a, // data1
		0x02, 0xaa, 0xbb, // block1
		0x10, 0x10, 0x00, 0x00, // addr 0x1010
		0x08, 0x00, 0x00, 0x00, // ref4, unit relative
	}
	str := []byte("str\x00indirect\x00")

	f := testFile(data, str)
	r := dwarfio.NewReader(f)

	desc := &dwarfio.UnitDescriptor{
		Section:     f.Sections[1],
		Version:     2,
		AddressSize: 4,
		UnitOffs:    0,
		UnitSize:    uint64(len(data)),
	}

	r.EnterSection(desc, f.Sections[1], 0)

	r.ReadAttribute(dwarf.AttrName, dwarf.FormString)
	test.DemandSuccess(t, r.Err())
	test.ExpectEquality(t, string(r.FormBytes), "inl")

	r.ReadAttribute(dwarf.AttrName, dwarf.FormStrp)
	test.DemandSuccess(t, r.Err())
	test.ExpectEquality(t, string(r.FormBytes), "indirect")

	r.ReadAttribute(dwarf.AttrByteSize, dwarf.FormData1)
	test.DemandSuccess(t, r.Err())
	test.ExpectEquality(t, r.FormData, uint64(0x2a))
	test.DemandEquality(t, len(r.FormBytes), 1)

	r.ReadAttribute(dwarf.AttrLocation, dwarf.FormBlock1)
	test.DemandSuccess(t, r.Err())
	test.DemandEquality(t, len(r.FormBytes), 2)
	test.ExpectEquality(t, r.FormBytes[0], uint8(0xaa))

	r.ReadAttribute(dwarf.AttrLowPC, dwarf.FormAddr)
	test.DemandSuccess(t, r.Err())
	test.ExpectEquality(t, r.FormData, uint64(0x1010))
	test.DemandSuccess(t, r.FormSection != nil)
	test.ExpectEquality(t, r.FormSection.Name, ".text")

	// a unit relative reference resolves to an absolute identifier
	r.ReadAttribute(dwarf.AttrType, dwarf.FormRef4)
	test.DemandSuccess(t, r.Err())
	test.ExpectEquality(t, r.FormData, uint64(8))
	test.ExpectEquality(t, r.FormSection, f.Sections[1])

	r.ExitSection()
}
