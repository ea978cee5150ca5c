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
	"encoding/binary"

	"github.com/jetsetilly/dwarfcache/objfile"
)

// secBuilder encodes little-endian section bytes for the test fixtures.
type secBuilder struct {
	b []byte
}

func (s *secBuilder) u1(v uint8) *secBuilder {
	s.b = append(s.b, v)
	return s
}

func (s *secBuilder) u2(v uint16) *secBuilder {
	s.b = binary.LittleEndian.AppendUint16(s.b, v)
	return s
}

func (s *secBuilder) u4(v uint32) *secBuilder {
	s.b = binary.LittleEndian.AppendUint32(s.b, v)
	return s
}

func (s *secBuilder) uleb(v uint64) *secBuilder {
	for {
		c := uint8(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		s.b = append(s.b, c)
		if v == 0 {
			break
		}
	}
	return s
}

func (s *secBuilder) sleb(v int64) *secBuilder {
	for {
		c := uint8(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			s.b = append(s.b, c)
			break
		}
		s.b = append(s.b, c|0x80)
	}
	return s
}

func (s *secBuilder) str(v string) *secBuilder {
	s.b = append(s.b, v...)
	s.b = append(s.b, 0)
	return s
}

func (s *secBuilder) bytes(v ...byte) *secBuilder {
	s.b = append(s.b, v...)
	return s
}

func (s *secBuilder) pos() int {
	return len(s.b)
}

// patchU4 writes a value over a previously reserved position.
func (s *secBuilder) patchU4(at int, v uint32) {
	binary.LittleEndian.PutUint32(s.b[at:], v)
}

// unitHeader writes a 32-bit DWARF unit header, returning the position of
// the length field for later patching.
func (s *secBuilder) unitHeader(version uint16, abbrevOffs uint32) int {
	at := s.pos()
	s.u4(0)
	s.u2(version)
	s.u4(abbrevOffs)
	s.u1(4) // address size
	return at
}

// endUnit patches the unit length: everything after the length field.
func (s *secBuilder) endUnit(at int) {
	s.patchU4(at, uint32(s.pos()-at-4))
}

// testFile assembles an object file model from named section bytes. a .text
// section at 0x1000 is always present.
func testFile(secs map[string][]byte) *objfile.File {
	f := &objfile.File{
		Name:     "fixture.elf",
		Sections: []*objfile.Section{nil},
	}

	text := &objfile.Section{
		File:  f,
		Name:  ".text",
		Addr:  0x1000,
		Size:  0x1000,
		Flags: objfile.SectionFlagAlloc | objfile.SectionFlagExecInst,
		Data:  make([]byte, 0x1000),
	}
	f.Sections = append(f.Sections, text)

	for name, data := range secs {
		f.Sections = append(f.Sections, &objfile.Section{
			File: f,
			Name: name,
			Size: uint64(len(data)),
			Data: data,
		})
	}

	return f
}

// testContext is a Context implementation for the property reading tests.
// memory reads are served from the mem map one byte at a time; expressions
// are counted and left alone.
type testContext struct {
	mem       map[uint64]byte
	regs      map[int][]byte
	evaluated int
}

func (ctx *testContext) ReadMem(addr uint64, buf []byte) error {
	for i := range buf {
		buf[i] = ctx.mem[addr+uint64(i)]
	}
	return nil
}

func (ctx *testContext) FrameRegBytes(frame int, reg *Register) ([]byte, error) {
	return ctx.regs[reg.ID], nil
}

func (ctx *testContext) MapToRunTimeAddress(file *objfile.File, sec *objfile.Section, addr uint64) (uint64, error) {
	return addr, nil
}

func (ctx *testContext) EvaluateExpression(v *PropertyValue) error {
	ctx.evaluated++
	return nil
}
