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

// Package dwarfio reads the binary encodings of the DWARF debug information
// sections: positioned primitive reads, attribute values decoded by form,
// abbreviation tables, and the entry and unit drivers that walk debugging
// information entries, calling a visitor for every attribute.
//
// The Reader keeps a sticky error in the manner of a buffered decoder: after
// the first failure every read returns a zero value and the error is
// reported at the next driver boundary. sections are entered and exited in
// strict pairs and the reader maintains a stack so that a walk can re-enter
// a section (or a different section) and return to where it was.
package dwarfio

import (
	"encoding/binary"

	"github.com/jetsetilly/dwarfcache/curated"
	"github.com/jetsetilly/dwarfcache/leb128"
	"github.com/jetsetilly/dwarfcache/objfile"
)

// error patterns for the dwarfio package. InvalidDwarf indicates a
// structural violation in the debug information being read.
const InvalidDwarf = "invalid dwarf: %v"

// Visitor is called by the entry drivers for every decoded attribute. it is
// called once before the attributes with an attr of zero and a form of
// dwarf.EntryHasChildren or dwarf.EntryNoChildren, and once after the
// attributes with an attr and form of zero.
type Visitor func(tag uint16, attr uint16, form uint16) error

// SkipAllAttrs is a value for the target attribute argument of ReadEntry
// meaning that every attribute value is skipped and the visitor is never
// called. it is used to advance over an entry without decoding it.
const SkipAllAttrs = 0xffff

// UnitDescriptor is the fixed header of one compilation unit. for version 1
// there is no header in the file and the descriptor is synthesised.
type UnitDescriptor struct {
	Section     *objfile.Section
	Version     uint16
	Dwarf64     bool
	AddressSize uint8
	UnitOffs    uint64
	UnitSize    uint64

	abbrev *abbrevTable
}

type readerPos struct {
	sec  *objfile.Section
	desc *UnitDescriptor
	pos  uint64
}

// Reader is a positioned reader over the debug sections of one object file.
type Reader struct {
	file  *objfile.File
	order binary.ByteOrder

	// abbreviation tables keyed by their offset in .debug_abbrev
	abbrev map[uint64]*abbrevTable

	// .debug_str, located on first use
	str *objfile.Section

	// current section state and the stack of enclosing states
	sec   *objfile.Section
	desc  *UnitDescriptor
	pos   uint64
	stack []readerPos

	err error

	// results of the most recent ReadAttribute call
	FormData    uint64
	FormBytes   []byte
	FormDataPos uint64
	FormSection *objfile.Section

	// position of the start of the most recent entry
	EntryPos uint64
}

// NewReader is the preferred method of initialisation for the Reader type.
func NewReader(file *objfile.File) *Reader {
	r := &Reader{
		file:   file,
		abbrev: make(map[uint64]*abbrevTable),
	}
	if file.BigEndian {
		r.order = binary.BigEndian
	} else {
		r.order = binary.LittleEndian
	}
	return r
}

// fail records the first error encountered by the reader. subsequent reads
// return zero values.
func (r *Reader) fail(detail string) {
	if r.err == nil {
		r.err = curated.Errorf(InvalidDwarf, detail)
	}
}

// Err returns the sticky error, or nil.
func (r *Reader) Err() error {
	return r.err
}

// ClearErr forgets the sticky error. used by callers that have recorded the
// error and want to reuse the reader for an unrelated read.
func (r *Reader) ClearErr() {
	r.err = nil
}

// Desc returns the descriptor of the unit currently being read, or nil.
func (r *Reader) Desc() *UnitDescriptor {
	return r.desc
}

// EnterSection positions the reader at the given offset of a section,
// saving the previous position. desc may be nil when the section is not
// being read in the context of a compilation unit.
func (r *Reader) EnterSection(desc *UnitDescriptor, sec *objfile.Section, offset uint64) {
	r.stack = append(r.stack, readerPos{sec: r.sec, desc: r.desc, pos: r.pos})
	r.sec = sec
	r.desc = desc
	r.pos = offset
}

// ExitSection restores the reader to the position saved by the matching
// EnterSection.
func (r *Reader) ExitSection() {
	s := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.sec = s.sec
	r.desc = s.desc
	r.pos = s.pos
}

// Pos returns the current offset within the current section.
func (r *Reader) Pos() uint64 {
	return r.pos
}

// SetPos moves the reader to an offset within the current section.
func (r *Reader) SetPos(pos uint64) {
	r.pos = pos
}

// Skip advances the reader by n bytes.
func (r *Reader) Skip(n uint64) {
	if r.err != nil {
		return
	}
	if r.pos+n > uint64(len(r.sec.Data)) {
		r.fail("read past end of section")
		return
	}
	r.pos += n
}

func (r *Reader) take(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if r.sec == nil || r.pos+n > uint64(len(r.sec.Data)) {
		r.fail("read past end of section")
		return nil
	}
	b := r.sec.Data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// ReadU1 reads an unsigned byte.
func (r *Reader) ReadU1() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadU2 reads an unsigned 16 bit value in the byte order of the file.
func (r *Reader) ReadU2() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

// ReadU4 reads an unsigned 32 bit value in the byte order of the file.
func (r *Reader) ReadU4() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

// ReadU8 reads an unsigned 64 bit value in the byte order of the file.
func (r *Reader) ReadU8() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return r.order.Uint64(b)
}

// ReadUX reads an unsigned value of the given byte size in the byte order of
// the file.
func (r *Reader) ReadUX(size uint8) uint64 {
	switch size {
	case 1:
		return uint64(r.ReadU1())
	case 2:
		return uint64(r.ReadU2())
	case 4:
		return uint64(r.ReadU4())
	case 8:
		return r.ReadU8()
	}
	r.fail("invalid read size")
	return 0
}

// ReadULEB128 reads an unsigned variable length value.
func (r *Reader) ReadULEB128() uint64 {
	if r.err != nil {
		return 0
	}
	if r.pos >= uint64(len(r.sec.Data)) {
		r.fail("read past end of section")
		return 0
	}
	v, n := leb128.DecodeULEB128(r.sec.Data[r.pos:])
	r.pos += uint64(n)
	return v
}

// ReadSLEB128 reads a signed variable length value.
func (r *Reader) ReadSLEB128() int64 {
	if r.err != nil {
		return 0
	}
	if r.pos >= uint64(len(r.sec.Data)) {
		r.fail("read past end of section")
		return 0
	}
	v, n := leb128.DecodeSLEB128(r.sec.Data[r.pos:])
	r.pos += uint64(n)
	return v
}

// ReadString reads a NUL terminated string. the empty string is returned for
// a lone NUL byte, which terminates the name lists of the line number
// header.
func (r *Reader) ReadString() string {
	if r.err != nil {
		return ""
	}
	data := r.sec.Data
	s := r.pos
	for {
		if s >= uint64(len(data)) {
			r.fail("unterminated string")
			return ""
		}
		if data[s] == 0 {
			break
		}
		s++
	}
	str := string(data[r.pos:s])
	r.pos = s + 1
	return str
}

// addressSize returns the address size of the current unit, or the natural
// pointer size of the file when no unit is current.
func (r *Reader) addressSize() uint8 {
	if r.desc != nil && r.desc.AddressSize != 0 {
		return r.desc.AddressSize
	}
	if r.file.Elf64 {
		return 8
	}
	return 4
}

// ReadAddress reads an address of the current unit's address size and
// returns the allocated section the address falls in, or nil.
func (r *Reader) ReadAddress() (uint64, *objfile.Section) {
	return r.ReadAddressX(r.addressSize())
}

// ReadAddressX reads an address of an explicit byte size and returns the
// allocated section the address falls in, or nil.
func (r *Reader) ReadAddressX(size uint8) (uint64, *objfile.Section) {
	v := r.ReadUX(size)
	if r.err != nil {
		return 0, nil
	}
	return v, r.file.SectionByAddress(v)
}
