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
	"github.com/jetsetilly/dwarfcache/dwarf"
)

// offsetSize returns the size of an offset value in the current unit. 64-bit
// DWARF is signalled by the 0xffffffff length prefix of the unit header.
func (r *Reader) offsetSize() uint8 {
	if r.desc != nil && r.desc.Dwarf64 {
		return 8
	}
	return 4
}

// ReadAttribute decodes one attribute value according to its form, leaving
// the results in the FormData, FormBytes, FormDataPos and FormSection
// fields.
//
// reference forms leave an absolute entity identifier in FormData: the
// section address plus the section offset of the referenced entry,
// regardless of whether the form encoded the reference relative to the unit
// or to the section.
func (r *Reader) ReadAttribute(attr uint16, form uint16) {
	if r.err != nil {
		return
	}

	r.FormData = 0
	r.FormBytes = nil
	r.FormDataPos = 0
	r.FormSection = nil

	switch form {
	case dwarf.FormAddr:
		r.FormData, r.FormSection = r.ReadAddress()

	case dwarf.FormRef:
		// version 1 references are absolute within the section
		r.FormData = r.sec.Addr + uint64(r.ReadU4())
		r.FormSection = r.sec

	case dwarf.FormRefAddr:
		// version 2 encodes section offsets with the unit address size.
		// later versions use the offset size
		if r.desc != nil && r.desc.Version == 2 {
			r.FormData = r.sec.Addr + r.ReadUX(r.addressSize())
		} else {
			r.FormData = r.sec.Addr + r.ReadUX(r.offsetSize())
		}
		r.FormSection = r.sec

	case dwarf.FormRef1:
		r.FormData = r.unitRef(uint64(r.ReadU1()))
	case dwarf.FormRef2:
		r.FormData = r.unitRef(uint64(r.ReadU2()))
	case dwarf.FormRef4:
		r.FormData = r.unitRef(uint64(r.ReadU4()))
	case dwarf.FormRef8:
		r.FormData = r.unitRef(r.ReadU8())
	case dwarf.FormRefUdata:
		r.FormData = r.unitRef(r.ReadULEB128())

	case dwarf.FormBlock1:
		r.block(uint64(r.ReadU1()))
	case dwarf.FormBlock2:
		r.block(uint64(r.ReadU2()))
	case dwarf.FormBlock4:
		r.block(uint64(r.ReadU4()))
	case dwarf.FormBlock, dwarf.FormExprloc:
		r.block(r.ReadULEB128())

	case dwarf.FormData1:
		r.data(1)
	case dwarf.FormData2:
		r.data(2)
	case dwarf.FormData4:
		r.data(4)
	case dwarf.FormData8:
		r.data(8)

	case dwarf.FormSdata:
		r.FormData = uint64(r.ReadSLEB128())
	case dwarf.FormUdata:
		r.FormData = r.ReadULEB128()

	case dwarf.FormString:
		r.FormDataPos = r.pos
		s := r.ReadString()
		if r.err == nil {
			r.FormBytes = r.sec.Data[r.FormDataPos : r.FormDataPos+uint64(len(s))]
		}

	case dwarf.FormStrp:
		offs := r.ReadUX(r.offsetSize())
		if r.err != nil {
			return
		}
		if r.str == nil {
			r.str = r.file.SectionByName(".debug_str")
		}
		if r.str == nil || offs >= uint64(len(r.str.Data)) {
			r.fail("invalid string offset")
			return
		}
		e := offs
		for e < uint64(len(r.str.Data)) && r.str.Data[e] != 0 {
			e++
		}
		r.FormBytes = r.str.Data[offs:e]
		r.FormSection = r.str

	case dwarf.FormFlag:
		r.data(1)

	case dwarf.FormFlagPresent:
		r.FormData = 1

	case dwarf.FormSecOffset:
		r.data(uint64(r.offsetSize()))

	case dwarf.FormRefSig8:
		r.data(8)

	default:
		r.fail("unknown attribute form")
	}
}

// unitRef converts a unit-relative reference to an absolute entity
// identifier.
func (r *Reader) unitRef(v uint64) uint64 {
	r.FormSection = r.sec
	if r.desc == nil {
		r.fail("unit relative reference outside of a unit")
		return 0
	}
	return r.sec.Addr + r.desc.UnitOffs + v
}

func (r *Reader) block(size uint64) {
	r.FormDataPos = r.pos
	r.FormBytes = r.take(size)
}

// data reads a fixed size constant, keeping both the numeric value and the
// raw bytes.
func (r *Reader) data(size uint64) {
	r.FormDataPos = r.pos
	r.FormBytes = r.take(size)
	if r.err != nil {
		return
	}
	switch size {
	case 1:
		r.FormData = uint64(r.FormBytes[0])
	case 2:
		r.FormData = uint64(r.order.Uint16(r.FormBytes))
	case 4:
		r.FormData = uint64(r.order.Uint32(r.FormBytes))
	case 8:
		r.FormData = r.order.Uint64(r.FormBytes)
	}
}

// skipFormValue advances over an attribute value without decoding it.
func (r *Reader) skipFormValue(form uint16) {
	if r.err != nil {
		return
	}

	switch form {
	case dwarf.FormAddr:
		r.Skip(uint64(r.addressSize()))
	case dwarf.FormRef:
		r.Skip(4)
	case dwarf.FormRefAddr:
		if r.desc != nil && r.desc.Version == 2 {
			r.Skip(uint64(r.addressSize()))
		} else {
			r.Skip(uint64(r.offsetSize()))
		}
	case dwarf.FormRef1, dwarf.FormData1, dwarf.FormFlag:
		r.Skip(1)
	case dwarf.FormRef2, dwarf.FormData2:
		r.Skip(2)
	case dwarf.FormRef4, dwarf.FormData4:
		r.Skip(4)
	case dwarf.FormRef8, dwarf.FormData8, dwarf.FormRefSig8:
		r.Skip(8)
	case dwarf.FormRefUdata, dwarf.FormUdata:
		r.ReadULEB128()
	case dwarf.FormSdata:
		r.ReadSLEB128()
	case dwarf.FormBlock1:
		r.Skip(uint64(r.ReadU1()))
	case dwarf.FormBlock2:
		r.Skip(uint64(r.ReadU2()))
	case dwarf.FormBlock4:
		r.Skip(uint64(r.ReadU4()))
	case dwarf.FormBlock, dwarf.FormExprloc:
		r.Skip(r.ReadULEB128())
	case dwarf.FormString:
		r.ReadString()
	case dwarf.FormStrp, dwarf.FormSecOffset:
		r.Skip(uint64(r.offsetSize()))
	case dwarf.FormFlagPresent:
		// no value in the entry
	default:
		r.fail("unknown attribute form")
	}
}

// ChkRef checks that the form of the most recent attribute is a reference
// form.
func (r *Reader) ChkRef(form uint16) error {
	switch form {
	case dwarf.FormRef, dwarf.FormRefAddr, dwarf.FormRef1, dwarf.FormRef2,
		dwarf.FormRef4, dwarf.FormRef8, dwarf.FormRefUdata:
		return r.err
	}
	r.fail("reference form expected")
	return r.err
}

// ChkAddr checks that the form of the most recent attribute is an address
// form.
func (r *Reader) ChkAddr(form uint16) error {
	if form != dwarf.FormAddr {
		r.fail("address form expected")
	}
	return r.err
}

// ChkData checks that the form of the most recent attribute is a constant
// form.
func (r *Reader) ChkData(form uint16) error {
	switch form {
	case dwarf.FormData1, dwarf.FormData2, dwarf.FormData4, dwarf.FormData8,
		dwarf.FormSdata, dwarf.FormUdata, dwarf.FormSecOffset:
		return r.err
	}
	r.fail("constant form expected")
	return r.err
}

// ChkFlag checks that the form of the most recent attribute is a flag form.
func (r *Reader) ChkFlag(form uint16) error {
	switch form {
	case dwarf.FormFlag, dwarf.FormFlagPresent:
		return r.err
	}
	r.fail("flag form expected")
	return r.err
}

// ChkString checks that the form of the most recent attribute is a string
// form.
func (r *Reader) ChkString(form uint16) error {
	switch form {
	case dwarf.FormString, dwarf.FormStrp:
		return r.err
	}
	r.fail("string form expected")
	return r.err
}

// ChkBlock checks that the form of the most recent attribute carries raw
// bytes and returns them.
func (r *Reader) ChkBlock(form uint16) ([]byte, error) {
	switch form {
	case dwarf.FormBlock1, dwarf.FormBlock2, dwarf.FormBlock4, dwarf.FormBlock,
		dwarf.FormExprloc, dwarf.FormData1, dwarf.FormData2, dwarf.FormData4,
		dwarf.FormData8:
		return r.FormBytes, r.err
	}
	r.fail("block form expected")
	return nil, r.err
}
