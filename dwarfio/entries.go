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

// ReadEntry reads one debugging information entry, driving the visitor as
// described for the Visitor type. it does not descend into children; a
// visitor that wants the children reads further entries from its close
// callback.
//
// the target attribute selects how much of the entry is decoded. a value of
// zero decodes everything. SkipAllAttrs decodes nothing and never calls the
// visitor. any other value decodes only that attribute and the
// specification, abstract origin and extension chain attributes, calling
// the visitor for those alone.
//
// returns false at a null entry, which is consumed, or at the end of the
// current unit, where nothing is consumed.
func (r *Reader) ReadEntry(visitor Visitor, targetAttr uint16) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if r.desc == nil {
		r.fail("no unit for entry read")
		return false, r.err
	}
	if r.desc.Version >= 2 {
		return r.readEntry2(visitor, targetAttr)
	}
	return r.readEntry1(visitor, targetAttr)
}

// decode policy shared by the two entry encodings.
func wantAttr(targetAttr uint16, attr uint16) bool {
	if targetAttr == 0 {
		return true
	}
	if targetAttr == SkipAllAttrs {
		return false
	}
	switch attr {
	case targetAttr, dwarf.AttrSpecification, dwarf.AttrAbstractOrigin, dwarf.AttrExtension:
		return true
	}
	return false
}

func (r *Reader) readEntry2(visitor Visitor, targetAttr uint16) (bool, error) {
	if r.desc.UnitSize > 0 && r.pos >= r.desc.UnitOffs+r.desc.UnitSize {
		return false, nil
	}

	r.EntryPos = r.pos
	code := r.ReadULEB128()
	if r.err != nil {
		return false, r.err
	}
	if code == 0 {
		return false, nil
	}

	if r.desc.abbrev == nil {
		r.fail("no abbreviation table for unit")
		return false, r.err
	}
	ab, ok := r.desc.abbrev.entries[code]
	if !ok {
		r.fail("invalid abbreviation code")
		return false, r.err
	}

	full := targetAttr == 0

	if full && visitor != nil {
		openForm := uint16(dwarf.EntryNoChildren)
		if ab.children {
			openForm = dwarf.EntryHasChildren
		}
		if err := visitor(ab.tag, 0, openForm); err != nil {
			return false, err
		}
	}

	for _, af := range ab.attrs {
		form := af.form
		for form == dwarf.FormIndirect {
			form = uint16(r.ReadULEB128())
			if r.err != nil {
				return false, r.err
			}
		}

		if wantAttr(targetAttr, af.attr) {
			r.ReadAttribute(af.attr, form)
			if r.err != nil {
				return false, r.err
			}
			if visitor != nil {
				if err := visitor(ab.tag, af.attr, form); err != nil {
					return false, err
				}
			}
		} else {
			r.skipFormValue(form)
			if r.err != nil {
				return false, r.err
			}
		}
	}

	if full && visitor != nil {
		// the close callback may read child entries, moving the reader
		if err := visitor(ab.tag, 0, 0); err != nil {
			return false, err
		}
	}

	return true, r.err
}

func (r *Reader) readEntry1(visitor Visitor, targetAttr uint16) (bool, error) {
	if r.desc.UnitSize > 0 && r.pos >= r.desc.UnitOffs+r.desc.UnitSize {
		return false, nil
	}

	r.EntryPos = r.pos
	size := uint64(r.ReadU4())
	if r.err != nil {
		return false, r.err
	}

	// entries shorter than eight bytes are null entries: padding and the
	// terminators of sibling chains
	if size < 8 {
		if size < 4 {
			r.fail("invalid entry length")
			return false, r.err
		}
		r.Skip(size - 4)
		return false, r.err
	}

	end := r.EntryPos + size
	tag := r.ReadU2()
	if r.err != nil {
		return false, r.err
	}

	full := targetAttr == 0

	if full && visitor != nil {
		// version 1 has no children flag. the sibling attribute alone
		// drives descent into children
		if err := visitor(tag, 0, dwarf.EntryNoChildren); err != nil {
			return false, err
		}
	}

	for r.err == nil && r.pos < end {
		x := r.ReadU2()
		attr := (x & 0xfff0) >> 4
		form := x & 0xf

		if wantAttr(targetAttr, attr) {
			r.ReadAttribute(attr, form)
			if r.err != nil {
				return false, r.err
			}
			if visitor != nil {
				if err := visitor(tag, attr, form); err != nil {
					return false, err
				}
			}
		} else {
			r.skipFormValue(form)
		}
	}

	if r.err != nil {
		return false, r.err
	}

	if full && visitor != nil {
		if err := visitor(tag, 0, 0); err != nil {
			return false, err
		}
	}

	return true, r.err
}

// ReadUnit reads one compilation unit from the current position: the unit
// header, if the encoding has one, and the unit entry with its tree of
// children (the tree is consumed by the visitor's close callback reading
// further entries). on return the reader is positioned at the next unit.
//
// the returned descriptor remains valid for re-entering the section later.
func (r *Reader) ReadUnit(visitor Visitor) (*UnitDescriptor, error) {
	if r.err != nil {
		return nil, r.err
	}

	// the .debug section holds DWARF version 1 which has no unit header
	if r.sec.Name == ".debug" {
		return r.readUnit1(visitor)
	}

	unitOffs := r.pos
	size := uint64(r.ReadU4())
	dwarf64 := false
	if size == 0xffffffff {
		dwarf64 = true
		size = r.ReadU8()
	}

	version := r.ReadU2()
	if r.err != nil {
		return nil, r.err
	}
	if version < 2 || version > 4 {
		r.fail("invalid DWARF version")
		return nil, r.err
	}

	var abbrevOffs uint64
	if dwarf64 {
		abbrevOffs = r.ReadU8()
	} else {
		abbrevOffs = uint64(r.ReadU4())
	}
	addrSize := r.ReadU1()
	if r.err != nil {
		return nil, r.err
	}

	desc := &UnitDescriptor{
		Section:     r.sec,
		Version:     version,
		Dwarf64:     dwarf64,
		AddressSize: addrSize,
		UnitOffs:    unitOffs,
		abbrev:      r.abbrev[abbrevOffs],
	}
	// the unit size covers the length field itself
	if dwarf64 {
		desc.UnitSize = size + 12
	} else {
		desc.UnitSize = size + 4
	}
	if desc.abbrev == nil {
		r.fail("missing abbreviation table")
		return nil, r.err
	}

	r.desc = desc
	if _, err := r.ReadEntry(visitor, 0); err != nil {
		return nil, err
	}

	if r.err == nil {
		r.SetPos(desc.UnitOffs + desc.UnitSize)
	}

	return desc, r.err
}

func (r *Reader) readUnit1(visitor Visitor) (*UnitDescriptor, error) {
	desc := &UnitDescriptor{
		Section:  r.sec,
		Version:  1,
		UnitOffs: r.pos,
	}
	if r.file.Elf64 {
		desc.AddressSize = 8
	} else {
		desc.AddressSize = 4
	}

	r.desc = desc
	if _, err := r.ReadEntry(visitor, 0); err != nil {
		return nil, err
	}

	// there is no header to give the unit size. the walk of the unit entry
	// and its children decides where the unit ends
	desc.UnitSize = r.pos - desc.UnitOffs

	return desc, r.err
}
