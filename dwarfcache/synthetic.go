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

	"github.com/jetsetilly/dwarfcache/curated"
	"github.com/jetsetilly/dwarfcache/dwarf"
)

// fundTypeSize returns the byte size of a version 1 fundamental type in the
// context of a compilation unit.
func fundTypeSize(unit *CompUnit, ft uint16) (uint64, error) {
	switch ft {
	case dwarf.FTChar, dwarf.FTSignedChar, dwarf.FTUnsignedChar:
		return 1, nil
	case dwarf.FTShort, dwarf.FTSignedShort, dwarf.FTUnsignedShort:
		return 2, nil
	case dwarf.FTInteger, dwarf.FTSignedInteger, dwarf.FTUnsignedInteger:
		return 4, nil
	case dwarf.FTLong, dwarf.FTSignedLong, dwarf.FTUnsignedLong:
		if unit.File.Elf64 {
			return 8, nil
		}
		return 4, nil
	case dwarf.FTPointer:
		return uint64(unit.Desc.AddressSize), nil
	case dwarf.FTFloat:
		return 4, nil
	case dwarf.FTDblPrecFloat:
		return 8, nil
	case dwarf.FTComplex:
		return 8, nil
	case dwarf.FTDblPrecComplex:
		return 16, nil
	case dwarf.FTBoolean:
		return 4, nil
	case dwarf.FTVoid:
		return 0, nil
	}
	return 0, curated.Errorf(InvalidDwarf, "invalid fundamental type code")
}

// readLongValue reads a constant of the unit's long int size.
func readLongValue(c *Cache) (int64, error) {
	size, err := fundTypeSize(c.walk.unit, dwarf.FTLong)
	if err != nil {
		return 0, err
	}
	switch size {
	case 4:
		return int64(int32(c.rd.ReadU4())), c.rd.Err()
	case 8:
		return int64(c.rd.ReadU8()), c.rd.Err()
	}
	return 0, curated.Errorf(InvalidDwarf, "invalid size of long int")
}

// readModFundType decodes a modified fundamental type attribute: a
// fundamental type code preceded by a list of type modifiers. a synthetic
// entity is materialised for the fundamental type and for every pointer or
// reference modifier; const and volatile are discarded.
func (c *Cache) readModFundType(form uint16) (*ObjectInfo, error) {
	rd := c.rd
	sec := c.walk.section

	buf, err := rd.ChkBlock(form)
	if err != nil {
		return nil, err
	}
	if len(buf) < 2 {
		return nil, curated.Errorf(InvalidDwarf, "invalid modified type attribute")
	}

	var ft uint16
	if c.file.BigEndian {
		ft = binary.BigEndian.Uint16(buf[len(buf)-2:])
	} else {
		ft = binary.LittleEndian.Uint16(buf[len(buf)-2:])
	}

	typ, err := c.addObjectInfo(sec.Addr + rd.Pos() - 2)
	if err != nil {
		return nil, err
	}
	typ.Tag = dwarf.TagFundType
	typ.CompUnit = c.walk.unit
	typ.FundType = ft

	return c.applyTypeModifiers(buf, len(buf)-2, typ)
}

// readModUserDefType decodes a modified user defined type attribute: a
// reference to a type entry preceded by a list of type modifiers.
func (c *Cache) readModUserDefType(form uint16) (*ObjectInfo, error) {
	rd := c.rd
	sec := c.walk.section

	buf, err := rd.ChkBlock(form)
	if err != nil {
		return nil, err
	}
	if len(buf) < 4 {
		return nil, curated.Errorf(InvalidDwarf, "invalid modified type attribute")
	}

	var ref uint32
	if c.file.BigEndian {
		ref = binary.BigEndian.Uint32(buf[len(buf)-4:])
	} else {
		ref = binary.LittleEndian.Uint32(buf[len(buf)-4:])
	}

	typ, err := c.addObjectInfo(sec.Addr + uint64(ref))
	if err != nil {
		return nil, err
	}
	c.addObjectReference(sec, typ, nil)

	return c.applyTypeModifiers(buf, len(buf)-4, typ)
}

// applyTypeModifiers materialises a synthetic pointer or reference entity
// for each applicable modifier, innermost first. the identifier of each
// synthetic entity is derived from the stream position of the modifier byte.
func (c *Cache) applyTypeModifiers(buf []byte, bufPos int, typ *ObjectInfo) (*ObjectInfo, error) {
	rd := c.rd
	sec := c.walk.section

	for bufPos > 0 {
		bufPos--

		var tag uint16
		switch buf[bufPos] {
		case dwarf.ModVolatile, dwarf.ModConst:
			continue
		case dwarf.ModPointerTo:
			tag = dwarf.TagModPointer
		case dwarf.ModReferenceTo:
			tag = dwarf.TagModReference
		default:
			return nil, curated.Errorf(InvalidDwarf, "invalid type modifier code")
		}

		mod, err := c.addObjectInfo(sec.Addr + rd.Pos() - uint64(len(buf)) + uint64(bufPos))
		if err != nil {
			return nil, err
		}
		mod.Tag = tag
		mod.CompUnit = c.walk.unit
		mod.Type = typ
		typ = mod
	}

	return typ, nil
}

// readSubscrData decodes a version 1 array description block. each
// fundamental or user defined type range in the block becomes a synthetic
// index range child of the array; the element type indicator sets the
// array's type.
func (c *Cache) readSubscrData(form uint16, array *ObjectInfo) error {
	rd := c.rd
	sec := c.walk.section

	buf, err := rd.ChkBlock(form)
	if err != nil {
		return err
	}

	orgPos := rd.Pos()
	rd.SetPos(rd.FormDataPos)
	bufEnd := rd.Pos() + uint64(len(buf))

	childrenTail := &array.Children

	for rd.Pos() < bufEnd {
		var typ *ObjectInfo

		fmt := rd.ReadU1()
		if rd.Err() != nil {
			return rd.Err()
		}

		switch fmt {
		case dwarf.FmtFTCC, dwarf.FmtFTCX, dwarf.FmtFTXC, dwarf.FmtFTXX:
			typ, err = c.addObjectInfo(sec.Addr + rd.Pos())
			if err != nil {
				return err
			}
			typ.Tag = dwarf.TagFundType
			typ.CompUnit = c.walk.unit
			typ.FundType = rd.ReadU2()

		case dwarf.FmtUTCC, dwarf.FmtUTCX, dwarf.FmtUTXC, dwarf.FmtUTXX:
			rd.ReadAttribute(dwarf.AttrSubscrData, dwarf.FormRef)
			if rd.Err() != nil {
				return rd.Err()
			}
			typ, err = c.addObjectInfo(rd.FormData)
			if err != nil {
				return err
			}
			c.addObjectReference(sec, typ, nil)
		}

		if typ != nil {
			rng, err := c.addObjectInfo(sec.Addr + rd.Pos())
			if err != nil {
				return err
			}
			rng.Tag = dwarf.TagIndexRange
			rng.CompUnit = c.walk.unit
			rng.Type = typ
			rng.Fmt = fmt

			if dwarf.FmtLowerIsExpr(fmt) {
				rd.ReadAttribute(0, dwarf.FormBlock2)
				rng.Low.Expr = rd.FormBytes
			} else {
				rng.Low.Value, err = readLongValue(c)
				if err != nil {
					return err
				}
			}

			if dwarf.FmtUpperIsExpr(fmt) {
				rd.ReadAttribute(0, dwarf.FormBlock2)
				rng.High.Expr = rd.FormBytes
			} else {
				rng.High.Value, err = readLongValue(c)
				if err != nil {
					return err
				}
			}

			if rd.Err() != nil {
				return rd.Err()
			}

			*childrenTail = rng
			childrenTail = &rng.Sibling
		} else if fmt == dwarf.FmtET {
			x := rd.ReadU2()
			attr := (x & 0xfff0) >> 4
			elemForm := x & 0xf
			rd.ReadAttribute(attr, elemForm)
			if rd.Err() != nil {
				return rd.Err()
			}

			switch attr {
			case dwarf.AttrFundType:
				if err := rd.ChkData(elemForm); err != nil {
					return err
				}
				typ, err = c.addObjectInfo(sec.Addr + rd.FormDataPos)
				if err != nil {
					return err
				}
				typ.Tag = dwarf.TagFundType
				typ.CompUnit = c.walk.unit
				typ.FundType = uint16(rd.FormData)
			case dwarf.AttrUserDefType:
				if err := rd.ChkRef(elemForm); err != nil {
					return err
				}
				typ, err = c.addObjectInfo(rd.FormData)
				if err != nil {
					return err
				}
				c.addObjectReference(rd.FormSection, typ, nil)
			case dwarf.AttrModFundType:
				typ, err = c.readModFundType(elemForm)
				if err != nil {
					return err
				}
			case dwarf.AttrModUDType:
				typ, err = c.readModUserDefType(elemForm)
				if err != nil {
					return err
				}
			default:
				return curated.Errorf(InvalidDwarf, "invalid array element type format")
			}

			array.Type = typ
		} else {
			return curated.Errorf(InvalidDwarf, "invalid array subscription format")
		}
	}

	rd.SetPos(orgPos)
	return nil
}
