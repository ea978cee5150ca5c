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
	"github.com/jetsetilly/dwarfcache/dwarf"
	"github.com/jetsetilly/dwarfcache/objfile"
)

// Register identifies a machine register of the register definition layer.
// only what the property reader needs is carried here.
type Register struct {
	ID   int
	Size int
}

// Piece is one piece of a composite location computed by the expression
// evaluator.
type Piece struct {
	Reg     *Register
	Value   []byte
	BitSize uint
}

// Context is the run-time context the property reader consults when an
// attribute value has to be read from the running program: memory, register
// and address translation services, and the expression evaluator.
type Context interface {
	// read memory of the program being debugged
	ReadMem(addr uint64, buf []byte) error

	// read the bytes of a register in a stack frame
	FrameRegBytes(frame int, reg *Register) ([]byte, error)

	// translate a link-time section address to a run-time address
	MapToRunTimeAddress(file *objfile.File, sec *objfile.Section, addr uint64) (uint64, error)

	// evaluate a location expression, consuming and replacing the form of
	// the value
	EvaluateExpression(v *PropertyValue) error
}

// PropertyValue is the result of reading an attribute of an entity. exactly
// one of Addr, Value and Pieces carries the result, decided by Form.
type PropertyValue struct {
	Context Context
	Frame   int
	Object  *ObjectInfo
	Attr    uint16

	// the form the value was found in. zero when the value was synthesised
	// without reference to the debug information
	Form uint16

	// raw bytes borrowed from the section data, or a scratch buffer for
	// values read from the program
	Addr []byte

	// inlined scalar value
	Value uint64

	// composite location pieces, filled in by the expression evaluator
	Pieces []Piece

	BigEndian bool
}

// ExpressionObjAddress is the address of the object a data member location
// is being resolved against. it is set by the caller walking a structure and
// by the reference form dereference path, and consumed when a data member
// location with a constant form is folded into an address.
//
// the cache is single threaded with respect to an object file, so a package
// variable serves where a thread local would otherwise be needed.
var ExpressionObjAddress uint64

// NumericPropertyValue returns a property value as an unsigned number.
// fails for piece-based values and for raw values wider than eight bytes.
func NumericPropertyValue(v *PropertyValue) (uint64, error) {
	if v.Pieces != nil {
		return 0, curated.Errorf(InvalidDwarf, "constant DWARF attribute value expected")
	}

	if v.Addr != nil {
		if len(v.Addr) > 8 {
			return 0, curated.Errorf(InvalidDwarf, "invalid size of DWARF attribute value")
		}
		var res uint64
		for i := 0; i < len(v.Addr); i++ {
			if v.BigEndian {
				res = res<<8 | uint64(v.Addr[i])
			} else {
				res = res<<8 | uint64(v.Addr[len(v.Addr)-i-1])
			}
		}
		return res, nil
	}

	return v.Value, nil
}

// ReadObjectProperty reads an attribute of an entity, without evaluating
// location expressions. the entity's entry is parsed in place; an attribute
// that is not found there is looked for along the specification, abstract
// origin and extension chains. synthetic entities short-circuit to their
// stored payloads.
//
// a SymbolNotFound error is a normal outcome: the attribute and all of its
// fallbacks produced no value.
func (c *Cache) ReadObjectProperty(ctx Context, frame int, obj *ObjectInfo, attr uint16) (*PropertyValue, error) {
	v := &PropertyValue{
		Context:   ctx,
		Frame:     frame,
		Object:    obj,
		Attr:      attr,
		BigEndian: obj.CompUnit.File.BigEndian,
	}

	if dwarf.SyntheticTag(obj.Tag) {
		if err := c.syntheticProperty(obj, attr, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	unit := obj.CompUnit
	sec := unit.Desc.Section
	rd := c.rd

	// version 1 has no data member location attribute; the location
	// attribute serves for members
	target := attr
	if unit.Desc.Version == 1 && attr == dwarf.AttrDataMemberLocation {
		target = dwarf.AttrLocation
	}

	var found struct {
		form  uint16
		data  uint64
		bytes []byte
		sec   *objfile.Section
	}
	var spec, origin, ext uint64

	visitor := func(tag uint16, a uint16, form uint16) error {
		switch a {
		case dwarf.AttrSpecification:
			spec = rd.FormData
		case dwarf.AttrAbstractOrigin:
			origin = rd.FormData
		case dwarf.AttrExtension:
			ext = rd.FormData
		}
		if a != target {
			return nil
		}
		found.form = form
		found.data = rd.FormData
		found.bytes = rd.FormBytes
		found.sec = rd.FormSection
		return nil
	}

	pos := obj.ID - sec.Addr
	for {
		found.form = 0
		spec = 0
		origin = 0
		ext = 0

		rd.EnterSection(&unit.Desc, sec, pos)
		_, err := rd.ReadEntry(visitor, target)
		rd.ExitSection()
		if err != nil {
			rd.ClearErr()
			return nil, err
		}

		if found.form != 0 {
			break
		}

		// follow the inheritance chains in order
		if spec != 0 {
			pos = spec - sec.Addr
		} else if origin != 0 {
			pos = origin - sec.Addr
		} else if ext != 0 {
			pos = ext - sec.Addr
		} else {
			break
		}
	}

	v.Form = found.form
	switch found.form {
	case dwarf.FormRef, dwarf.FormRefAddr, dwarf.FormRef1, dwarf.FormRef2,
		dwarf.FormRef4, dwarf.FormRef8, dwarf.FormRefUdata:
		if attr == dwarf.AttrImport || attr == dwarf.AttrSpecification || attr == dwarf.AttrContainingType {
			v.Value = found.data
		} else if err := c.dereferenceProperty(ctx, frame, found.data, v); err != nil {
			return nil, err
		}

	case dwarf.FormData1, dwarf.FormData2, dwarf.FormData4, dwarf.FormData8,
		dwarf.FormFlag, dwarf.FormBlock1, dwarf.FormBlock2, dwarf.FormBlock4,
		dwarf.FormBlock, dwarf.FormStrp, dwarf.FormSecOffset,
		dwarf.FormExprloc, dwarf.FormRefSig8:
		v.Addr = found.bytes

	case dwarf.FormSdata, dwarf.FormUdata:
		v.Value = found.data

	case dwarf.FormAddr:
		addr, err := ctx.MapToRunTimeAddress(unit.File, found.sec, found.data)
		if err != nil {
			return nil, curated.Errorf(InvalidContext, err)
		}
		v.Value = addr

	default:
		if err := c.propertyFallback(ctx, frame, obj, attr, v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// syntheticProperty answers attribute reads against the entities the reader
// materialised itself. they have no entry to parse; their payloads are the
// only properties they have.
func (c *Cache) syntheticProperty(obj *ObjectInfo, attr uint16, v *PropertyValue) error {
	switch obj.Tag {
	case dwarf.TagFundType:
		if attr == dwarf.AttrByteSize {
			size, err := fundTypeSize(obj.CompUnit, obj.FundType)
			if err != nil {
				return err
			}
			v.Value = size
			return nil
		}

	case dwarf.TagIndexRange:
		if attr == dwarf.AttrLowerBound {
			if dwarf.FmtLowerIsExpr(obj.Fmt) {
				v.Form = dwarf.FormBlock2
				v.Addr = obj.Low.Expr
			} else {
				v.Value = uint64(obj.Low.Value)
			}
			return nil
		}
		if attr == dwarf.AttrUpperBound {
			if dwarf.FmtUpperIsExpr(obj.Fmt) {
				v.Form = dwarf.FormBlock2
				v.Addr = obj.High.Expr
			} else {
				v.Value = uint64(obj.High.Value)
			}
			return nil
		}

	case dwarf.TagModPointer, dwarf.TagModReference:
		if attr == dwarf.AttrByteSize {
			v.Value = uint64(obj.CompUnit.Desc.AddressSize)
			return nil
		}
	}

	return curated.Errorf(SymbolNotFound, "no such property of synthetic entity")
}

// dereferenceProperty resolves a reference form value by locating the
// referenced entity and reading the program state its location describes:
// either the register the location resolves to, or the memory at the
// resolved address.
func (c *Cache) dereferenceProperty(ctx Context, frame int, id uint64, v *PropertyValue) error {
	refObj := FindObject(c, id)
	if refObj == nil {
		return curated.Errorf(InvalidDwarf, "reference to unknown entry")
	}

	valueAddr, err := c.ReadAndEvaluateObjectProperty(ctx, frame, refObj, dwarf.AttrLocation)
	if err != nil {
		return err
	}

	if len(valueAddr.Pieces) == 1 && valueAddr.Pieces[0].Reg != nil && valueAddr.Pieces[0].BitSize == 0 {
		reg := valueAddr.Pieces[0].Reg
		buf, err := ctx.FrameRegBytes(frame, reg)
		if err != nil {
			return curated.Errorf(InvalidContext, err)
		}
		v.Addr = buf
		v.BigEndian = valueAddr.BigEndian
		return nil
	}

	addr, err := NumericPropertyValue(valueAddr)
	if err != nil {
		return err
	}
	ExpressionObjAddress = addr

	valueSize, err := c.ReadAndEvaluateObjectProperty(ctx, frame, refObj, dwarf.AttrByteSize)
	if err != nil {
		return err
	}
	size, err := NumericPropertyValue(valueSize)
	if err != nil {
		return err
	}
	if size < 1 || size > 8 {
		return curated.Errorf(InvalidDataType, "unreadable object size")
	}

	buf := make([]byte, size)
	if err := ctx.ReadMem(addr, buf); err != nil {
		return curated.Errorf(InvalidContext, err)
	}
	v.Addr = buf
	return nil
}

// propertyFallback is consulted when an attribute was not found on the
// entity or anywhere along its inheritance chains. a small number of
// attributes have well-known defaults.
func (c *Cache) propertyFallback(ctx Context, frame int, obj *ObjectInfo, attr uint16, v *PropertyValue) error {
	if attr == dwarf.AttrDataMemberLocation && obj.Tag == dwarf.TagMember &&
		obj.Parent != nil && obj.Parent.Tag == dwarf.TagUnionType {
		// members of a union all live at the start of the union
		v.Form = dwarf.FormUdata
		v.Value = 0
		return nil
	}

	if attr == dwarf.AttrByteSize {
		switch obj.Tag {
		case dwarf.TagPointerType, dwarf.TagReferenceType, dwarf.TagModPointer,
			dwarf.TagModReference, dwarf.TagPtrToMemberType:
			v.Form = dwarf.FormUdata
			v.Value = uint64(obj.CompUnit.Desc.AddressSize)
			return nil

		case dwarf.TagStructureType, dwarf.TagClassType, dwarf.TagUnionType:
			// it is OK to return size 0 if the aggregate has no data members
			ok := true
			child, err := c.GetChildren(obj)
			if err != nil {
				return err
			}
			for ok && child != nil {
				d := child
				for d != nil && d.Tag == dwarf.TagImportedDeclaration {
					imp, err := c.ReadAndEvaluateObjectProperty(ctx, frame, d, dwarf.AttrImport)
					if err != nil {
						return err
					}
					id, err := NumericPropertyValue(imp)
					if err != nil {
						return err
					}
					d = FindObject(c, id)
				}
				if d == nil {
					ok = false
				} else {
					switch d.Tag {
					case dwarf.TagTypedef, dwarf.TagSubprogram, dwarf.TagTemplateTypeParam,
						dwarf.TagClassType, dwarf.TagStructureType, dwarf.TagUnionType,
						dwarf.TagEnumerationType:
						// carries no data
					case dwarf.TagMember:
						if d.Flags&FlagExternal == 0 {
							ok = false
						}
					default:
						ok = false
					}
				}
				child = child.Sibling
			}
			if ok {
				v.Form = dwarf.FormUdata
				v.Addr = nil
				v.Value = 0
				return nil
			}
		}
	}

	return curated.Errorf(SymbolNotFound, "no such property")
}

// ReadAndEvaluateObjectProperty reads an attribute of an entity and, for the
// location-class attributes, evaluates any location expression the value
// turned out to be. a data member location with a constant form is folded
// into ExpressionObjAddress directly.
func (c *Cache) ReadAndEvaluateObjectProperty(ctx Context, frame int, obj *ObjectInfo, attr uint16) (*PropertyValue, error) {
	v, err := c.ReadObjectProperty(ctx, frame, obj, attr)
	if err != nil {
		return nil, err
	}

	if v.Form == dwarf.FormExprloc {
		if err := ctx.EvaluateExpression(v); err != nil {
			return nil, err
		}
		return v, nil
	}

	switch attr {
	case dwarf.AttrDataMemberLocation:
		switch v.Form {
		case dwarf.FormData1, dwarf.FormData2, dwarf.FormData4, dwarf.FormData8,
			dwarf.FormSdata, dwarf.FormUdata:
			offset, err := NumericPropertyValue(v)
			if err != nil {
				return nil, err
			}
			v.Value = ExpressionObjAddress + offset
			v.Form = dwarf.FormUdata
			v.Addr = nil
		case dwarf.FormBlock1, dwarf.FormBlock2, dwarf.FormBlock4, dwarf.FormBlock:
			if err := ctx.EvaluateExpression(v); err != nil {
				return nil, err
			}
		}

	case dwarf.AttrLocation, dwarf.AttrStringLength, dwarf.AttrFrameBase, dwarf.AttrUseLocation:
		switch v.Form {
		case dwarf.FormData4, dwarf.FormData8, dwarf.FormBlock1, dwarf.FormBlock2,
			dwarf.FormBlock4, dwarf.FormBlock:
			if err := ctx.EvaluateExpression(v); err != nil {
				return nil, err
			}
		}

	case dwarf.AttrCount, dwarf.AttrByteSize, dwarf.AttrLowerBound, dwarf.AttrUpperBound:
		switch v.Form {
		case dwarf.FormBlock1, dwarf.FormBlock2, dwarf.FormBlock4, dwarf.FormBlock:
			if err := ctx.EvaluateExpression(v); err != nil {
				return nil, err
			}
		}
	}

	return v, nil
}
