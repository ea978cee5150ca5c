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
	"github.com/jetsetilly/dwarfcache/dwarfio"
	"github.com/jetsetilly/dwarfcache/objfile"
)

// readObjectInfo is the visitor driven by the entry readers. it is called
// once at the opening of an entry, once for every attribute, and once at the
// close of the entry. the close call links the entry into the tree and, for
// entries with children, reads the children by driving the reader further.
func (c *Cache) readObjectInfo(tag uint16, attr uint16, form uint16) error {
	w := &c.walk
	rd := c.rd

	// a skipped entry is one that was loaded by an earlier walk. only the
	// sibling attribute is of interest: it says where the entry ends
	if w.skip && attr != 0 && attr != dwarf.AttrSibling {
		return nil
	}

	switch attr {
	case 0:
		if form != 0 {
			return c.openObjectInfo(tag, form)
		}
		return c.closeObjectInfo(tag)

	case dwarf.AttrSibling:
		if err := rd.ChkRef(form); err != nil {
			return err
		}
		w.sibling = rd.FormData - w.section.Addr

	case dwarf.AttrType:
		if err := rd.ChkRef(form); err != nil {
			return err
		}
		typ, err := c.addObjectInfo(rd.FormData)
		if err != nil {
			return err
		}
		w.info.Type = typ
		c.addObjectReference(rd.FormSection, typ, nil)

	case dwarf.AttrFundType:
		if err := rd.ChkData(form); err != nil {
			return err
		}
		typ, err := c.addObjectInfo(w.section.Addr + rd.FormDataPos)
		if err != nil {
			return err
		}
		typ.Tag = dwarf.TagFundType
		typ.CompUnit = w.unit
		typ.FundType = uint16(rd.FormData)
		w.info.Type = typ

	case dwarf.AttrUserDefType:
		if err := rd.ChkRef(form); err != nil {
			return err
		}
		typ, err := c.addObjectInfo(rd.FormData)
		if err != nil {
			return err
		}
		w.info.Type = typ
		c.addObjectReference(rd.FormSection, typ, nil)

	case dwarf.AttrModFundType:
		typ, err := c.readModFundType(form)
		if err != nil {
			return err
		}
		w.info.Type = typ

	case dwarf.AttrModUDType:
		typ, err := c.readModUserDefType(form)
		if err != nil {
			return err
		}
		w.info.Type = typ

	case dwarf.AttrSubscrData:
		if err := c.readSubscrData(form, w.info); err != nil {
			return err
		}

	case dwarf.AttrName:
		if err := rd.ChkString(form); err != nil {
			return err
		}
		w.info.Name = string(rd.FormBytes)

	case dwarf.AttrSpecification:
		if err := rd.ChkRef(form); err != nil {
			return err
		}
		org, err := c.addObjectInfo(rd.FormData)
		if err != nil {
			return err
		}
		c.addObjectReference(rd.FormSection, org, w.info)
		w.info.Flags |= FlagSpecification

	case dwarf.AttrAbstractOrigin:
		if err := rd.ChkRef(form); err != nil {
			return err
		}
		org, err := c.addObjectInfo(rd.FormData)
		if err != nil {
			return err
		}
		c.addObjectReference(rd.FormSection, org, w.info)
		w.info.Flags |= FlagAbstractOrigin

	case dwarf.AttrExtension:
		if err := rd.ChkRef(form); err != nil {
			return err
		}
		org, err := c.addObjectInfo(rd.FormData)
		if err != nil {
			return err
		}
		c.addObjectReference(rd.FormSection, org, w.info)
		w.info.Flags |= FlagExtension

	case dwarf.AttrLowPC:
		if err := rd.ChkAddr(form); err != nil {
			return err
		}
		w.info.LowPC = rd.FormData

	case dwarf.AttrHighPC:
		if err := rd.ChkAddr(form); err != nil {
			return err
		}
		w.info.HighPC = rd.FormData

	case dwarf.AttrExternal:
		if err := rd.ChkFlag(form); err != nil {
			return err
		}
		if rd.FormData != 0 {
			w.info.Flags |= FlagExternal
		}

	case dwarf.AttrArtificial:
		if err := rd.ChkFlag(form); err != nil {
			return err
		}
		if rd.FormData != 0 {
			w.info.Flags |= FlagArtificial
		}

	case dwarf.AttrDeclaration:
		if err := rd.ChkFlag(form); err != nil {
			return err
		}
		if rd.FormData != 0 {
			w.info.Flags |= FlagDeclaration
		}
	}

	// a number of attributes carry unit-wide information when they appear on
	// the unit entry itself
	if tag == dwarf.TagCompileUnit && attr != 0 {
		unit := w.info.CompUnit

		switch attr {
		case dwarf.AttrLowPC:
			unit.LowPC = rd.FormData
			unit.TextSection = rd.FormSection
		case dwarf.AttrHighPC:
			unit.HighPC = rd.FormData
		case dwarf.AttrRanges:
			if err := rd.ChkData(form); err != nil {
				return err
			}
			unit.DebugRangesOffs = rd.FormData
		case dwarf.AttrCompDir:
			if err := rd.ChkString(form); err != nil {
				return err
			}
			unit.Dir = string(rd.FormBytes)
		case dwarf.AttrStmtList:
			if err := rd.ChkData(form); err != nil {
				return err
			}
			unit.LineInfoOffs = rd.FormData
		case dwarf.AttrBaseTypes:
			base, err := c.addCompUnit(rd.FormData)
			if err != nil {
				return err
			}
			unit.BaseTypes = base
		case dwarf.AttrLanguage:
			if err := rd.ChkData(form); err != nil {
				return err
			}
			unit.Language = uint16(rd.FormData)
		}
	}

	return nil
}

func (c *Cache) openObjectInfo(tag uint16, form uint16) error {
	w := &c.walk
	rd := c.rd

	if tag == dwarf.TagCompileUnit {
		unit, err := c.addCompUnit(w.section.Addr + rd.EntryPos)
		if err != nil {
			return err
		}
		if w.parent != nil {
			return curated.Errorf(InvalidDwarf, "compilation unit below top level")
		}
		unit.File = c.file
		unit.DebugRangesOffs = ^uint64(0)
		unit.RegIDScope = RegIDScope{
			BigEndian: c.file.BigEndian,
			Machine:   c.file.Machine,
			OSABI:     c.file.OSABI,
		}
		w.info = unit.Object
		w.unit = unit
	} else {
		info, err := c.addObjectInfo(w.section.Addr + rd.EntryPos)
		if err != nil {
			return err
		}
		w.info = info
	}

	if w.parent != nil {
		w.info.Parent = w.parent
	}
	w.hasChildren = form == dwarf.EntryHasChildren
	w.sibling = 0

	// an entry with a non-zero tag was loaded by an earlier walk and its
	// attributes can be skipped
	w.skip = w.info.Tag != 0
	if w.skip {
		return nil
	}

	w.info.Tag = tag
	w.info.CompUnit = w.unit
	return nil
}

func (c *Cache) closeObjectInfo(tag uint16) error {
	w := &c.walk
	rd := c.rd

	info := w.info
	sibling := w.sibling
	hasChildren := w.hasChildren

	// the unit entry's children run to the end of the unit when no sibling
	// attribute was given
	if tag == dwarf.TagCompileUnit && sibling == 0 {
		desc := rd.Desc()
		sibling = desc.UnitOffs + desc.UnitSize
	}

	if w.prevSibling != nil {
		w.prevSibling.Sibling = info
	} else if w.parent != nil {
		w.parent.Children = info
	} else if tag == dwarf.TagCompileUnit {
		c.CompUnits = info
	}
	w.prevSibling = info

	if w.skip {
		if sibling != 0 {
			rd.SetPos(sibling)
		}
		return nil
	}

	if tag == dwarf.TagEnumerator && info.Type == nil {
		info.Type = w.parent
	}

	// lazy child deferral: the body of a subprogram is not parsed until its
	// children are asked for. only possible when the sibling attribute says
	// where the body ends
	if sibling != 0 {
		switch info.Tag {
		case dwarf.TagGlobalSubroutine, dwarf.TagSubroutine, dwarf.TagSubprogram:
			rd.SetPos(sibling)
			return nil
		}
	}

	info.Flags |= FlagChildrenLoaded

	if sibling != 0 || hasChildren {
		siblingPos := sibling
		parent := w.parent
		prevSibling := w.prevSibling

		w.parent = info
		w.prevSibling = nil

		for {
			if siblingPos > 0 && rd.Pos() >= siblingPos {
				break
			}
			found, err := rd.ReadEntry(c.readObjectInfo, 0)
			if err != nil {
				return err
			}
			if !found {
				break
			}
		}
		if siblingPos > rd.Pos() {
			rd.SetPos(siblingPos)
		}

		w.parent = parent
		w.prevSibling = prevSibling
	}

	return nil
}

// addObjectReference queues a pending reference for resolution. org is the
// referenced entity; obj, when not nil, is the referring entity that will
// inherit attributes from org.
func (c *Cache) addObjectReference(sec *objfile.Section, org *ObjectInfo, obj *ObjectInfo) {
	// a reference to an already materialised entity with nothing to inherit
	// needs no resolution
	if org.Tag != 0 && obj == nil {
		return
	}
	if sec == nil {
		sec = c.walk.section
	}
	if org.CompUnit == nil && c.walk.unit != nil {
		offs := org.ID - sec.Addr
		desc := &c.walk.unit.Desc
		if desc.UnitOffs <= offs && desc.UnitOffs+desc.UnitSize > offs {
			org.CompUnit = c.walk.unit
		}
	}
	c.refs = append(c.refs, objectReference{sec: sec, org: org, obj: obj})
}

// readObjectRefs drains the pending reference queue, materialising
// placeholder entities by re-entering the walker at their position and
// propagating inherited attributes. draining is in FIFO order; references
// queued during a re-entrant walk are drained in turn.
//
// forward references in the origin attributes (abstract origin,
// specification) are not supported: the referenced entity must have been
// seen, or be locatable inside an already-walked unit, by the time the queue
// is drained. compilers are not known to emit such references.
func (c *Cache) readObjectRefs() error {
	for c.refsPos < len(c.refs) {
		ref := c.refs[c.refsPos]
		c.refsPos++

		if ref.org.CompUnit == nil {
			for info := c.CompUnits; info != nil; info = info.Sibling {
				unit := info.CompUnit
				if unit.Desc.Section == ref.sec {
					offs := ref.org.ID - ref.sec.Addr
					if unit.Desc.UnitOffs <= offs && unit.Desc.UnitOffs+unit.Desc.UnitSize > offs {
						ref.org.CompUnit = unit
						break
					}
				}
			}
		}
		if ref.org.CompUnit == nil || ref.org.CompUnit.Desc.Section != ref.sec {
			return curated.Errorf(InvalidDwarf, "referenced entry outside of any unit")
		}

		if ref.org.Tag == 0 {
			// re-enter the walker at the referenced entry to materialise it
			unit := ref.org.CompUnit
			saved := c.walk
			c.walk = walkState{section: ref.sec, unit: unit}
			c.rd.EnterSection(&unit.Desc, ref.sec, ref.org.ID-ref.sec.Addr)
			_, err := c.rd.ReadEntry(c.readObjectInfo, 0)
			c.rd.ExitSection()
			c.walk = saved
			if err != nil {
				return err
			}
		}

		if ref.obj != nil {
			if ref.org.Tag == 0 {
				return curated.Errorf(InvalidDwarf, "forward reference in origin attribute")
			}
			if ref.obj.Flags&FlagSpecification != 0 {
				ref.org.Definition = ref.obj
			}
			if ref.obj.Name == "" {
				ref.obj.Name = ref.org.Name
			}
			if ref.obj.Type == nil {
				ref.obj.Type = ref.org.Type
			}
			ref.obj.Flags |= ref.org.Flags &^ (FlagChildrenLoaded | FlagDeclaration | FlagSpecification)

			// an external definition makes the enclosing class or structure
			// visible too
			if ref.obj.Flags&FlagExternal != 0 {
				cls := ref.org
				for cls.Parent != nil &&
					(cls.Parent.Tag == dwarf.TagClassType || cls.Parent.Tag == dwarf.TagStructureType) {
					cls = cls.Parent
				}
				cls.Flags |= FlagExternal
			}
		}
	}

	c.refsPos = 0
	c.refs = c.refs[:0]
	return nil
}

// GetChildren returns the first child of the entity, parsing the children if
// they were deferred by the initial walk. the remaining children are reached
// through the Sibling field.
func (c *Cache) GetChildren(obj *ObjectInfo) (*ObjectInfo, error) {
	if obj.Flags&FlagChildrenLoaded != 0 {
		return obj.Children, nil
	}

	unit := obj.CompUnit
	rd := c.rd

	c.refs = c.refs[:0]
	c.refsPos = 0

	saved := c.walk
	c.walk = walkState{section: unit.Desc.Section, unit: unit}

	rd.EnterSection(&unit.Desc, unit.Desc.Section, obj.ID-unit.Desc.Section.Addr)

	// advance over the entity's own attributes, then read children until the
	// end of the unit or the null entry that terminates the child list
	var err error
	if _, err = rd.ReadEntry(nil, dwarfio.SkipAllAttrs); err == nil {
		endPos := unit.Desc.UnitOffs + unit.Desc.UnitSize
		c.walk.parent = obj
		c.walk.prevSibling = nil
		for rd.Pos() < endPos {
			var found bool
			found, err = rd.ReadEntry(c.readObjectInfo, 0)
			if err != nil || !found {
				break
			}
		}
		if err == nil {
			obj.Flags |= FlagChildrenLoaded
		}
	}

	rd.ExitSection()
	c.walk = saved

	if err != nil {
		obj.Children = nil
		rd.ClearErr()
		return nil, err
	}

	if err := c.readObjectRefs(); err != nil {
		return nil, err
	}

	return obj.Children, nil
}
