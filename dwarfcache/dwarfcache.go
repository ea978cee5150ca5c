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

// Package dwarfcache builds an in-memory index of the DWARF debug
// information of an object file and answers queries against it: which
// compilation unit covers an address, which object has a name, what are the
// properties of an object, which source line corresponds to a code address.
//
// The cache is built lazily on the first call to GetCache for a file and
// lives until the file is closed. entries are interned by their section
// offset and the bodies of subprograms are not parsed until their children
// are asked for.
//
// All of the cache's operations are single threaded with respect to one
// object file. the caller serialises access.
package dwarfcache

import (
	"github.com/jetsetilly/dwarfcache/curated"
	"github.com/jetsetilly/dwarfcache/dwarfio"
	"github.com/jetsetilly/dwarfcache/logger"
	"github.com/jetsetilly/dwarfcache/objfile"
)

// error patterns for the dwarfcache package. SymbolNotFound is a normal
// outcome of the property reading functions and is used by callers to drive
// fallback chains; the other patterns indicate corrupt debug information or
// a failing collaborator.
const (
	InvalidDwarf     = dwarfio.InvalidDwarf
	InvalidReference = "invalid entry reference: %v"
	SymbolNotFound   = "symbol not found: %v"
	InvalidContext   = "invalid context: %v"
	InvalidDataSize  = "invalid data size: %v"
	InvalidDataType  = "invalid data type: %v"
)

// the number of entities in one arena chunk. chunks are never reallocated so
// pointers to entities remain stable for the life of the cache.
const objectArraySize = 128

// objectReference is a pending cross-entity reference, waiting for the
// referenced entity to be materialised.
type objectReference struct {
	sec *objfile.Section
	org *ObjectInfo
	obj *ObjectInfo
}

// walkState is the cursor state of a walk over an information section. it is
// saved and restored around any re-entrant walk: lazy child loads and the
// materialisation of referenced entities.
type walkState struct {
	section     *objfile.Section
	unit        *CompUnit
	parent      *ObjectInfo
	prevSibling *ObjectInfo

	// per-entry state shared between the attribute callbacks of the entry
	// currently being read
	info        *ObjectInfo
	sibling     uint64
	hasChildren bool
	skip        bool
}

// Cache is the queryable index of the debug information of one object file.
type Cache struct {
	file *objfile.File
	rd   *dwarfio.Reader

	// entity interner: hash buckets over arena-allocated entities
	objectHash []*ObjectInfo
	arena      []*[objectArraySize]ObjectInfo
	arenaPos   int

	// compilation units in file order, chained through Object.Sibling
	CompUnits *ObjectInfo

	// address range index, sorted ascending by address
	AddrRanges []UnitAddressRange

	// public names and types indices
	PubNames PubNamesTable
	PubTypes PubNamesTable

	// sections kept for collaborators: the expression evaluator and the
	// frame information decoder
	DebugLineV1 *objfile.Section
	DebugLine   *objfile.Section
	DebugLoc    *objfile.Section
	DebugRanges *objfile.Section
	DebugFrame  *objfile.Section
	EHFrame     *objfile.Section

	fileInfoHash []*FileInfo

	walk    walkState
	refs    []objectReference
	refsPos int

	// the first fatal error encountered while building the cache. surfaced
	// by every subsequent query
	err error
}

// one close listener on the object file layer serves every cache.
var closeListenerAdded bool

func freeCache(file *objfile.File) {
	file.DwarfCache = nil
}

// GetFile returns the file that carries the debug information for the given
// file: the file itself, or the separate debug information file it names if
// that file can be opened.
func GetFile(file *objfile.File) *objfile.File {
	if file.DebugInfoFileName != "" {
		debug, err := objfile.Open(file.DebugInfoFileName)
		if err == nil {
			logger.Logf(logger.Allow, "dwarf", "using debug information from %s", debug.Name)
			return debug
		}
	}
	return file
}

// GetCache returns the debug information cache for the file, building it on
// the first call. a failure to build is sticky: every subsequent call
// returns the same error.
func GetCache(file *objfile.File) (*Cache, error) {
	if file.DwarfCache != nil {
		c := file.DwarfCache.(*Cache)
		if c.err != nil {
			return nil, c.err
		}
		return c, nil
	}

	if !closeListenerAdded {
		objfile.AddCloseListener(freeCache)
		closeListenerAdded = true
	}

	c := &Cache{
		file: file,
		rd:   dwarfio.NewReader(file),
	}
	file.DwarfCache = c
	c.allocateObjHash()

	err := c.rd.LoadAbbrevTable()
	if err == nil {
		err = c.loadDebugSections()
	}
	if err == nil {
		err = c.loadAddrRanges()
	}
	if err != nil {
		c.err = err
		return nil, err
	}

	var units int
	for info := c.CompUnits; info != nil; info = info.Sibling {
		units++
	}
	logger.Logf(logger.Allow, "dwarf", "%s: %d compilation units, %d address ranges", file.Name, units, len(c.AddrRanges))

	return c, nil
}

// objHash is the bucket of an entity identifier. the truncation to 32 bits
// is deliberate.
func objHash(id uint64, size uint32) uint32 {
	return (uint32(id) + uint32(id)>>8) % size
}

// allocateObjHash sizes the interner's bucket array in proportion to the
// debug information being indexed. collisions are expected and bucket chains
// are short; the table is never rehashed.
func (c *Cache) allocateObjHash() {
	var size uint64
	for _, sec := range c.file.Sections {
		if sec == nil {
			continue
		}
		if sec.Name == ".debug" || sec.Name == ".debug_info" {
			size += sec.Size
		}
	}
	size /= 100
	if size < 251 {
		size = 251
	}
	c.objectHash = make([]*ObjectInfo, size)
}

func (c *Cache) allocObject() *ObjectInfo {
	if len(c.arena) == 0 || c.arenaPos >= objectArraySize {
		c.arena = append(c.arena, new([objectArraySize]ObjectInfo))
		c.arenaPos = 0
	}
	o := &c.arena[len(c.arena)-1][c.arenaPos]
	c.arenaPos++
	return o
}

// FindObject returns the entity with the given identifier, or nil.
func FindObject(c *Cache, id uint64) *ObjectInfo {
	info := c.objectHash[objHash(id, uint32(len(c.objectHash)))]
	for info != nil {
		if info.ID == id {
			return info
		}
		info = info.hashNext
	}
	return nil
}

// addObjectInfo interns the entity with the given identifier, allocating a
// placeholder if it has not been seen before. fails when the identifier
// falls outside the section being walked.
func (c *Cache) addObjectInfo(id uint64) (*ObjectInfo, error) {
	hash := objHash(id, uint32(len(c.objectHash)))
	info := c.objectHash[hash]
	for info != nil {
		if info.ID == id {
			return info, nil
		}
		info = info.hashNext
	}

	sec := c.walk.section
	if id < sec.Addr || id > sec.Addr+sec.Size {
		return nil, curated.Errorf(InvalidReference, "outside of section")
	}

	info = c.allocObject()
	info.hashNext = c.objectHash[hash]
	c.objectHash[hash] = info
	info.ID = id
	return info, nil
}

// addCompUnit interns the entity with the given identifier and attaches a
// compilation unit to it if it does not have one already.
func (c *Cache) addCompUnit(id uint64) (*CompUnit, error) {
	info, err := c.addObjectInfo(id)
	if err != nil {
		return nil, err
	}
	if info.CompUnit == nil {
		info.CompUnit = &CompUnit{Object: info}
	}
	return info.CompUnit, nil
}

// loadDebugSections walks every information section of the file, interning
// entities and noting the sections collaborators will want later. public
// names tables are loaded, or synthesised, once the walk is complete.
func (c *Cache) loadDebugSections() error {
	var pubNames *objfile.Section
	var pubTypes *objfile.Section
	var debugInfo *objfile.Section

	for _, sec := range c.file.Sections {
		if sec == nil || sec.Size == 0 || sec.Name == "" || sec.Type == objfile.SectionTypeNobits {
			continue
		}

		switch sec.Name {
		case ".debug", ".debug_info":
			if sec.Name == ".debug_info" {
				debugInfo = sec
			}

			c.refs = c.refs[:0]
			c.refsPos = 0
			c.walk = walkState{section: sec}
			c.rd.EnterSection(nil, sec, 0)

			var err error
			for c.rd.Pos() < sec.Size {
				var desc *dwarfio.UnitDescriptor
				c.walk.unit = nil
				desc, err = c.rd.ReadUnit(c.readObjectInfo)
				if err != nil {
					break
				}
				if c.walk.unit != nil {
					c.walk.unit.Desc = *desc
				}
			}

			c.rd.ExitSection()
			c.walk = walkState{}
			if err != nil {
				return err
			}
			if err = c.readObjectRefs(); err != nil {
				return err
			}

		case ".line":
			c.DebugLineV1 = sec
		case ".debug_line":
			c.DebugLine = sec
		case ".debug_loc":
			c.DebugLoc = sec
		case ".debug_ranges":
			c.DebugRanges = sec
		case ".debug_frame":
			c.DebugFrame = sec
		case ".eh_frame":
			c.EHFrame = sec
		case ".debug_pubnames":
			pubNames = sec
		case ".debug_pubtypes":
			pubTypes = sec
		}
	}

	if debugInfo != nil {
		if pubNames != nil {
			if err := c.loadPubNames(debugInfo, pubNames, &c.PubNames); err != nil {
				return err
			}
		} else {
			if err := c.createPubNames(&c.PubNames); err != nil {
				return err
			}
		}
		if pubTypes != nil {
			if err := c.loadPubNames(debugInfo, pubTypes, &c.PubTypes); err != nil {
				return err
			}
		}
	}

	return nil
}
