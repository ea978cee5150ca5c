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
	"github.com/jetsetilly/dwarfcache/dwarfio"
	"github.com/jetsetilly/dwarfcache/objfile"
)

// flags recorded on an ObjectInfo while reading its entry and while
// resolving references between entries.
const (
	FlagExternal = 1 << iota
	FlagArtificial
	FlagDeclaration
	FlagSpecification
	FlagAbstractOrigin
	FlagExtension
	FlagChildrenLoaded
)

// RangeBound is one bound of an index range entity. the bound is either a
// constant or a block-2 location expression, decided by the range format.
type RangeBound struct {
	Value int64
	Expr  []byte
}

// ObjectInfo describes one debugging information entry. entries are interned
// by their identifier: the address of their section plus their offset within
// it. an ObjectInfo with a tag of zero has been referenced by another entry
// but not yet parsed.
type ObjectInfo struct {
	ID    uint64
	Tag   uint16
	Flags uint32

	// the name attribute, or the empty string
	Name string

	// the owning compilation unit. resolved lazily for entries that are
	// first seen as the target of a reference
	CompUnit *CompUnit

	// tree linkage. Children is only complete when FlagChildrenLoaded is
	// set; use Cache.GetChildren to force loading
	Parent   *ObjectInfo
	Sibling  *ObjectInfo
	Children *ObjectInfo

	// the type attribute
	Type *ObjectInfo

	// for a declaration that later receives a defining entry through a
	// specification back-link
	Definition *ObjectInfo

	// address window, valid for entries with code addresses
	LowPC  uint64
	HighPC uint64

	// fundamental type code, valid when Tag is dwarf.TagFundType
	FundType uint16

	// index range payload, valid when Tag is dwarf.TagIndexRange
	Fmt  uint8
	Low  RangeBound
	High RangeBound

	hashNext *ObjectInfo
}

// RegIDScope identifies the register numbering the unit's debug information
// was written against.
type RegIDScope struct {
	BigEndian bool
	Machine   uint16
	OSABI     uint8
}

// CompUnit is one compilation unit of the debug information.
type CompUnit struct {
	// the unit's own entry. units are chained through Object.Sibling
	Object *ObjectInfo

	File *objfile.File
	Desc dwarfio.UnitDescriptor

	// address window of the unit. DebugRangesOffs is all-ones when the unit
	// has no ranges attribute
	LowPC           uint64
	HighPC          uint64
	TextSection     *objfile.Section
	DebugRangesOffs uint64
	ARangesFound    bool

	// source metadata
	Dir          string
	Language     uint16
	LineInfoOffs uint64

	// unit holding the sizes of fundamental types, when the base types
	// attribute names one
	BaseTypes *CompUnit

	RegIDScope RegIDScope

	// line number tables, built by LoadLineNumbers. States is sorted by
	// address, StatesIndex by file, line, column and address
	Files          []*FileInfo
	Dirs           []string
	States         []LineNumbersState
	StatesIndex    []*LineNumbersState
	LineInfoLoaded bool
}

// FileInfo is one source file of a compilation unit's line number table.
type FileInfo struct {
	Name     string
	Dir      string
	ModTime  uint64
	Size     uint64
	NameHash uint32
	CompUnit *CompUnit

	nextInHash *FileInfo
}

// flags of a line number state.
const (
	LineIsStmt = 1 << iota
	LineBasicBlock
	LinePrologueEnd
	LineEpilogueBegin
	LineEndSequence
)

// LineNumbersState is one row of a reconstructed line number table.
type LineNumbersState struct {
	Address       uint64
	File          uint32
	Line          uint32
	Column        uint16
	Flags         uint16
	ISA           uint8
	OpIndex       uint8
	Discriminator uint8
}

// UnitAddressRange maps a range of code addresses to the compilation unit
// that covers it.
type UnitAddressRange struct {
	Section *objfile.Section
	Addr    uint64
	Size    uint64
	Unit    *CompUnit
}

// PubNamesInfo is one entry of a public names table. entries form chains
// through the Next index; a Next of zero terminates the chain.
type PubNamesInfo struct {
	ID   uint64
	Next uint32
}

// PubNamesTable is a name-hashed index of the externally visible objects of
// the debug information. Entries[0] is a sentinel so that a Next of zero can
// terminate a chain.
type PubNamesTable struct {
	Hash    []uint32
	Entries []PubNamesInfo
}
