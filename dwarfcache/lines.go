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
	"sort"

	"github.com/jetsetilly/dwarfcache/curated"
	"github.com/jetsetilly/dwarfcache/dwarf"
	"github.com/jetsetilly/dwarfcache/logger"
)

// the number of buckets in the cache-wide file name hash.
const fileInfoHashSize = 251

// CalcFileNameHash returns the hash of a file name. only the base name takes
// part in the hash: the walk starts at the end of the string and stops at
// the first separator, so that the same file reached through different
// directories hashes equally.
func CalcFileNameHash(name string) uint32 {
	var h uint32
	for l := len(name); l > 0; {
		l--
		ch := name[l]
		if ch == '/' || ch == '\\' {
			break
		}
		h = (h << 4) + uint32(ch)
		g := h & 0xf0000000
		if g != 0 {
			h ^= g >> 24
		}
		h &^= g
	}
	return h
}

func (c *Cache) addDir(unit *CompUnit, name string) {
	unit.Dirs = append(unit.Dirs, name)
}

func (c *Cache) addFile(unit *CompUnit, file *FileInfo) {
	file.NameHash = CalcFileNameHash(file.Name)
	if file.Dir == "" {
		file.Dir = unit.Dir
	}
	unit.Files = append(unit.Files, file)
}

func (c *Cache) addState(unit *CompUnit, state LineNumbersState) {
	unit.States = append(unit.States, state)
}

// LoadLineNumbers reconstructs the line number tables of a compilation unit.
// loading is idempotent; a unit with no line information is not an error.
func (c *Cache) LoadLineNumbers(unit *CompUnit) error {
	var sec = c.DebugLine
	if unit.Desc.Version <= 1 {
		sec = c.DebugLineV1
	}
	if sec == nil {
		return nil
	}
	if unit.LineInfoLoaded {
		return nil
	}

	rd := c.rd
	rd.EnterSection(&unit.Desc, sec, unit.LineInfoOffs)

	err := func() error {
		// the unit's own name is file number zero
		c.addFile(unit, &FileInfo{Dir: unit.Dir, Name: unit.Object.Name})

		unitSize := uint64(rd.ReadU4())
		if rd.Err() != nil {
			return rd.Err()
		}

		if unit.Desc.Version <= 1 {
			return c.loadLineNumbersV1(unit, unitSize)
		}

		dwarf64 := false
		if unitSize == 0xffffffff {
			unitSize = rd.ReadU8() + 12
			dwarf64 = true
		} else {
			unitSize += 4
		}
		return c.loadLineNumbersV2(unit, unitSize, dwarf64)
	}()

	rd.ExitSection()

	if err != nil {
		unit.Files = nil
		unit.Dirs = nil
		unit.States = nil
		unit.StatesIndex = nil
		rd.ClearErr()
		return err
	}

	c.computeReverseLookupIndices(unit)
	unit.LineInfoLoaded = true
	return nil
}

// loadLineNumbersV1 reads the line table encoding of the .line section: a
// base address followed by (line, column, address delta) triples.
func (c *Cache) loadLineNumbersV1(unit *CompUnit, unitSize uint64) error {
	rd := c.rd

	var state LineNumbersState
	var line uint32

	addr, _ := rd.ReadAddress()

	for rd.Err() == nil && rd.Pos() < unit.LineInfoOffs+unitSize {
		state.Line = rd.ReadU4()
		state.Column = rd.ReadU2()
		if state.Column == 0xffff {
			state.Column = 0
		}
		state.Address = addr + uint64(rd.ReadU4())

		// a zero line continues from the previous line
		if state.Line == 0 {
			state.Line = line + 1
			state.Column = 0
		}

		c.addState(unit, state)
		line = state.Line
	}

	return rd.Err()
}

// loadLineNumbersV2 runs the line number program of the .debug_line section,
// DWARF versions 2 to 4.
func (c *Cache) loadLineNumbersV2(unit *CompUnit, unitSize uint64, dwarf64 bool) error {
	rd := c.rd

	version := rd.ReadU2()
	if rd.Err() != nil {
		return rd.Err()
	}
	if version < 2 || version > 4 {
		return curated.Errorf(InvalidDwarf, "invalid line number info version")
	}

	var headerSize uint64
	if dwarf64 {
		headerSize = rd.ReadU8()
	} else {
		headerSize = uint64(rd.ReadU4())
	}
	headerPos := rd.Pos()

	minInstructionLength := rd.ReadU1()
	maxOpsPerInstruction := uint8(1)
	if version >= 4 {
		maxOpsPerInstruction = rd.ReadU1()
	}
	isStmtDefault := rd.ReadU1() != 0
	lineBase := int8(rd.ReadU1())
	lineRange := rd.ReadU1()
	opcodeBase := rd.ReadU1()
	if rd.Err() != nil {
		return rd.Err()
	}
	if lineRange == 0 || maxOpsPerInstruction == 0 || opcodeBase == 0 {
		return curated.Errorf(InvalidDwarf, "invalid line info header")
	}

	// the argument counts of the standard opcodes are implied by the
	// handlers below
	rd.Skip(uint64(opcodeBase) - 1)

	// directory names
	for {
		name := rd.ReadString()
		if rd.Err() != nil {
			return rd.Err()
		}
		if name == "" {
			break
		}
		c.addDir(unit, name)
	}

	// source file names
	for {
		file := &FileInfo{}
		file.Name = rd.ReadString()
		if rd.Err() != nil {
			return rd.Err()
		}
		if file.Name == "" {
			break
		}
		dir := rd.ReadULEB128()
		if dir > 0 && dir <= uint64(len(unit.Dirs)) {
			file.Dir = unit.Dirs[dir-1]
		}
		file.ModTime = rd.ReadULEB128()
		file.Size = rd.ReadULEB128()
		c.addFile(unit, file)
	}

	if rd.Err() != nil {
		return rd.Err()
	}
	if headerPos+headerSize != rd.Pos() {
		return curated.Errorf(InvalidDwarf, "invalid line info header")
	}

	// initial state of the line number machine
	reset := func() LineNumbersState {
		state := LineNumbersState{File: 1, Line: 1}
		if isStmtDefault {
			state.Flags |= LineIsStmt
		}
		return state
	}
	state := reset()

	for rd.Err() == nil && rd.Pos() < unit.LineInfoOffs+unitSize {
		opcode := rd.ReadU1()

		if opcode >= opcodeBase {
			// special opcode: line and address advance in one byte
			adj := uint32(opcode - opcodeBase)
			opAdvance := adj / uint32(lineRange)
			state.Line += uint32(int32(adj%uint32(lineRange)) + int32(lineBase))
			a := uint32(state.OpIndex) + opAdvance
			state.Address += uint64(a / uint32(maxOpsPerInstruction) * uint32(minInstructionLength))
			state.OpIndex = uint8(a % uint32(maxOpsPerInstruction))
			c.addState(unit, state)
			state.Flags &^= LineBasicBlock | LinePrologueEnd | LineEpilogueBegin
			state.Discriminator = 0
		} else if opcode == 0 {
			// extended opcode
			opSize := rd.ReadULEB128()
			opPos := rd.Pos()

			sub := rd.ReadU1()
			switch sub {
			case dwarf.LNEDefineFile:
				file := &FileInfo{}
				file.Name = rd.ReadString()
				dir := rd.ReadULEB128()
				if dir > 0 && dir <= uint64(len(unit.Dirs)) {
					file.Dir = unit.Dirs[dir-1]
				}
				file.ModTime = rd.ReadULEB128()
				file.Size = rd.ReadULEB128()
				c.addFile(unit, file)

			case dwarf.LNEEndSequence:
				state.Flags |= LineEndSequence
				c.addState(unit, state)
				state = reset()

			case dwarf.LNESetAddress:
				addr, sec := rd.ReadAddress()
				state.Address = addr
				if sec != unit.TextSection {
					state.Address = 0
				}

			case dwarf.LNESetDiscriminator:
				state.Discriminator = uint8(rd.ReadULEB128())

			default:
				logger.Logf(logger.Allow, "dwarf", "skipping unknown extended line opcode %#02x", sub)
				rd.Skip(opSize - 1)
			}

			if rd.Err() != nil {
				return rd.Err()
			}
			if rd.Pos() != opPos+opSize {
				return curated.Errorf(InvalidDwarf, "invalid line info op size")
			}
		} else {
			switch opcode {
			case dwarf.LNSCopy:
				c.addState(unit, state)
				state.Flags &^= LineBasicBlock | LinePrologueEnd | LineEpilogueBegin
			case dwarf.LNSAdvancePC:
				state.Address += rd.ReadULEB128() * uint64(minInstructionLength)
			case dwarf.LNSAdvanceLine:
				state.Line += uint32(int32(rd.ReadSLEB128()))
			case dwarf.LNSSetFile:
				state.File = uint32(rd.ReadULEB128())
			case dwarf.LNSSetColumn:
				state.Column = uint16(rd.ReadULEB128())
			case dwarf.LNSNegateStmt:
				state.Flags ^= LineIsStmt
			case dwarf.LNSSetBasicBlock:
				state.Flags |= LineBasicBlock
			case dwarf.LNSConstAddPC:
				state.Address += uint64((255 - uint32(opcodeBase)) / uint32(lineRange) * uint32(minInstructionLength))
			case dwarf.LNSFixedAdvancePC:
				state.Address += uint64(rd.ReadU2())
			case dwarf.LNSSetPrologueEnd:
				state.Flags |= LinePrologueEnd
			case dwarf.LNSSetEpilogueBegin:
				state.Flags |= LineEpilogueBegin
			case dwarf.LNSSetISA:
				state.ISA = uint8(rd.ReadULEB128())
			default:
				return curated.Errorf(InvalidDwarf, "invalid line info op code")
			}
		}
	}

	return rd.Err()
}

// computeReverseLookupIndices sorts the unit's states by address and builds
// the second sort order over them: file, line, column, address. the unit's
// files join the cache-wide file name hash at the same time.
func (c *Cache) computeReverseLookupIndices(unit *CompUnit) {
	sort.SliceStable(unit.States, func(i, j int) bool {
		return unit.States[i].Address < unit.States[j].Address
	})

	unit.StatesIndex = make([]*LineNumbersState, len(unit.States))
	for i := range unit.States {
		unit.StatesIndex[i] = &unit.States[i]
	}
	sort.SliceStable(unit.StatesIndex, func(i, j int) bool {
		s1 := unit.StatesIndex[i]
		s2 := unit.StatesIndex[j]
		if s1.File != s2.File {
			return s1.File < s2.File
		}
		if s1.Line != s2.Line {
			return s1.Line < s2.Line
		}
		if s1.Column != s2.Column {
			return s1.Column < s2.Column
		}
		return s1.Address < s2.Address
	})

	if c.fileInfoHash == nil {
		c.fileInfoHash = make([]*FileInfo, fileInfoHashSize)
	}
	for _, file := range unit.Files {
		h := file.NameHash % fileInfoHashSize
		file.CompUnit = unit
		file.nextInHash = c.fileInfoHash[h]
		c.fileInfoHash[h] = file
	}
}

// FindFileInfos calls the visit function for every file in the cache whose
// base name hashes equally to the given name and whose name matches it
// exactly. iteration stops when the visit function returns false.
func (c *Cache) FindFileInfos(name string, visit func(*FileInfo) bool) {
	if c.fileInfoHash == nil {
		return
	}
	h := CalcFileNameHash(name) % fileInfoHashSize
	for file := c.fileInfoHash[h]; file != nil; file = file.nextInHash {
		if file.Name == name {
			if !visit(file) {
				return
			}
		}
	}
}
