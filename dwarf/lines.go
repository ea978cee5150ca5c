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

package dwarf

// standard opcodes of the line number program. opcodes greater than or equal
// to the opcode base of the program header are special opcodes and encode a
// line and address advance directly.
const (
	LNSCopy             = 0x01
	LNSAdvancePC        = 0x02
	LNSAdvanceLine      = 0x03
	LNSSetFile          = 0x04
	LNSSetColumn        = 0x05
	LNSNegateStmt       = 0x06
	LNSSetBasicBlock    = 0x07
	LNSConstAddPC       = 0x08
	LNSFixedAdvancePC   = 0x09
	LNSSetPrologueEnd   = 0x0a
	LNSSetEpilogueBegin = 0x0b
	LNSSetISA           = 0x0c
)

// extended opcodes of the line number program, introduced by a zero opcode.
const (
	LNEEndSequence      = 0x01
	LNESetAddress       = 0x02
	LNEDefineFile       = 0x03
	LNESetDiscriminator = 0x04
	LNELoUser           = 0x80
	LNEHiUser           = 0xff
)

// source language codes recorded by the Language attribute.
const (
	LangC89        = 0x0001
	LangC          = 0x0002
	LangAda83      = 0x0003
	LangCPlusPlus  = 0x0004
	LangCobol74    = 0x0005
	LangCobol85    = 0x0006
	LangFortran77  = 0x0007
	LangFortran90  = 0x0008
	LangPascal83   = 0x0009
	LangModula2    = 0x000a
	LangJava       = 0x000b
	LangC99        = 0x000c
	LangAda95      = 0x000d
	LangFortran95  = 0x000e
	LangPLI        = 0x000f
	LangObjC       = 0x0010
	LangObjCPlus   = 0x0011
	LangUPC        = 0x0012
	LangD          = 0x0013
	LangPython     = 0x0014
	LangGo         = 0x0016
	LangLoUser     = 0x8000
	LangMipsAssem  = 0x8001
	LangHiUser     = 0xffff
)
