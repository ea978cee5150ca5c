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

// fundamental type codes. version 1 only.
const (
	FTChar            = 0x0001
	FTSignedChar      = 0x0002
	FTUnsignedChar    = 0x0003
	FTShort           = 0x0004
	FTSignedShort     = 0x0005
	FTUnsignedShort   = 0x0006
	FTInteger         = 0x0007
	FTSignedInteger   = 0x0008
	FTUnsignedInteger = 0x0009
	FTLong            = 0x000a
	FTSignedLong      = 0x000b
	FTUnsignedLong    = 0x000c
	FTPointer         = 0x000d
	FTFloat           = 0x000e
	FTDblPrecFloat    = 0x000f
	FTExtPrecFloat    = 0x0010
	FTComplex         = 0x0011
	FTDblPrecComplex  = 0x0012
	FTVoid            = 0x0014
	FTBoolean         = 0x0015
	FTExtPrecComplex  = 0x0016
	FTLabel           = 0x0017
	FTLoUser          = 0x8000
	FTHiUser          = 0xffff
)

// type modifier codes used by the ModFundType and ModUDType attributes.
// version 1 only.
const (
	ModPointerTo   = 0x01
	ModReferenceTo = 0x02
	ModConst       = 0x03
	ModVolatile    = 0x04
)

// array subscript data formats used by the SubscrData attribute. version 1
// only. the two low bits say whether the bounds are constants or location
// expressions: bit one for the lower bound, bit zero for the upper bound.
const (
	FmtFTCC = 0x0 // fundamental type, constant bounds
	FmtFTCX = 0x1 // fundamental type, constant lower, expression upper
	FmtFTXC = 0x2 // fundamental type, expression lower, constant upper
	FmtFTXX = 0x3 // fundamental type, expression bounds
	FmtUTCC = 0x4 // user defined type, constant bounds
	FmtUTCX = 0x5 // user defined type, constant lower, expression upper
	FmtUTXC = 0x6 // user defined type, expression lower, constant upper
	FmtUTXX = 0x7 // user defined type, expression bounds
	FmtET   = 0x8 // element type indicator
)

// FmtLowerIsExpr returns true if the lower bound of an index range with the
// given format is a block-2 location expression rather than a constant.
func FmtLowerIsExpr(fmt uint8) bool {
	return fmt&0x2 == 0x2
}

// FmtUpperIsExpr returns true if the upper bound of an index range with the
// given format is a block-2 location expression rather than a constant.
func FmtUpperIsExpr(fmt uint8) bool {
	return fmt&0x1 == 0x1
}
