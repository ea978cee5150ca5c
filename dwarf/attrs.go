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

// attribute codes. version 1 codes appear here right-shifted by four bits so
// that they share a constant space with version 2 and later. the codes at
// 0x05 to 0x08 and 0x0a exist only in version 1.
const (
	AttrSibling            = 0x01
	AttrLocation           = 0x02
	AttrName               = 0x03
	AttrFundType           = 0x05 // version 1 only
	AttrModFundType        = 0x06 // version 1 only
	AttrUserDefType        = 0x07 // version 1 only
	AttrModUDType          = 0x08 // version 1 only
	AttrOrdering           = 0x09
	AttrSubscrData         = 0x0a // version 1 only
	AttrByteSize           = 0x0b
	AttrBitOffset          = 0x0c
	AttrBitSize            = 0x0d
	AttrElementList        = 0x0f // version 1 only
	AttrStmtList           = 0x10
	AttrLowPC              = 0x11
	AttrHighPC             = 0x12
	AttrLanguage           = 0x13
	AttrDiscr              = 0x15
	AttrDiscrValue         = 0x16
	AttrVisibility         = 0x17
	AttrImport             = 0x18
	AttrStringLength       = 0x19
	AttrCommonReference    = 0x1a
	AttrCompDir            = 0x1b
	AttrConstValue         = 0x1c
	AttrContainingType     = 0x1d
	AttrDefaultValue       = 0x1e
	AttrInline             = 0x20
	AttrIsOptional         = 0x21
	AttrLowerBound         = 0x22
	AttrProducer           = 0x25
	AttrPrototyped         = 0x27
	AttrReturnAddr         = 0x2a
	AttrStartScope         = 0x2c
	AttrBitStride          = 0x2e
	AttrUpperBound         = 0x2f
	AttrAbstractOrigin     = 0x31
	AttrAccessibility      = 0x32
	AttrAddressClass       = 0x33
	AttrArtificial         = 0x34
	AttrBaseTypes          = 0x35
	AttrCallingConvention  = 0x36
	AttrCount              = 0x37
	AttrDataMemberLocation = 0x38
	AttrDeclColumn         = 0x39
	AttrDeclFile           = 0x3a
	AttrDeclLine           = 0x3b
	AttrDeclaration        = 0x3c
	AttrDiscrList          = 0x3d
	AttrEncoding           = 0x3e
	AttrExternal           = 0x3f
	AttrFrameBase          = 0x40
	AttrFriend             = 0x41
	AttrIdentifierCase     = 0x42
	AttrMacroInfo          = 0x43
	AttrNamelistItem       = 0x44
	AttrPriority           = 0x45
	AttrSegment            = 0x46
	AttrSpecification      = 0x47
	AttrStaticLink         = 0x48
	AttrType               = 0x49
	AttrUseLocation        = 0x4a
	AttrVariableParameter  = 0x4b
	AttrVirtuality         = 0x4c
	AttrVtableElemLocation = 0x4d
	AttrAllocated          = 0x4e
	AttrAssociated         = 0x4f
	AttrDataLocation       = 0x50
	AttrByteStride         = 0x51
	AttrEntryPC            = 0x52
	AttrUseUTF8            = 0x53
	AttrExtension          = 0x54
	AttrRanges             = 0x55
	AttrTrampoline         = 0x56
	AttrCallColumn         = 0x57
	AttrCallFile           = 0x58
	AttrCallLine           = 0x59
	AttrDescription        = 0x5a
	AttrSignature          = 0x69
	AttrMainSubprogram     = 0x6a
	AttrDataBitOffset      = 0x6b
	AttrConstExpr          = 0x6c
	AttrEnumClass          = 0x6d
	AttrLinkageName        = 0x6e
	AttrLoUser             = 0x2000
	AttrHiUser             = 0x3fff
)
