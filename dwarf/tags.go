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

// debugging information entry tags. a tag of zero is never emitted by a
// compiler and is used to mark an entity that has been referenced but not
// yet parsed.
const (
	TagArrayType             = 0x01
	TagClassType             = 0x02
	TagEntryPoint            = 0x03
	TagEnumerationType       = 0x04
	TagFormalParameter       = 0x05
	TagGlobalSubroutine      = 0x06 // version 1 only
	TagGlobalVariable        = 0x07 // version 1 only
	TagImportedDeclaration   = 0x08
	TagLabel                 = 0x0a
	TagLexicalBlock          = 0x0b
	TagLocalVariable         = 0x0c // version 1 only
	TagMember                = 0x0d
	TagPointerType           = 0x0f
	TagReferenceType         = 0x10
	TagCompileUnit           = 0x11
	TagStringType            = 0x12
	TagStructureType         = 0x13
	TagSubroutine            = 0x14 // version 1 only
	TagSubroutineType        = 0x15
	TagTypedef               = 0x16
	TagUnionType             = 0x17
	TagUnspecifiedParameters = 0x18
	TagVariant               = 0x19
	TagCommonBlock           = 0x1a
	TagCommonInclusion       = 0x1b
	TagInheritance           = 0x1c
	TagInlinedSubroutine     = 0x1d
	TagModule                = 0x1e
	TagPtrToMemberType       = 0x1f
	TagSetType               = 0x20
	TagSubrangeType          = 0x21
	TagWithStmt              = 0x22
	TagAccessDeclaration     = 0x23
	TagBaseType              = 0x24
	TagCatchBlock            = 0x25
	TagConstType             = 0x26
	TagConstant              = 0x27
	TagEnumerator            = 0x28
	TagFileType              = 0x29
	TagFriend                = 0x2a
	TagNamelist              = 0x2b
	TagNamelistItem          = 0x2c
	TagPackedType            = 0x2d
	TagSubprogram            = 0x2e
	TagTemplateTypeParam     = 0x2f
	TagTemplateValueParam    = 0x30
	TagThrownType            = 0x31
	TagTryBlock              = 0x32
	TagVariantPart           = 0x33
	TagVariable              = 0x34
	TagVolatileType          = 0x35
	TagDwarfProcedure        = 0x36
	TagRestrictType          = 0x37
	TagInterfaceType         = 0x38
	TagNamespace             = 0x39
	TagImportedModule        = 0x3a
	TagUnspecifiedType       = 0x3b
	TagPartialUnit           = 0x3c
	TagImportedUnit          = 0x3d
	TagCondition             = 0x3f
	TagSharedType            = 0x40
	TagTypeUnit              = 0x41
	TagLoUser                = 0x4080
	TagHiUser                = 0xffff
)

// synthetic tags for entities created by the reader itself rather than found
// in the debug information. the block of 0x100 values starting at
// TagFundType is reserved for synthetic entities.
const (
	TagFundType     = 0x2001
	TagIndexRange   = 0x2002
	TagModPointer   = 0x2003
	TagModReference = 0x2004
)

// SyntheticTag returns true if the tag identifies an entity created by the
// reader rather than one found in the debug information.
func SyntheticTag(tag uint16) bool {
	return tag >= TagFundType && tag < TagFundType+0x100
}
