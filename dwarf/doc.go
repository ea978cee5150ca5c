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

// Package dwarf defines the constants of the DWARF binary formats, versions
// 1.1 through 4.
//
// DWARF 1.1 and DWARF 2 deliberately share a constant space for tags,
// attributes and forms. version 1 attribute codes are the version 2 codes
// shifted left by four bits with the form in the low four bits; the codes in
// this package are the unshifted values so a single set of constants serves
// both versions. codes that exist only in version 1 (fundamental types, type
// modifiers, subscript data) occupy gaps in the version 2 numbering.
package dwarf
