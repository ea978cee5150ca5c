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

package objfile

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Open reads the ELF file at the given path into the File model. section
// data is read eagerly; sections of type NOBITS carry no data.
func Open(path string) (*File, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	f := &File{
		Name:      path,
		BigEndian: ef.ByteOrder == binary.BigEndian,
		Elf64:     ef.Class == elf.ELFCLASS64,
		Machine:   uint16(ef.Machine),
		OSABI:     uint8(ef.OSABI),
	}

	// index zero is the reserved null section
	f.Sections = append(f.Sections, nil)

	for _, sec := range ef.Sections[1:] {
		s := &Section{
			File:  f,
			Name:  sec.Name,
			Addr:  sec.Addr,
			Size:  sec.Size,
			Type:  uint32(sec.Type),
			Flags: uint64(sec.Flags),
		}
		if sec.Type != elf.SHT_NOBITS {
			s.Data, err = sec.Data()
			if err != nil {
				return nil, err
			}
		}
		f.Sections = append(f.Sections, s)
	}

	f.DebugInfoFileName = debugLinkName(f)

	return f, nil
}

// debugLinkName returns the file name recorded in a .gnu_debuglink section,
// or the empty string. the CRC that follows the name is not checked here,
// that is for the caller opening the linked file to decide.
func debugLinkName(f *File) string {
	sec := f.SectionByName(".gnu_debuglink")
	if sec == nil || len(sec.Data) == 0 {
		return ""
	}
	idx := bytes.IndexByte(sec.Data, 0)
	if idx <= 0 {
		return ""
	}
	return string(sec.Data[:idx])
}
