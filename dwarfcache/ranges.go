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
	"github.com/jetsetilly/dwarfcache/objfile"
)

func (c *Cache) addAddrRange(sec *objfile.Section, unit *CompUnit, addr uint64, size uint64) {
	c.AddrRanges = append(c.AddrRanges, UnitAddressRange{
		Section: sec,
		Addr:    addr,
		Size:    size,
		Unit:    unit,
	})
}

// loadAddrRanges builds the address range index. ranges are taken from
// .debug_aranges where the section covers a unit; units not covered fall
// back to their ranges attribute or, failing that, to the address window of
// the unit entry itself.
func (c *Cache) loadAddrRanges() error {
	rd := c.rd

	for _, sec := range c.file.Sections {
		if sec == nil || sec.Size == 0 || sec.Name != ".debug_aranges" {
			continue
		}

		info := c.CompUnits
		rd.EnterSection(nil, sec, 0)
		err := c.loadARanges(sec, info)
		rd.ExitSection()
		if err != nil {
			return err
		}
	}

	for info := c.CompUnits; info != nil; info = info.Sibling {
		unit := info.CompUnit
		base := unit.LowPC
		size := unit.HighPC - unit.LowPC

		if unit.ARangesFound {
			continue
		}
		if size == 0 {
			continue
		}

		if unit.DebugRangesOffs != ^uint64(0) && c.DebugRanges != nil {
			rd.EnterSection(&unit.Desc, c.DebugRanges, unit.DebugRangesOffs)
			err := c.loadDebugRangesUnit(unit, base)
			rd.ExitSection()
			if err != nil {
				return err
			}
		} else {
			c.addAddrRange(unit.TextSection, unit, base, size)
		}
	}

	if len(c.AddrRanges) > 1 {
		sort.SliceStable(c.AddrRanges, func(i, j int) bool {
			return c.AddrRanges[i].Addr < c.AddrRanges[j].Addr
		})
	}

	return nil
}

// loadARanges reads one .debug_aranges section. the unit search cursor
// starts from the supplied unit and wraps, so that the common case of units
// appearing in file order is a single step.
func (c *Cache) loadARanges(sec *objfile.Section, info *ObjectInfo) error {
	rd := c.rd

	for rd.Pos() < sec.Size {
		size := uint64(rd.ReadU4())
		dwarf64 := false
		if size == 0xffffffff {
			dwarf64 = true
			size = rd.ReadU8()
		}
		if rd.Err() != nil {
			return rd.Err()
		}
		next := rd.Pos() + size

		if rd.ReadU2() != 2 {
			// not a version 2 tuple set. skip it
			rd.SetPos(next)
			if rd.Err() != nil {
				return rd.Err()
			}
			continue
		}

		var offs uint64
		if dwarf64 {
			offs = rd.ReadU8()
		} else {
			offs = uint64(rd.ReadU4())
		}
		addrSize := rd.ReadU1()
		segmSize := rd.ReadU1()
		if rd.Err() != nil {
			return rd.Err()
		}
		if segmSize != 0 {
			return curated.Errorf(InvalidDwarf, "segment descriptors are not supported")
		}
		if addrSize != 1 && addrSize != 2 && addrSize != 4 && addrSize != 8 {
			return curated.Errorf(InvalidDwarf, "invalid address size in .debug_aranges section")
		}

		for info != nil && info.CompUnit.Desc.UnitOffs != offs {
			info = info.Sibling
		}
		if info == nil {
			info = c.CompUnits
			for info != nil && info.CompUnit.Desc.UnitOffs != offs {
				info = info.Sibling
			}
		}
		if info == nil {
			return curated.Errorf(InvalidDwarf, "invalid .debug_aranges section")
		}
		unit := info.CompUnit
		unit.ARangesFound = true

		// tuples are aligned to twice the address size
		for rd.Pos()%uint64(addrSize*2) != 0 {
			rd.Skip(1)
		}

		for {
			addr, rangeSec := rd.ReadAddressX(addrSize)
			size := rd.ReadUX(addrSize)
			if rd.Err() != nil {
				return rd.Err()
			}
			if addr == 0 && size == 0 {
				break
			}
			if size == 0 {
				continue
			}
			c.addAddrRange(rangeSec, unit, addr, size)
		}
	}

	return rd.Err()
}

// loadDebugRangesUnit reads the range list of one unit from .debug_ranges.
// a pair with an all-ones first value selects a new base address; other
// pairs are offsets from the base.
func (c *Cache) loadDebugRangesUnit(unit *CompUnit, base uint64) error {
	rd := c.rd

	allOnes := uint64(1)<<(unit.Desc.AddressSize*8) - 1

	for {
		x, _ := rd.ReadAddress()
		y, _ := rd.ReadAddress()
		if rd.Err() != nil {
			return rd.Err()
		}
		if x == 0 && y == 0 {
			break
		}
		if x == allOnes {
			base = y
			continue
		}

		x = base + x
		y = base + y
		sec := c.file.SectionByAddress(x)
		if sec != unit.TextSection {
			return curated.Errorf(InvalidDwarf, "range outside of unit text section")
		}
		c.addAddrRange(sec, unit, x, y-x)
	}

	return nil
}

// FindUnitAddrRange returns the first address range that overlaps the
// window [addrMin, addrMax], or nil. an overlapping range is taken as the
// first when its predecessor range, if there is one, ends at or before
// addrMin.
func (c *Cache) FindUnitAddrRange(addrMin uint64, addrMax uint64) *UnitAddressRange {
	l := 0
	h := len(c.AddrRanges)
	for l < h {
		k := (h + l) / 2
		rk := &c.AddrRanges[k]
		if rk.Addr <= addrMax && rk.Addr+rk.Size > addrMin {
			first := true
			if k > 0 {
				rp := &c.AddrRanges[k-1]
				first = rp.Addr+rp.Size <= addrMin
			}
			if first {
				return rk
			}
			h = k
		} else if rk.Addr >= addrMin {
			h = k
		} else {
			l = k + 1
		}
	}
	return nil
}
