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
	"os"
	"testing"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/dwarfcache/test"
)

// an explicit .debug_pubnames section takes the place of the synthesised
// table.
func TestPubNamesSection(t *testing.T) {
	info := &secBuilder{}
	h := info.unitHeader(2, 0)
	info.uleb(abCompUnit).str("main.c").u4(0x1000).u4(0x1040).u4(0).str("/src")
	subprogOffs := info.pos()
	info.uleb(abSubprog).str("foo").u4(0x1000).u4(0x1040).u1(1)
	varOffs := info.pos()
	info.uleb(abVariable).str("bar").u1(1)
	info.uleb(0)
	info.endUnit(h)

	pub := &secBuilder{}
	at := pub.pos()
	pub.u4(0)
	pub.u2(2)                  // version
	pub.u4(0)                  // unit offset in .debug_info
	pub.u4(uint32(len(info.b))) // unit size
	pub.u4(uint32(subprogOffs)).str("foo")
	pub.u4(uint32(varOffs)).str("bar")
	pub.u4(0) // terminator
	pub.patchU4(at, uint32(pub.pos()-at-4))

	f := testFile(map[string][]byte{
		".debug_abbrev":   testAbbrev(),
		".debug_info":     info.b,
		".debug_pubnames": pub.b,
	})

	c, err := GetCache(f)
	test.DemandSuccess(t, err)

	// index zero is the sentinel
	test.DemandEquality(t, len(c.PubNames.Entries), 3)
	test.ExpectEquality(t, c.PubNames.Entries[0].ID, uint64(0))

	var found []*ObjectInfo
	c.FindPubObjects(&c.PubNames, "foo", func(obj *ObjectInfo) bool {
		found = append(found, obj)
		return true
	})
	test.DemandEquality(t, len(found), 1)
	test.ExpectEquality(t, found[0].Name, "foo")
	test.ExpectEquality(t, found[0].ID, uint64(subprogOffs))

	found = found[:0]
	c.FindPubObjects(&c.PubNames, "bar", func(obj *ObjectInfo) bool {
		found = append(found, obj)
		return true
	})
	test.DemandEquality(t, len(found), 1)
	test.ExpectEquality(t, found[0].ID, uint64(varOffs))

	// an absent name finds nothing
	c.FindPubObjects(&c.PubNames, "baz", func(obj *ObjectInfo) bool {
		t.Errorf("unexpected object %s", obj.Name)
		return false
	})
}

// dump the entity graph of a small cache to a graphviz dot file. useful when
// debugging the tree linkage by eye.
func TestEntityGraph(t *testing.T) {
	info := &secBuilder{}
	h := info.unitHeader(2, 0)
	info.uleb(abCompUnit).str("main.c").u4(0x1000).u4(0x1040).u4(0).str("/src")
	info.uleb(abSubprog).str("foo").u4(0x1000).u4(0x1040).u1(1)
	info.uleb(0)
	info.endUnit(h)

	f := testFile(map[string][]byte{
		".debug_abbrev": testAbbrev(),
		".debug_info":   info.b,
	})

	c, err := GetCache(f)
	test.DemandSuccess(t, err)

	out, err := os.Create("memviz.dot")
	if err != nil {
		t.Fatalf(err.Error())
	}
	defer func() {
		err = out.Close()
		if err != nil {
			t.Fatalf(err.Error())
		}
	}()
	memviz.Map(out, c.CompUnits)
}
