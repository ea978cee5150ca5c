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

package curated_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/dwarfcache/curated"
	"github.com/jetsetilly/dwarfcache/test"
)

const testError = "test error: %v"
const otherError = "other error: %v"

func TestErrorPatterns(t *testing.T) {
	err := curated.Errorf(testError, "detail")
	test.ExpectEquality(t, err.Error(), "test error: detail")

	test.ExpectSuccess(t, curated.IsAny(err))
	test.ExpectSuccess(t, curated.Is(err, testError))
	test.ExpectFailure(t, curated.Is(err, otherError))

	// plain errors are not curated errors
	plain := errors.New("plain")
	test.ExpectFailure(t, curated.IsAny(plain))
	test.ExpectFailure(t, curated.Is(plain, testError))
	test.ExpectFailure(t, curated.Is(nil, testError))
}

func TestErrorChains(t *testing.T) {
	inner := curated.Errorf(testError, "detail")
	outer := curated.Errorf(otherError, inner)

	test.ExpectEquality(t, outer.Error(), "other error: test error: detail")

	// Is() only matches the outermost pattern; Has() searches the chain
	test.ExpectSuccess(t, curated.Is(outer, otherError))
	test.ExpectFailure(t, curated.Is(outer, testError))
	test.ExpectSuccess(t, curated.Has(outer, testError))
	test.ExpectSuccess(t, curated.Has(outer, otherError))
	test.ExpectFailure(t, curated.Has(outer, "unseen: %v"))
}

func TestErrorDeduplication(t *testing.T) {
	// duplicate adjacent message parts are removed
	inner := curated.Errorf("same part: %v", "detail")
	outer := curated.Errorf("same part: %v", inner)
	test.ExpectEquality(t, outer.Error(), "same part: detail")
}
