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

// Package test contains helper functions to remove common boilerplate from
// test functions.
package test

import (
	"reflect"
	"testing"
)

// ExpectEquality is used to test equality between one value and another. a
// failed test does not stop the test function.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is used to test inequality between one value and another.
// a failed test does not stop the test function.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' does equal '%v'", value, value, expectedValue)
		return false
	}
	return true
}

// DemandEquality is used to test equality between one value and another. a
// failed test stops the test function.
func DemandEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Fatalf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
	}
}

// ExpectSuccess tests argument v for a success condition. how success is
// measured depends on the type of v:
//
//	bool     -> true
//	error    -> nil
//	pointers -> non-nil
//
// a nil argument is considered a success.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	if !success(v) {
		t.Errorf("success test of type %T failed (%v)", v, v)
		return false
	}
	return true
}

// ExpectFailure tests argument v for a failure condition. the measure of
// failure is the opposite of the measure used by ExpectSuccess.
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	if success(v) {
		t.Errorf("failure test of type %T failed (%v)", v, v)
		return false
	}
	return true
}

// DemandSuccess is the same as ExpectSuccess except that a failed test stops
// the test function.
func DemandSuccess(t *testing.T, v interface{}) {
	t.Helper()

	if !success(v) {
		t.Fatalf("success test of type %T failed (%v)", v, v)
	}
}

// DemandFailure is the same as ExpectFailure except that a failed test stops
// the test function.
func DemandFailure(t *testing.T, v interface{}) {
	t.Helper()

	if success(v) {
		t.Fatalf("failure test of type %T failed (%v)", v, v)
	}
}

func success(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return v
	case error:
		return v == nil
	default:
		// any other type is a success if it is not a nil pointer
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer {
			return !rv.IsNil()
		}
		return true
	}
}
