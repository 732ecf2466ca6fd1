// This file is part of GopherST.
//
// GopherST is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherST is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherST.  If not, see <https://www.gnu.org/licenses/>.

// Package test contains the helper functions used by unit tests throughout
// the project. The helpers keep the tests terse without hiding what is being
// compared.
package test

import (
	"testing"
)

// ExpectEquality compares value to expectedValue and fails the test if they
// differ. Because literal numbers are of type int, tests can usually be
// written without casting the expected value:
//
//	var v uint16
//	v = someFunction()
//	test.ExpectEquality(t, int(v), 10)
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v')", value, value, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is the inverse of ExpectEquality.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' equals '%v')", value, value, expectedValue)
		return false
	}
	return true
}

// ExpectSuccess tests argument v for a success condition suitable for its
// type. Supported types are bool (true is success) and error (nil is
// success). A nil argument succeeds.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if !v {
			t.Errorf("expected success (bool)")
			return false
		}

	case error:
		if v != nil {
			t.Errorf("expected success (error: %v)", v)
			return false
		}

	case nil:
		return true

	default:
		t.Fatalf("unsupported type (%T) for ExpectSuccess()", v)
		return false
	}

	return true
}

// ExpectFailure tests argument v for a failure condition suitable for its
// type. Supported types are bool (false is failure) and error (non-nil is
// failure). A nil argument fails the test.
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if v {
			t.Errorf("expected failure (bool)")
			return false
		}

	case error:
		if v == nil {
			t.Errorf("expected failure (error)")
			return false
		}

	case nil:
		t.Errorf("expected failure (nil)")
		return false

	default:
		t.Fatalf("unsupported type (%T) for ExpectFailure()", v)
		return false
	}

	return true
}
