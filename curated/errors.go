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

package curated

import (
	"fmt"
	"strings"
)

// curated is an implementation of the error interface that remembers the
// pattern it was created with. comparing patterns rather than formatted
// strings is what makes Is() and Has() possible.
type curated struct {
	pattern string
	values  []interface{}
}

// Errorf creates a new curated error. The pattern argument plays the same
// role as the format argument of fmt.Errorf() but it doubles as the identity
// of the error for the purposes of the Is() and Has() functions.
func Errorf(pattern string, values ...interface{}) error {
	return curated{
		pattern: pattern,
		values:  values,
	}
}

// Error returns the formatted error message with adjacent duplicate message
// parts removed.
//
// Implements the error interface.
func (er curated) Error() string {
	s := fmt.Errorf(er.pattern, er.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}

	return strings.Join(p, ": ")
}

// IsAny checks if the error is a curated error of any pattern.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is checks if the error is a curated error with the specified pattern.
func Is(err error, pattern string) bool {
	if err == nil {
		return false
	}

	if er, ok := err.(curated); ok {
		return er.pattern == pattern
	}

	return false
}

// Has checks if the specified pattern appears anywhere in the error chain.
func Has(err error, pattern string) bool {
	if !IsAny(err) {
		return false
	}

	if Is(err, pattern) {
		return true
	}

	for _, v := range err.(curated).values {
		if e, ok := v.(curated); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}

	return false
}
