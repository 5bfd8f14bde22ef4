/* Copyright 2019-2020 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"fmt"
	"strconv"
	"strings"
)

// A CharSet is the label on an automaton transition: the set of
// characters the transition accepts.
//
// The representation is two 64-bit words that track the 128 ASCII
// code points individually (bit i is code point i) plus a single
// class flag, rest, that covers every rune above ASCII as a group.
// Shape text is ASCII, so literal transitions only ever need the
// words; the rest flag is how FullCharSet()-derived sets (captures)
// admit arbitrary Unicode input.
//
// CharSet is a comparable value type, and == is meaningful: the
// compiler shares an existing transition exactly when its CharSet is
// equal to the one it wants to add.  The zero value is the empty set.
type CharSet struct {
	lo, hi uint64
	rest   bool
}

// EmptyCharSet returns a set containing nothing.
func EmptyCharSet() CharSet {
	return CharSet{}
}

// FullCharSet returns a set containing every rune: all of ASCII plus
// the above-ASCII class.
func FullCharSet() CharSet {
	return CharSet{lo: ^uint64(0), hi: ^uint64(0), rest: true}
}

// CharSetOf returns a set containing just the given ASCII rune.
func CharSetOf(r rune) CharSet {
	var s CharSet
	s.Insert(r)
	return s
}

// Insert adds one ASCII rune to the set.
//
// Runes at 128 and above are not individually addressable; they
// belong to the set only via the class that FullCharSet() turns on.
// Inserting such a rune is a no-op.
func (s *CharSet) Insert(r rune) {
	switch {
	case r < 0:
	case r < 64:
		s.lo |= 1 << uint(r)
	case r < 128:
		s.hi |= 1 << uint(r-64)
	}
}

// Remove takes one ASCII rune out of the set.  Removing a rune at 128
// or above is a no-op: the above-ASCII class stays intact, which is
// what capture segments want ("anything but a space" still includes
// all of Unicode).
func (s *CharSet) Remove(r rune) {
	switch {
	case r < 0:
	case r < 64:
		s.lo &^= 1 << uint(r)
	case r < 128:
		s.hi &^= 1 << uint(r-64)
	}
}

// Contains reports whether the rune is in the set.
func (s CharSet) Contains(r rune) bool {
	switch {
	case r < 0:
		return false
	case r < 64:
		return s.lo&(1<<uint(r)) != 0
	case r < 128:
		return s.hi&(1<<uint(r-64)) != 0
	default:
		return s.rest
	}
}

// Empty reports whether nothing is in the set.
func (s CharSet) Empty() bool {
	return 0 == s.lo && 0 == s.hi && !s.rest
}

// ascii reports whether the rune is individually representable.
func ascii(r rune) bool {
	return 0 <= r && r < 128
}

// String renders the set compactly for logs, graphs, and tests:
// "empty", "any", a short quoted list like 'a', or a summary like
// "any but ' ' '\n'" for the big capture sets.
func (s CharSet) String() string {
	full := FullCharSet()
	if s == full {
		return "any"
	}
	if s.Empty() {
		return "empty"
	}

	var in, out []rune
	for r := rune(0); r < 128; r++ {
		if s.Contains(r) {
			in = append(in, r)
		} else {
			out = append(out, r)
		}
	}

	if s.rest && len(out) <= 4 {
		return "any but " + quoteRunes(out)
	}
	if !s.rest && len(in) <= 4 {
		return quoteRunes(in)
	}
	label := fmt.Sprintf("chars(%d)", len(in))
	if s.rest {
		label += "+rest"
	}
	return label
}

func quoteRunes(rs []rune) string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, strconv.QuoteRune(r))
	}
	return strings.Join(parts, " ")
}

// MarshalJSON renders the set as its String() form.  The automaton is
// rebuilt from shapes at start-up, so nothing ever needs to parse
// this back.
func (s CharSet) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}
