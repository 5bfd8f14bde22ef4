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
	"strings"
	"testing"
)

func TestSharedPrefixes(t *testing.T) {
	a := NewAutomaton()
	if a.Len() != 1 {
		t.Fatalf("fresh automaton has %d states", a.Len())
	}

	// f o o ␣ b a r
	if err := a.AddShape("foo bar", 0); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 8 {
		t.Fatalf("after 'foo bar': %d states, wanted 8", a.Len())
	}

	// Shares everything but the final z.
	if err := a.AddShape("foo baz", 1); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 9 {
		t.Fatalf("after 'foo baz': %d states, wanted 9", a.Len())
	}

	// And a third word under the same prefix only adds its suffix.
	if err := a.AddShape("foo q", 2); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 10 {
		t.Fatalf("after 'foo q': %d states, wanted 10", a.Len())
	}
}

func TestFlagWiring(t *testing.T) {
	a := NewAutomaton()
	if err := a.AddShape("cmd a={} b={}", 0); err != nil {
		t.Fatal(err)
	}

	// c m d ␣ a = A b = B
	if a.Len() != 11 {
		t.Fatalf("%d states, wanted 11", a.Len())
	}

	var loop, va, vb int
	for i := 0; i < a.Len(); i++ {
		s := a.At(i)
		switch {
		case s.Open == "a":
			va = i
		case s.Open == "b":
			vb = i
		case s.Expected.Contains(' ') && s.Expected.Contains('\n'):
			loop = i
		}
	}
	if loop == 0 || va == 0 || vb == 0 {
		t.Fatalf("missing flag states: loop=%d a=%d b=%d", loop, va, vb)
	}

	for _, v := range []int{va, vb} {
		s := a.At(v)
		if !s.Accept || s.Handler != 0 {
			t.Errorf("flag value state %d should accept for handler 0", v)
		}
		if !s.Close {
			t.Errorf("flag value state %d should close its capture", v)
		}
		if !hasNext(s, v) {
			t.Errorf("flag value state %d should loop on itself", v)
		}
		if !hasNext(s, loop) {
			t.Errorf("flag value state %d should link back to the loop state %d", v, loop)
		}
	}

	// Both flags hang off the loop state, so order is free.
	l := a.At(loop)
	if !hasNext(l, loop) {
		t.Error("loop state should self-loop on whitespace")
	}
}

func hasNext(s *State, to int) bool {
	for _, j := range s.Next {
		if j == to {
			return true
		}
	}
	return false
}

func TestCaptureNameIsolation(t *testing.T) {
	a := NewAutomaton()
	if err := a.AddShape("echo {a}", 0); err != nil {
		t.Fatal(err)
	}
	n := a.Len()

	// Same charset, different capture name: must not share the
	// state, or the second shape would rename the first's capture.
	if err := a.AddShape("echo {b}", 1); err != nil {
		t.Fatal(err)
	}
	if a.Len() != n+1 {
		t.Fatalf("wanted one fresh capture state, got %d new", a.Len()-n)
	}
}

func TestDuplicateShape(t *testing.T) {
	a := NewAutomaton()
	if err := a.AddShape("go", 0); err != nil {
		t.Fatal(err)
	}

	err := a.AddShape("go", 1)
	if err == nil {
		t.Fatal("identical grammar for a different handler should be rejected")
	}
	if _, is := err.(*ShapeConflict); !is {
		t.Fatalf("wanted a ShapeConflict, got %T: %v", err, err)
	}

	// Re-adding for the same handler is harmless.
	if err := a.AddShape("go", 0); err != nil {
		t.Fatal(err)
	}
}

func TestBadShapes(t *testing.T) {
	for _, c := range []struct {
		shape  string
		reason string
	}{
		{"", "empty"},
		{"   ", "empty"},
		{"{}", "name"},
		{"cmd {}", "name"},
		{"={}", "name"},
		{"...", "name"},
		{"naïve", "ASCII"},
		{"cmd {naïve}", "ASCII"},
		{"`x", "fence"},
		{"``", "fence"},
		{"cmd `\nx`", "backticks"},
	} {
		a := NewAutomaton()
		err := a.AddShape(c.shape, 0)
		if err == nil {
			t.Errorf("shape %q compiled but should not have", c.shape)
			continue
		}
		if _, is := err.(*BadShape); !is {
			t.Errorf("shape %q: wanted BadShape, got %T", c.shape, err)
			continue
		}
		if !strings.Contains(err.Error(), c.reason) {
			t.Errorf("shape %q: error %q should mention %q", c.shape, err, c.reason)
		}
	}
}

func TestBadHandlerRef(t *testing.T) {
	a := NewAutomaton()
	if err := a.AddShape("go", NoHandler); err == nil {
		t.Fatal("negative handler refs should be rejected")
	}
}
