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
	"reflect"
	"testing"

	. "github.com/Comcast/patter/util/testutil"
)

// build compiles the shapes in order with refs 0, 1, 2, ...
func build(t *testing.T, shapes ...string) *Automaton {
	t.Helper()
	a := NewAutomaton()
	for i, shape := range shapes {
		if err := a.AddShape(shape, HandlerRef(i)); err != nil {
			t.Fatalf("AddShape(%q): %v", shape, err)
		}
	}
	return a
}

type processCase struct {
	input  string
	ref    HandlerRef // -1 means no match
	params map[string]string
}

func runCases(t *testing.T, a *Automaton, cases []processCase) {
	t.Helper()
	for _, c := range cases {
		m := a.Process(c.input)
		if c.ref == NoHandler {
			if m != nil {
				t.Errorf("Process(%q) = %s, wanted no match", c.input, JS(m))
			}
			continue
		}
		if m == nil {
			t.Errorf("Process(%q) found nothing, wanted handler %d", c.input, c.ref)
			continue
		}
		if m.Handler != c.ref {
			t.Errorf("Process(%q) chose handler %d, wanted %d", c.input, m.Handler, c.ref)
		}
		want := c.params
		if want == nil {
			want = map[string]string{}
		}
		if !reflect.DeepEqual(m.Params, want) {
			t.Errorf("Process(%q) params %s, wanted %s", c.input, JS(m.Params), JS(want))
		}
	}
}

func TestProcessLiterals(t *testing.T) {
	a := build(t, "go", "source", "foo bar")
	runCases(t, a, []processCase{
		{"go", 0, nil},
		{"source", 1, nil},
		{"foo bar", 2, nil},
		{"foo  bar", 2, nil},
		{"foo\nbar", 2, nil},
		{"foo \n bar", 2, nil},

		{"", NoHandler, nil},
		{"g", NoHandler, nil},
		{"gox", NoHandler, nil},
		{"go ", NoHandler, nil},
		{"foo", NoHandler, nil},
		{"foobar", NoHandler, nil},
		{"foo barx", NoHandler, nil},
		{"gö", NoHandler, nil},
	})
}

func TestProcessCaptures(t *testing.T) {
	a := build(t, "crate {query}", "echo text...")
	runCases(t, a, []processCase{
		{"crate serde", 0, Params("query", "serde")},
		// {query} stops at a space, so a two-word query is no
		// crate command at all.
		{"crate serde json", NoHandler, nil},
		// text... spans spaces to the end of the input.
		{"echo hello world", 1, Params("text", "hello world")},
		{"echo x", 1, Params("text", "x")},
		// Extra separator whitespace belongs to the separator,
		// not the capture.
		{"echo  hello", 1, Params("text", "hello")},
		{"crate", NoHandler, nil},
		{"crate ", NoHandler, nil},
		{"echo", NoHandler, nil},
	})
}

func TestProcessUnicode(t *testing.T) {
	a := build(t, "crate {query}", "echo text...")
	runCases(t, a, []processCase{
		// Captures admit anything; spans are byte offsets, so
		// multi-byte runes slice out intact.
		{"crate sérde", 0, Params("query", "sérde")},
		{"crate 🦀", 0, Params("query", "🦀")},
		{"echo héllo wörld 🦀", 1, Params("text", "héllo wörld 🦀")},
		// Literals are ASCII transitions and never match beyond.
		{"cráte serde", NoHandler, nil},
	})
}

func TestProcessFlags(t *testing.T) {
	a := build(t, "ban user={} hours={} reason...")
	runCases(t, a, []processCase{
		{"ban user=42 hours=24", 0, Params("user", "42", "hours", "24")},
		// Any order.
		{"ban hours=24 user=42", 0, Params("user", "42", "hours", "24")},
		// Any subset; a flag state accepts, so the input may stop there.
		{"ban user=42", 0, Params("user", "42")},
		{"ban hours=24", 0, Params("hours", "24")},
		// The trailing capture hangs off the flag loop, so it is
		// reachable after any subset of flags, including none.
		{"ban user=42 hours=24 for being bad", 0,
			Params("user", "42", "hours", "24", "reason", "for being bad")},
		{"ban user=42 for being bad", 0, Params("user", "42", "reason", "for being bad")},
		{"ban for being bad", 0, Params("reason", "for being bad")},
		// A repeated flag keeps its last value.
		{"ban user=42 user=43", 0, Params("user", "43")},
		// Flag values run to the next whitespace, = included.
		{"ban user=a=b", 0, Params("user", "a=b")},
		// Whitespace runs collapse.
		{"ban  user=42\nhours=24", 0, Params("user", "42", "hours", "24")},

		// A half-typed flag is still a fine reason... string.
		{"ban user=", 0, Params("reason", "user=")},
		{"ban user", 0, Params("reason", "user")},

		{"ban", NoHandler, nil},
	})
}

func TestProcessCode(t *testing.T) {
	a := build(t, "play mode={} edition={} ```\ncode```", "inline `code`")
	runCases(t, a, []processCase{
		{"play ```\nfn main() {}\n```", 0, Params("code", "fn main() {}\n")},
		{"play mode=release ```\nx\n```", 0, Params("mode", "release", "code", "x\n")},
		{"play edition=2018 mode=debug ```\nx\n```", 0,
			Params("edition", "2018", "mode", "debug", "code", "x\n")},
		// Everything between the fence newline and the closing
		// fence is the capture: inner newlines stay, nothing is
		// trimmed.
		{"play ```\na\n\nb\n```", 0, Params("code", "a\n\nb\n")},
		{"play ```\nx```", 0, Params("code", "x")},
		// A backtick inside the content survives the ambiguity.
		{"play ```\na`b\n```", 0, Params("code", "a`b\n")},

		{"inline `let x`", 1, Params("code", "let x")},
		{"inline `a``", 1, Params("code", "a`")},

		// Fences want at least one content character.
		{"play ```\n```", NoHandler, nil},
		{"inline ``", NoHandler, nil},
		// An unterminated fence never accepts.
		{"play ```\nx", NoHandler, nil},
		{"play ```\nx``", NoHandler, nil},
	})
}

func TestProcessPrecedence(t *testing.T) {
	t.Run("registrationOrder", func(t *testing.T) {
		// Identical grammars up to capture names: the earlier
		// registration wins.
		a := build(t, "echo {a}", "echo {b}")
		runCases(t, a, []processCase{
			{"echo hi", 0, Params("a", "hi")},
		})

		// And the other way around.
		a = build(t, "echo {b}", "echo {a}")
		runCases(t, a, []processCase{
			{"echo hi", 0, Params("b", "hi")},
		})
	})

	t.Run("literalVsCapture", func(t *testing.T) {
		a := build(t, "tag {key}", "tag delete {key}")
		runCases(t, a, []processCase{
			{"tag foo", 0, Params("key", "foo")},
			// Both paths start, but only the literal one can
			// cross the space.
			{"tag delete foo", 1, Params("key", "foo")},
			// The classic: with nothing after it, "delete" is
			// just a key.
			{"tag delete", 0, Params("key", "delete")},
		})
	})

	t.Run("flagVsTrailingCapture", func(t *testing.T) {
		// "hours=24" satisfies both the flag and the trailing
		// capture.  The flag path forks first, so it wins the
		// tie.
		a := build(t, "ban user={} hours={} reason...")
		runCases(t, a, []processCase{
			{"ban user=42 hours=24 x", 0,
				Params("user", "42", "hours", "24", "reason", "x")},
		})
	})
}

func TestProcessRepeatable(t *testing.T) {
	a := build(t, "ban user={} hours={} reason...")
	n := a.Len()

	want := Params("user", "42", "reason", "spam")
	for i := 0; i < 3; i++ {
		m := a.Process("ban user=42 spam")
		if m == nil {
			t.Fatalf("round %d: no match", i)
		}
		if !reflect.DeepEqual(m.Params, want) {
			t.Fatalf("round %d: params %s, wanted %s", i, JS(m.Params), JS(want))
		}
	}
	if a.Len() != n {
		t.Fatal("Process must not grow the automaton")
	}
}
