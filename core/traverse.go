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

// A Match reports which handler's shape won and what it captured.
// Params maps capture names to substrings of the input; a capture
// that appeared more than once (a repeated flag) keeps its last
// value.
type Match struct {
	Handler HandlerRef        `json:"handler"`
	Params  map[string]string `json:"params"`
}

// A span is a finished capture: a half-open byte range of the input.
type span struct {
	name       string
	start, end int
}

// A traversal is one live path through the automaton.  Traversals
// are values; forking copies one, and whole generations of them are
// discarded every character.  The automaton itself is never touched.
type traversal struct {
	state    int
	spans    []span
	open     int // byte offset where the open capture began, -1 when none
	openName string
}

// advance moves the traversal to state `to` on the character at byte
// offset `at`, settling captures on the way: leaving a closing state
// ends the open capture at `at`, and entering an opening state (with
// no capture pending) begins one there.  Close runs first so a
// single step can end one capture exactly where another starts.
// Looping on the same state neither closes nor reopens.
func (t *traversal) advance(a *Automaton, to, at int) {
	if t.open >= 0 && to != t.state && a.states[t.state].Close {
		t.spans = append(t.spans, span{name: t.openName, start: t.open, end: at})
		t.open = -1
	}
	if dst := &a.states[to]; t.open < 0 && dst.Open != "" {
		t.open, t.openName = at, dst.Open
	}
	t.state = to
}

// clone returns a copy safe to advance independently.
func (t traversal) clone() traversal {
	spans := make([]span, len(t.spans))
	copy(spans, t.spans)
	t.spans = spans
	return t
}

// Process runs input through the automaton and returns the winning
// match, or nil when nothing matches.  Nothing matching is the
// normal case for a chat channel and is not an error.
//
// One traversal starts at the start state.  Each input character
// either kills a traversal (no outgoing transition accepts it),
// advances it (exactly one does), or forks it (several do; character
// sets may overlap, and the paths race).  When every traversal is
// dead, the input cannot match and Process stops early.
//
// At the end of the input a still-open capture closes at the input's
// end (that is how name... captures the tail), and only traversals
// parked on accepting states survive.  If more than one survives,
// the lowest HandlerRef wins, so the earliest-registered shape takes
// precedence; among paths of a single shape, the one forked earliest
// wins.  Ties are deterministic by construction.
//
// Process is read-only on the automaton and safe for concurrent use
// once registration is done.
func (a *Automaton) Process(input string) *Match {
	live := []traversal{{state: a.Start(), open: -1}}

	var edges []int
	for at, r := range input {
		next := make([]traversal, 0, len(live))
		for _, t := range live {
			edges = edges[:0]
			for _, j := range a.states[t.state].Next {
				if a.states[j].Expected.Contains(r) {
					edges = append(edges, j)
				}
			}
			switch len(edges) {
			case 0:
				// This path is dead.
			case 1:
				t.advance(a, edges[0], at)
				next = append(next, t)
			default:
				for k, j := range edges {
					c := t
					if 0 < k {
						c = t.clone()
					}
					c.advance(a, j, at)
					next = append(next, c)
				}
			}
		}
		if 0 == len(next) {
			return nil
		}
		live = next
	}

	var (
		best *traversal
		won  = NoHandler
	)
	for k := range live {
		t := &live[k]
		s := &a.states[t.state]
		if !s.Accept {
			continue
		}
		if t.open >= 0 {
			t.spans = append(t.spans, span{name: t.openName, start: t.open, end: len(input)})
			t.open = -1
		}
		if best == nil || s.Handler < won {
			best, won = t, s.Handler
		}
	}
	if best == nil {
		return nil
	}

	params := make(map[string]string, len(best.spans))
	for _, sp := range best.spans {
		params[sp.name] = input[sp.start:sp.end]
	}
	return &Match{Handler: won, Params: params}
}
