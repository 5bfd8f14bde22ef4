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

// A HandlerRef names a handler registered by the caller.  The
// automaton only stores and returns these refs; whatever they index
// (the dispatch package keeps a slice of Commands) is none of its
// business.
//
// Refs must be non-negative, and their order matters: when an input
// satisfies several shapes at once, the lowest ref (the
// earliest-registered shape) wins.
type HandlerRef int

// NoHandler marks states that do not accept.
const NoHandler HandlerRef = -1

// A State is one node in the automaton.  States live in the
// Automaton's slice and refer to each other by index.
type State struct {
	Index int `json:"index"`

	// Expected is the set a character must satisfy to move here.
	// For the start state it is empty: nothing transitions to the
	// start.
	Expected CharSet `json:"expected"`

	// Next lists successor states in insertion order.  The order
	// is load-bearing: it fixes the order forks are tried, which
	// settles ties between paths within one shape.
	Next []int `json:"next,omitempty"`

	// Accept marks a state an input may legally end on.  Handler
	// is meaningful only when Accept is set.
	Accept  bool       `json:"accept,omitempty"`
	Handler HandlerRef `json:"handler"`

	// Open names the capture that begins when a traversal enters
	// this state ("" means none).  Close means the capture in
	// progress ends when a traversal leaves this state for a
	// different one.
	Open  string `json:"open,omitempty"`
	Close bool   `json:"close,omitempty"`
}

// An Automaton is the shared machine all shapes compile into.
//
// Registration (AddShape) is single-writer: one goroutine, before any
// matching.  Once built, the automaton is read-only and Process() is
// safe to call from any number of goroutines.
type Automaton struct {
	states []State
}

// NewAutomaton returns an automaton holding only the start state.
func NewAutomaton() *Automaton {
	a := &Automaton{
		states: make([]State, 0, 64),
	}
	a.alloc(EmptyCharSet(), "", false)
	return a
}

// Len returns the number of states.
func (a *Automaton) Len() int {
	return len(a.states)
}

// Start returns the index of the start state, which is always 0.
func (a *Automaton) Start() int {
	return 0
}

// At returns the state with the given index.  The pointer aims into
// the automaton's own storage; treat it as read-only.
func (a *Automaton) At(i int) *State {
	return &a.states[i]
}

// alloc appends a fresh state and returns its index.
func (a *Automaton) alloc(expected CharSet, open string, closing bool) int {
	i := len(a.states)
	a.states = append(a.states, State{
		Index:    i,
		Expected: expected,
		Handler:  NoHandler,
		Open:     open,
		Close:    closing,
	})
	return i
}

// extend returns a successor of from that accepts expected, reusing
// an existing successor when one is compatible and appending a new
// state otherwise.
//
// Compatible means the same character set and the same capture
// markers.  Matching on the set alone is what lets "foo bar" and
// "foo baz" share f-o-o-␣-b-a; matching on the markers too is what
// keeps "echo {a}" from hijacking the capture name of "echo {b}".
// Incompatible twins become parallel edges, and the traversal engine
// forks over them at match time.
func (a *Automaton) extend(from int, expected CharSet, open string, closing bool) int {
	for _, j := range a.states[from].Next {
		s := &a.states[j]
		if s.Expected == expected && s.Open == open && s.Close == closing {
			return j
		}
	}
	j := a.alloc(expected, open, closing)
	a.link(from, j)
	return j
}

// link adds to as a successor of from.  Linking twice is a no-op.
func (a *Automaton) link(from, to int) {
	for _, j := range a.states[from].Next {
		if j == to {
			return
		}
	}
	a.states[from].Next = append(a.states[from].Next, to)
}

// conclude marks a state accepting on behalf of a handler.
//
// A state that already accepts for some other handler means two
// registrations compiled to the very same grammar, which is an
// authoring mistake; report it now rather than letting one shape
// silently shadow the other forever.
func (a *Automaton) conclude(i int, h HandlerRef) error {
	if h < 0 {
		return &BadShape{Reason: "handler ref must be non-negative"}
	}
	s := &a.states[i]
	if s.Accept && s.Handler != h {
		return &ShapeConflict{State: i, Existing: s.Handler, Proposed: h}
	}
	s.Accept = true
	s.Handler = h
	return nil
}
