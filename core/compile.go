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
	"strings"
)

// CodeParam is the capture name for code segments.  A shape writes
// the fence itself (with decorative text inside if it likes); the
// captured content always lands under "code".
const CodeParam = "code"

// AddShape compiles one shape into the automaton on behalf of a
// handler.
//
// A shape is a run of space-separated segments:
//
//	word        literal text, matched character by character
//	{name}      one or more characters except space, captured
//	name={}     a flag; see below
//	`...`       fenced code on one line, captured as "code"
//	```\n...``` fenced code across lines, captured as "code"
//	name...     the whole rest of the input, captured
//
// Between segments the input may carry any run of spaces and
// newlines.  Only spaces split the shape itself, which is how a
// multi-line fence keeps its newline.
//
// Consecutive flag segments form a group: in the input the flags may
// appear in any order and any subset, and the state each flag value
// parks on accepts, so the input may simply stop there.  Any other
// kind of segment ends the group.
//
// Errors here mean the shape text itself is wrong (see BadShape and
// ShapeConflict) and are meant to stop start-up.  A failed AddShape
// may leave the shape's partial states behind; don't keep matching
// against an automaton whose registration failed.
func (a *Automaton) AddShape(shape string, h HandlerRef) error {
	if h < 0 {
		return &BadShape{Shape: shape, Reason: "handler ref must be non-negative"}
	}

	var (
		state    = a.Start()
		consumed = 0     // segments compiled so far
		flagLoop = -1    // junction state of the open flag group
		inFlags  = false // did the last segment join a flag group?
	)

	for _, seg := range strings.Split(shape, " ") {
		if seg == "" {
			continue
		}

		if name, ok := flagName(seg); ok {
			if err := checkName(shape, name); err != nil {
				return err
			}
			if flagLoop < 0 {
				flagLoop = a.separator(state, consumed)
			}
			s := flagLoop
			for _, r := range name {
				s = a.extend(s, CharSetOf(r), "", false)
			}
			s = a.extend(s, CharSetOf('='), "", false)

			cs := FullCharSet()
			cs.Remove(' ')
			cs.Remove('\n')
			s = a.extend(s, cs, name, true)
			a.link(s, s)
			a.link(s, flagLoop)

			if err := a.concludeShape(shape, s, h); err != nil {
				return err
			}
			state, inFlags, consumed = s, true, consumed+1
			continue
		}

		flagLoop, inFlags = -1, false
		state = a.separator(state, consumed)
		consumed++

		var err error
		switch {
		case strings.HasPrefix(seg, "`"):
			state, err = a.addCode(shape, state, seg)
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			name := seg[1 : len(seg)-1]
			if err = checkName(shape, name); err != nil {
				break
			}
			cs := FullCharSet()
			cs.Remove(' ')
			state = a.extend(state, cs, name, true)
			a.link(state, state)
		case strings.HasSuffix(seg, "..."):
			name := strings.TrimSuffix(seg, "...")
			if err = checkName(shape, name); err != nil {
				break
			}
			state = a.extend(state, FullCharSet(), name, true)
			a.link(state, state)
		default:
			state, err = a.addLiteral(shape, state, seg)
		}
		if err != nil {
			return err
		}
	}

	if consumed == 0 {
		return &BadShape{Shape: shape, Reason: "empty shape"}
	}
	if inFlags {
		// The flag states already accept.
		return nil
	}
	return a.concludeShape(shape, state, h)
}

// flagName recognizes "name={}" segments.
func flagName(seg string) (string, bool) {
	if !strings.HasSuffix(seg, "={}") {
		return "", false
	}
	return strings.TrimSuffix(seg, "={}"), true
}

// separator appends the between-segments state: any run of spaces
// and newlines.  The first segment of a shape gets none, so commands
// start at the first input character.
func (a *Automaton) separator(from, consumed int) int {
	if consumed == 0 {
		return from
	}
	cs := CharSetOf(' ')
	cs.Insert('\n')
	s := a.extend(from, cs, "", false)
	a.link(s, s)
	return s
}

// addLiteral chains one singleton-set state per character.
func (a *Automaton) addLiteral(shape string, state int, seg string) (int, error) {
	for _, r := range seg {
		if !ascii(r) {
			return state, &BadShape{Shape: shape, Reason: fmt.Sprintf("literal character %q is outside ASCII", r)}
		}
		state = a.extend(state, CharSetOf(r), "", false)
	}
	return state, nil
}

// addCode compiles a fenced-code segment.  The shape's own fence
// text between the backticks is decoration; only the tick count and
// the newline right after the opening fence matter.  The newline is
// what makes a fence multi-line, and at least three ticks are needed
// to hold one.
func (a *Automaton) addCode(shape string, state int, seg string) (int, error) {
	n := 0
	for n < len(seg) && seg[n] == '`' {
		n++
	}
	if len(seg) < 2*n || !strings.HasSuffix(seg, strings.Repeat("`", n)) {
		return state, &BadShape{Shape: shape, Reason: "unbalanced code fence"}
	}
	multi := strings.HasPrefix(seg[n:], "\n")
	if multi && n < 3 {
		return state, &BadShape{Shape: shape, Reason: "multi-line code fence needs at least three backticks"}
	}

	for i := 0; i < n; i++ {
		state = a.extend(state, CharSetOf('`'), "", false)
	}
	cs := FullCharSet()
	if multi {
		state = a.extend(state, CharSetOf('\n'), "", false)
	} else {
		cs.Remove('\n')
	}
	state = a.extend(state, cs, CodeParam, true)
	a.link(state, state)
	for i := 0; i < n; i++ {
		state = a.extend(state, CharSetOf('`'), "", false)
	}
	return state, nil
}

// checkName validates a capture or flag name.
func checkName(shape, name string) error {
	if name == "" {
		return &BadShape{Shape: shape, Reason: "capture without a name"}
	}
	for _, r := range name {
		if !ascii(r) {
			return &BadShape{Shape: shape, Reason: fmt.Sprintf("capture name character %q is outside ASCII", r)}
		}
	}
	return nil
}

// concludeShape is conclude plus the shape text for the error.
func (a *Automaton) concludeShape(shape string, state int, h HandlerRef) error {
	err := a.conclude(state, h)
	if conflict, is := err.(*ShapeConflict); is {
		conflict.Shape = shape
	}
	return err
}
