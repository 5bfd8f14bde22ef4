/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"sort"

	"github.com/Comcast/patter/core"
)

// AutomatonAnalysis reports structural properties of a compiled
// automaton: size, sharing, and a few defects worth knowing about.
type AutomatonAnalysis struct {
	States    int `json:"states"`
	Edges     int `json:"edges"`
	SelfLoops int `json:"selfLoops"`

	// Accepting lists the accepting state indexes; Handlers the
	// distinct refs they conclude for.
	Accepting []int             `json:"accepting,omitempty"`
	Handlers  []core.HandlerRef `json:"handlers,omitempty"`

	// Captures lists the distinct capture names opened anywhere in
	// the automaton.
	Captures []string `json:"captures,omitempty"`

	// MaxFanout is the largest successor count, and MaxFanoutState
	// a state that has it.  Big fanout usually means a flag group.
	MaxFanout      int `json:"maxFanout"`
	MaxFanoutState int `json:"maxFanoutState"`

	// Unreachable lists states no path from the start can enter.
	// A registration that fails partway can strand states; they
	// waste space but can't affect answers.
	Unreachable []int `json:"unreachable,omitempty"`

	// Dead lists reachable states that don't accept and have no
	// way out except themselves.  A traversal that enters one has
	// already lost.
	Dead []int `json:"dead,omitempty"`
}

// Analyze computes an AutomatonAnalysis.
func Analyze(a *core.Automaton) *AutomatonAnalysis {
	an := &AutomatonAnalysis{
		States:         a.Len(),
		MaxFanoutState: -1,
	}

	handlers := make(map[core.HandlerRef]bool)
	captures := make(map[string]bool)

	reachable := make([]bool, a.Len())
	reachable[a.Start()] = true
	stack := []int{a.Start()}
	for 0 < len(stack) {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, j := range a.At(i).Next {
			if !reachable[j] {
				reachable[j] = true
				stack = append(stack, j)
			}
		}
	}

	for i := 0; i < a.Len(); i++ {
		s := a.At(i)

		an.Edges += len(s.Next)
		escape := false
		for _, j := range s.Next {
			if i == j {
				an.SelfLoops++
			} else {
				escape = true
			}
		}
		if an.MaxFanout < len(s.Next) {
			an.MaxFanout = len(s.Next)
			an.MaxFanoutState = i
		}

		if s.Accept {
			an.Accepting = append(an.Accepting, i)
			handlers[s.Handler] = true
		}
		if s.Open != "" {
			captures[s.Open] = true
		}

		if !reachable[i] {
			an.Unreachable = append(an.Unreachable, i)
		} else if !s.Accept && !escape {
			an.Dead = append(an.Dead, i)
		}
	}

	for h := range handlers {
		an.Handlers = append(an.Handlers, h)
	}
	sort.Slice(an.Handlers, func(i, j int) bool {
		return an.Handlers[i] < an.Handlers[j]
	})

	for c := range captures {
		an.Captures = append(an.Captures, c)
	}
	sort.Strings(an.Captures)

	return an
}
