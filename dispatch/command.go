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

package dispatch

import (
	"context"

	"github.com/Comcast/patter/core"
)

// ReplyFunc sends one line of text back to wherever the input came
// from.  A Session (or a test) provides it.
type ReplyFunc func(text string) error

// Args is what a handler (or guard) gets for one matched input line.
type Args struct {
	// Ctx is the context of the enclosing Execute call.
	Ctx context.Context

	// Text is the complete input line that matched.
	Text string

	// Params are the captured substrings, keyed by capture name.
	Params map[string]string

	// Reply sends text back to the caller.  Never nil during
	// Execute; see Registry.Execute.
	Reply ReplyFunc
}

// Param returns the named capture ("" if the shape didn't bind it).
func (a *Args) Param(name string) string {
	if a.Params == nil {
		return ""
	}
	return a.Params[name]
}

// Respond is Reply with a nil check, for handlers invoked outside
// Execute (tests, tools).
func (a *Args) Respond(text string) error {
	if a.Reply == nil {
		return nil
	}
	return a.Reply(text)
}

// HandlerFunc does the work for one matched command.
type HandlerFunc func(args Args) error

// GuardFunc decides whether the handler may run.  A nil GuardFunc
// means always yes.
type GuardFunc func(args Args) (bool, error)

// Command is one registered shape together with what to do when it
// matches.
type Command struct {
	// Shape is the source text the command was registered with.
	Shape string `json:"shape"`

	// Handler runs on a match (after the Guard, if any).
	Handler HandlerFunc `json:"-"`

	// Guard, if not nil, can veto the Handler.
	Guard GuardFunc `json:"-"`

	ref core.HandlerRef
}

// Ref is the command's position in registration order, which is also
// its precedence: lower wins when several commands match.
func (c *Command) Ref() core.HandlerRef {
	return c.ref
}

// MenuEntry is one row of the help listing that Registry.Help
// maintains.
type MenuEntry struct {
	// Name is the word that follows "help".
	Name string `json:"name"`

	// Doc is the one-line description.
	Doc string `json:"doc"`

	// Protected marks commands registered with a guard, so a
	// renderer can say so.
	Protected bool `json:"protected,omitempty"`
}
