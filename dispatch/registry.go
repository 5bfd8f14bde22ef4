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
	"fmt"

	"github.com/Comcast/patter/core"
)

// A Registry holds the commands and the automaton their shapes
// compiled into.
//
// A Registry is built once and then frozen: call Add, AddProtected,
// and Help from a single goroutine before the first Execute.  After
// that it needs no locking.
type Registry struct {
	automaton *core.Automaton
	commands  []*Command
	menu      []MenuEntry
}

// NewRegistry makes an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		automaton: core.NewAutomaton(),
	}
}

// Add registers a shape with an unguarded handler.
//
// Registration order is precedence order: when an input satisfies
// several shapes, the command registered first wins.
func (r *Registry) Add(shape string, h HandlerFunc) error {
	return r.AddProtected(shape, h, nil)
}

// AddProtected registers a shape whose handler only runs when the
// guard says so.  A nil guard always says so.
func (r *Registry) AddProtected(shape string, h HandlerFunc, g GuardFunc) error {
	if h == nil {
		return fmt.Errorf("nil handler for shape %q", shape)
	}
	c := &Command{
		Shape:   shape,
		Handler: h,
		Guard:   g,
		ref:     core.HandlerRef(len(r.commands)),
	}
	if err := r.automaton.AddShape(shape, c.ref); err != nil {
		return err
	}
	r.commands = append(r.commands, c)
	return nil
}

// Help registers a "help NAME" command and adds NAME with its
// one-line doc to the menu.
func (r *Registry) Help(name, doc string, h HandlerFunc) error {
	if err := r.Add("help "+name, h); err != nil {
		return err
	}
	r.menu = append(r.menu, MenuEntry{Name: name, Doc: doc})
	return nil
}

// HelpProtected is Help for a guarded command.  The menu entry is
// marked so a renderer can note that the command is protected.
func (r *Registry) HelpProtected(name, doc string, h HandlerFunc, g GuardFunc) error {
	if err := r.AddProtected("help "+name, h, g); err != nil {
		return err
	}
	r.menu = append(r.menu, MenuEntry{Name: name, Doc: doc, Protected: true})
	return nil
}

// Size returns the number of registered commands.
func (r *Registry) Size() int {
	return len(r.commands)
}

// Menu returns the help listing in registration order.
func (r *Registry) Menu() []MenuEntry {
	menu := make([]MenuEntry, len(r.menu))
	copy(menu, r.menu)
	return menu
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []*Command {
	commands := make([]*Command, len(r.commands))
	copy(commands, r.commands)
	return commands
}

// Automaton exposes the compiled automaton (for tools and tests).
func (r *Registry) Automaton() *core.Automaton {
	return r.automaton
}

// Process asks the automaton about one line of input.  Returns the
// winning command and its captured parameters, or nil for no match.
//
// Process never runs any handler.
func (r *Registry) Process(text string) (*Command, map[string]string) {
	m := r.automaton.Process(text)
	if m == nil {
		return nil, nil
	}
	// A ref the automaton knows but we don't would mean a shape
	// was concluded without its command getting registered.  That
	// can't happen via Add, but don't index blindly.
	if m.Handler < 0 || int(m.Handler) >= len(r.commands) {
		return nil, nil
	}
	return r.commands[int(m.Handler)], m.Params
}

// Execute routes one line of input: match it, check the guard, run
// the handler.
//
// The returned Dispatched says what happened; see Outcome.  Guard and
// handler errors (and panics) are caught here and reported in
// Dispatched.Err, so a bad handler cannot take down the caller's
// read loop.  NoMatch is the ordinary result for most chat traffic
// and is not an error.
func (r *Registry) Execute(ctx context.Context, text string, reply ReplyFunc) *Dispatched {
	c, params := r.Process(text)
	if c == nil {
		return &Dispatched{Outcome: NoMatch}
	}

	if reply == nil {
		reply = func(string) error { return nil }
	}

	d := &Dispatched{
		Command: c,
		Params:  params,
	}

	args := Args{
		Ctx:    ctx,
		Text:   text,
		Params: params,
		Reply:  reply,
	}

	func() {
		defer func() {
			if x := recover(); x != nil {
				d.Outcome = Failed
				d.Err = fmt.Errorf("%s", x)
			}
		}()

		if c.Guard != nil {
			ok, err := c.Guard(args)
			if err != nil {
				d.Outcome = Failed
				d.Err = err
				return
			}
			if !ok {
				d.Outcome = Unauthorized
				return
			}
		}

		if err := c.Handler(args); err != nil {
			d.Outcome = Failed
			d.Err = err
			return
		}

		d.Outcome = Invoked
	}()

	return d
}
