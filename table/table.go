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

// Package table loads command sets declared in YAML (or JSON) and
// registers them.
//
// A table is data, not code: canned replies cover the common case,
// and entries that need to compute something name an interpreter and
// carry source for it.
package table

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/Comcast/patter/dispatch"

	"github.com/jsccast/yaml"
)

// Entry is one command in a Table.
//
// Exactly one of Reply and Handler says what the command does.  Name
// puts the command in the help menu; without one the command still
// works but isn't listed.
type Entry struct {
	// Shape is the recognition pattern.  See core.AddShape for
	// the segment grammar.
	Shape string `json:"shape"`

	// Name is the menu name ("help NAME" will describe this
	// entry).
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is the one-line description for the menu.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Reply is a canned reply.  ${param} refers to a captured
	// parameter; an unbound name expands to "".
	Reply string `json:"reply,omitempty" yaml:",omitempty"`

	// Help is the canned "help NAME" reply.  Defaults to the
	// shape plus Doc.
	Help string `json:"help,omitempty" yaml:",omitempty"`

	// Handler is code for an interpreter, for entries a canned
	// reply can't serve.
	Handler *dispatch.HandlerSource `json:"handler,omitempty" yaml:",omitempty"`

	// Guard, if present, protects the command (and its help).
	Guard *dispatch.HandlerSource `json:"guard,omitempty" yaml:",omitempty"`
}

// Table is a named set of command entries plus the prefixes a
// session should answer to.
type Table struct {
	Name     string   `json:"name"`
	Doc      string   `json:"doc,omitempty" yaml:",omitempty"`
	Prefixes []string `json:"prefixes,omitempty" yaml:",omitempty"`
	Commands []*Entry `json:"commands"`
}

// Load reads a table from a file.  A body starting with '{' is
// parsed as JSON; anything else as YAML.
func Load(filename string) (*Table, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(bs)
}

// Parse reads a table from bytes and validates it.
func Parse(bs []byte) (*Table, error) {
	if 0 == len(bs) {
		return nil, fmt.Errorf("table is empty")
	}

	var t Table
	switch bs[0] {
	case '{':
		if err := json.Unmarshal(bs, &t); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(bs, &t); err != nil {
			return nil, err
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return &t, nil
}

// Validate checks the table for authoring mistakes.  Shape problems
// only turn up later, at Register time, when the shapes compile.
func (t *Table) Validate() error {
	if 0 == len(t.Commands) {
		return fmt.Errorf("table %q has no commands", t.Name)
	}
	for i, e := range t.Commands {
		if e == nil {
			return fmt.Errorf("table %q command %d is empty", t.Name, i)
		}
		if e.Shape == "" {
			return fmt.Errorf("table %q command %d has no shape", t.Name, i)
		}
		if e.Reply == "" && e.Handler == nil {
			return fmt.Errorf("command %q has neither reply nor handler", e.Shape)
		}
		if e.Reply != "" && e.Handler != nil {
			return fmt.Errorf("command %q has both reply and handler", e.Shape)
		}
		if e.Help != "" && e.Name == "" {
			return fmt.Errorf("command %q has help text but no name to list it under", e.Shape)
		}
	}
	return nil
}

// expand substitutes ${param} references with captured parameters.
func expand(template string, params map[string]string) string {
	return os.Expand(template, func(name string) string {
		return params[name]
	})
}

// handler turns the entry's Reply or Handler into a HandlerFunc.
func (e *Entry) handler(ctx context.Context, interpreters map[string]dispatch.Interpreter) (dispatch.HandlerFunc, error) {
	if e.Reply != "" {
		reply := e.Reply
		return func(args dispatch.Args) error {
			return args.Reply(expand(reply, args.Params))
		}, nil
	}
	h, err := e.Handler.Compile(ctx, interpreters)
	if err != nil {
		return nil, fmt.Errorf("command %q handler: %v", e.Shape, err)
	}
	return h, nil
}

// guard compiles the entry's Guard, if any.
func (e *Entry) guard(ctx context.Context, interpreters map[string]dispatch.Interpreter) (dispatch.GuardFunc, error) {
	if e.Guard == nil {
		return nil, nil
	}
	g, err := e.Guard.CompileGuard(ctx, interpreters)
	if err != nil {
		return nil, fmt.Errorf("command %q guard: %v", e.Shape, err)
	}
	return g, nil
}

// help is the canned "help NAME" reply.
func (e *Entry) help() string {
	if e.Help != "" {
		return e.Help
	}
	h := "usage: " + e.Shape
	if e.Doc != "" {
		h += "\n" + e.Doc
	}
	return h
}

// Register compiles the table's entries into the registry: each
// entry's command, plus a "help NAME" command and a menu row for the
// named ones.
func (t *Table) Register(ctx context.Context, r *dispatch.Registry, interpreters map[string]dispatch.Interpreter) error {
	if err := t.Validate(); err != nil {
		return err
	}

	for _, e := range t.Commands {
		h, err := e.handler(ctx, interpreters)
		if err != nil {
			return err
		}
		g, err := e.guard(ctx, interpreters)
		if err != nil {
			return err
		}

		if g == nil {
			err = r.Add(e.Shape, h)
		} else {
			err = r.AddProtected(e.Shape, h, g)
		}
		if err != nil {
			return fmt.Errorf("command %q: %v", e.Shape, err)
		}

		if e.Name == "" {
			continue
		}
		help := e.help()
		helpHandler := func(args dispatch.Args) error {
			return args.Reply(help)
		}
		if g == nil {
			err = r.Help(e.Name, e.Doc, helpHandler)
		} else {
			err = r.HelpProtected(e.Name, e.Doc, helpHandler, g)
		}
		if err != nil {
			return fmt.Errorf("command %q help: %v", e.Shape, err)
		}
	}

	return nil
}
