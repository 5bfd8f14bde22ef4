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
	"errors"
	"fmt"
)

var (
	// InterpreterNotFound occurs when you try to Compile a
	// HandlerSource and the required interpreter isn't in the
	// given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used in HandlerSource.Compile if
	// given nil interpreters.
	DefaultInterpreters = make(map[string]Interpreter)
)

// Interpreter can compile and execute code for handlers and guards.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code string) (interface{}, error)

	// Exec executes the code with the matched command's Args in
	// scope.  The result of a previous Compile() might be
	// provided.
	Exec(ctx context.Context, args Args, code string, compiled interface{}) (interface{}, error)
}

// HandlerSource is handler (or guard) code awaiting an interpreter.
//
// A command table stores these; Compile turns them into the funcs a
// Registry wants.
type HandlerSource struct {
	Interpreter string `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      string `json:"source"`
}

func (s *HandlerSource) find(interpreters map[string]Interpreter) (Interpreter, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}
	interpreter, have := interpreters[s.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}
	return interpreter, nil
}

// Compile attempts to compile the HandlerSource into a HandlerFunc
// using the given interpreters, which defaults to
// DefaultInterpreters.
func (s *HandlerSource) Compile(ctx context.Context, interpreters map[string]Interpreter) (HandlerFunc, error) {
	interpreter, err := s.find(interpreters)
	if err != nil {
		return nil, err
	}
	compiled, err := interpreter.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}
	return func(args Args) error {
		_, err := interpreter.Exec(args.Ctx, args, s.Source, compiled)
		return err
	}, nil
}

// CompileGuard is Compile for guard code.  The code must return a
// bool; anything else is an error, not a quiet denial.
func (s *HandlerSource) CompileGuard(ctx context.Context, interpreters map[string]Interpreter) (GuardFunc, error) {
	interpreter, err := s.find(interpreters)
	if err != nil {
		return nil, err
	}
	compiled, err := interpreter.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}
	return func(args Args) (bool, error) {
		x, err := interpreter.Exec(args.Ctx, args, s.Source, compiled)
		if err != nil {
			return false, err
		}
		ok, is := x.(bool)
		if !is {
			return false, fmt.Errorf("guard returned %T (%v), not a bool", x, x)
		}
		return ok, nil
	}, nil
}
