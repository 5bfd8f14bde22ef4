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

package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/Comcast/patter/core"
	"github.com/Comcast/patter/dispatch"
	"github.com/Comcast/patter/util"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// init adds an Interpreter as one of the DefaultInterpreters.
func init() {
	dispatch.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements dispatch.Interpreter using Goja, which is a
// Go implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// wrapSrc puts the handler code in a block so it can just "return".
func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// Compile calls goja.Compile on the wrapped code.
func (i *Interpreter) Compile(ctx context.Context, code string) (interface{}, error) {
	code = wrapSrc(code)
	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}
	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func exported(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// Exec implements the dispatch.Interpreter method of the same name.
//
// The following properties are available from the runtime at _.
//
// These are the important ones:
//
//	text: the complete input line that matched.
//	params: the map of captured substrings.
//	reply(s): send the given string back to whoever spoke.
//
// Some useful utilities:
//
//	gensym(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(s): the next time the cron expression s fires.
//	match(shape, text): run the given shape against the text;
//	  the captured params, or null for no match.
//	log(x): log x as JSON (sent to the process log, not the chat).
//
// For testing only:
//
//	sleep(ms): sleep for the given number of milliseconds.
//
// The Testing flag must be set to see sleep().
//
// The result of the code's "return" is handed back as-is: handlers
// usually return nothing, and guards must return a bool.
func (i *Interpreter) Exec(ctx context.Context, args dispatch.Args, code string, compiled interface{}) (interface{}, error) {
	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, code); err != nil {
			return nil, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return nil, fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	params := map[string]interface{}{}
	for name, value := range args.Params {
		params[name] = value
	}

	env := map[string]interface{}{
		"ctx":    ctx,
		"text":   args.Text,
		"params": params,
	}

	o := goja.New()

	o.Set("_", env)

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["reply"] = func(x interface{}) interface{} {
		x = exported(x)
		s, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		if args.Reply == nil {
			protest(o, "nowhere to reply")
		}
		if err := args.Reply(s); err != nil {
			// Will end up as a Javascript exception.
			protest(o, err.Error())
		}
		return x
	}

	env["gensym"] = func() interface{} {
		return util.Gensym(32)
	}

	env["esc"] = func(x interface{}) interface{} {
		x = exported(x)
		s, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	env["cronNext"] = func(x interface{}) interface{} {
		x = exported(x)
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["log"] = func(x interface{}) interface{} {
		x = exported(x)
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}

		return x
	}

	// match is a utility that runs the shape matcher.
	env["match"] = func(shape, text interface{}) interface{} {
		s, is := exported(shape).(string)
		if !is {
			protest(o, "shape is not a string")
		}
		in, is := exported(text).(string)
		if !is {
			protest(o, "text is not a string")
		}

		a := core.NewAutomaton()
		if err := a.AddShape(s, 0); err != nil {
			protest(o, err.Error())
		}
		m := a.Process(in)
		if m == nil {
			return nil
		}

		captured := map[string]interface{}{}
		for name, value := range m.Params {
			captured[name] = value
		}
		return captured
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	return v.Export(), nil
}
