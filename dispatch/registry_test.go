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
	"strings"
	"testing"
)

// capture is a ReplyFunc that remembers what it was told.
type capture struct {
	lines []string
}

func (c *capture) reply(text string) error {
	c.lines = append(c.lines, text)
	return nil
}

func TestRegistryExecute(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry()
	if err := r.Add("echo text...", func(args Args) error {
		return args.Reply(args.Param("text"))
	}); err != nil {
		t.Fatal(err)
	}

	var out capture

	d := r.Execute(ctx, "echo hello world", out.reply)
	if d.Outcome != Invoked {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if d.Command == nil || d.Command.Shape != "echo text..." {
		t.Fatalf("command %#v", d.Command)
	}
	if got := d.Params["text"]; got != "hello world" {
		t.Fatalf("params %#v", d.Params)
	}
	if 1 != len(out.lines) || out.lines[0] != "hello world" {
		t.Fatalf("replies %#v", out.lines)
	}

	d = r.Execute(ctx, "kcehc ohce", out.reply)
	if d.Outcome != NoMatch {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if d.Command != nil || d.Err != nil {
		t.Fatalf("%#v", d)
	}
	if 1 != len(out.lines) {
		t.Fatalf("replies %#v", out.lines)
	}
}

func TestRegistryNilReply(t *testing.T) {
	r := NewRegistry()
	if err := r.Add("ping", func(args Args) error {
		return args.Reply("pong")
	}); err != nil {
		t.Fatal(err)
	}

	// No reply sink given: the handler's replies go nowhere, and
	// nothing explodes.
	d := r.Execute(context.Background(), "ping", nil)
	if d.Outcome != Invoked {
		t.Fatalf("outcome %d (err %v)", d.Outcome, d.Err)
	}
}

func TestRegistryPrecedence(t *testing.T) {
	r := NewRegistry()

	won := ""
	mark := func(name string) HandlerFunc {
		return func(Args) error {
			won = name
			return nil
		}
	}

	if err := r.Add("crate {name}", mark("first")); err != nil {
		t.Fatal(err)
	}
	if err := r.Add("crate {query}", mark("second")); err != nil {
		t.Fatal(err)
	}

	d := r.Execute(context.Background(), "crate serde", nil)
	if d.Outcome != Invoked {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if won != "first" {
		t.Fatalf("won %q", won)
	}
	if got := d.Params["name"]; got != "serde" {
		t.Fatalf("params %#v", d.Params)
	}
}

func TestRegistryGuards(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry()

	ran := 0
	h := func(Args) error {
		ran++
		return nil
	}

	allow := false
	g := func(Args) (bool, error) {
		return allow, nil
	}

	if err := r.AddProtected("cleanup", h, g); err != nil {
		t.Fatal(err)
	}

	d := r.Execute(ctx, "cleanup", nil)
	if d.Outcome != Unauthorized {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if 0 != ran {
		t.Fatal("handler ran past the guard")
	}

	allow = true
	d = r.Execute(ctx, "cleanup", nil)
	if d.Outcome != Invoked {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if 1 != ran {
		t.Fatalf("ran %d times", ran)
	}
}

func TestRegistryGuardError(t *testing.T) {
	r := NewRegistry()

	broken := errors.New("directory unavailable")
	if err := r.AddProtected("cleanup",
		func(Args) error {
			t.Fatal("handler ran despite guard error")
			return nil
		},
		func(Args) (bool, error) {
			return false, broken
		}); err != nil {
		t.Fatal(err)
	}

	d := r.Execute(context.Background(), "cleanup", nil)
	if d.Outcome != Failed {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if d.Err != broken {
		t.Fatalf("err %v", d.Err)
	}
}

func TestRegistryHandlerError(t *testing.T) {
	r := NewRegistry()

	oops := errors.New("upstream said 503")
	if err := r.Add("docs {crate}", func(Args) error {
		return oops
	}); err != nil {
		t.Fatal(err)
	}

	d := r.Execute(context.Background(), "docs rand", nil)
	if d.Outcome != Failed {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if d.Err != oops {
		t.Fatalf("err %v", d.Err)
	}
	if d.Command == nil {
		t.Fatal("failed dispatch should still name the command")
	}
}

func TestRegistryHandlerPanic(t *testing.T) {
	r := NewRegistry()

	if err := r.Add("play `code`", func(args Args) error {
		panic("rogue handler: " + args.Param("code"))
	}); err != nil {
		t.Fatal(err)
	}

	d := r.Execute(context.Background(), "play `1+1`", nil)
	if d.Outcome != Failed {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if d.Err == nil || !strings.Contains(d.Err.Error(), "rogue handler: 1+1") {
		t.Fatalf("err %v", d.Err)
	}
}

func TestRegistryHelp(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry()

	say := func(text string) HandlerFunc {
		return func(args Args) error {
			return args.Reply(text)
		}
	}

	if err := r.Help("crate", "Search crates.io.", say("crate NAME")); err != nil {
		t.Fatal(err)
	}
	if err := r.HelpProtected("cleanup", "Wipe retired sandboxes.", say("cleanup"),
		func(Args) (bool, error) {
			return false, nil
		}); err != nil {
		t.Fatal(err)
	}

	menu := r.Menu()
	if 2 != len(menu) {
		t.Fatalf("menu %#v", menu)
	}
	if menu[0].Name != "crate" || menu[0].Protected {
		t.Fatalf("menu[0] %#v", menu[0])
	}
	if menu[1].Name != "cleanup" || !menu[1].Protected {
		t.Fatalf("menu[1] %#v", menu[1])
	}

	var out capture
	d := r.Execute(ctx, "help crate", out.reply)
	if d.Outcome != Invoked {
		t.Fatalf("outcome %d", d.Outcome)
	}
	if 1 != len(out.lines) || out.lines[0] != "crate NAME" {
		t.Fatalf("replies %#v", out.lines)
	}

	if d = r.Execute(ctx, "help cleanup", out.reply); d.Outcome != Unauthorized {
		t.Fatalf("outcome %d", d.Outcome)
	}

	// Mutating the returned menu must not touch the registry.
	menu[0].Name = "vandalized"
	if r.Menu()[0].Name != "crate" {
		t.Fatal("Menu returned the registry's own slice")
	}
}

func TestRegistryBadShape(t *testing.T) {
	r := NewRegistry()

	h := func(Args) error { return nil }

	if err := r.Add("", h); err == nil {
		t.Fatal("empty shape registered")
	}
	if err := r.Add("echo {}", h); err == nil {
		t.Fatal("nameless capture registered")
	}
	if err := r.Add("ok", nil); err == nil {
		t.Fatal("nil handler registered")
	}
	if 0 != len(r.Commands()) {
		t.Fatalf("commands %#v", r.Commands())
	}

	// Registration still works after the failures, with refs
	// intact.
	if err := r.Add("ok", h); err != nil {
		t.Fatal(err)
	}
	if c, _ := r.Process("ok"); c == nil || c.Shape != "ok" {
		t.Fatalf("command %#v", c)
	}
}

func TestRegistryAbandonedShape(t *testing.T) {
	r := NewRegistry()

	// The flag group compiles (and concludes accepting states)
	// before the malformed code segment is reached, so AddShape
	// fails after the automaton already learned a partial shape.
	// Nothing must be dispatchable for it.
	err := r.Add("cmd a={} ``", func(Args) error {
		return nil
	})
	if err == nil {
		t.Fatal("malformed shape registered")
	}
	if 0 != len(r.Commands()) {
		t.Fatalf("commands %#v", r.Commands())
	}

	if d := r.Execute(context.Background(), "cmd a=x", nil); d.Outcome != NoMatch {
		t.Fatalf("outcome %d", d.Outcome)
	}
}

func TestRegistryConcurrentExecute(t *testing.T) {
	r := NewRegistry()
	if err := r.Add("crate {name}", func(Args) error {
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	done := make(chan error)
	for i := 0; i < 8; i++ {
		go func(i int) {
			ctx := context.Background()
			for j := 0; j < 200; j++ {
				in := fmt.Sprintf("crate serde%d", i)
				d := r.Execute(ctx, in, nil)
				if d.Outcome != Invoked {
					done <- fmt.Errorf("outcome %d for %q", d.Outcome, in)
					return
				}
				if got := d.Params["name"]; got != fmt.Sprintf("serde%d", i) {
					done <- fmt.Errorf("params %#v for %q", d.Params, in)
					return
				}
			}
			done <- nil
		}(i)
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
