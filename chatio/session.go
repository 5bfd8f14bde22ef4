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

package chatio

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Comcast/patter/dispatch"
	"github.com/Comcast/patter/util"
)

// A Session feeds a chat surface's traffic through a registry.
//
// The Session owns the pre-filtering that the registry deliberately
// doesn't do: dropping the bot's own messages and insisting on a
// command prefix.
type Session struct {
	Registry *dispatch.Registry

	// Prefixes the bot answers to.  The first matching prefix is
	// stripped; a message with no prefix is not a command and is
	// ignored.  No prefixes means every message is fair game.
	Prefixes []string

	// BotName, if not empty, silences messages From the bot
	// itself.  Without this check the bot can chat itself into a
	// loop.
	BotName string

	// UnauthorizedReply, if not empty, is sent when a command's
	// guard says no.  Empty means say nothing, which is how the
	// bot this design comes from behaved.
	UnauthorizedReply string

	// Verbose logs every dispatch via util.Logf.
	Verbose bool
}

// Run consumes inbound messages until the input is exhausted or the
// ctx is canceled.
func (s *Session) Run(ctx context.Context, c Couplings) error {
	// The couplings' goroutines watch this derived ctx, so Stop
	// can't strand them after the input side is done.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.Start(ctx); err != nil {
		return err
	}

	in, out, done, err := c.IO(ctx)
	if err != nil {
		c.Stop(ctx)
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.Stop(ctx)
			return ctx.Err()
		case <-done:
			cancel()
			return c.Stop(ctx)
		case msg := <-in:
			s.Consume(ctx, msg, out)
		}
	}
}

// Consume routes one inbound message, writing whatever the command
// says (plus outcome reporting) to out.
func (s *Session) Consume(ctx context.Context, msg Inbound, out chan Outbound) {
	if s.BotName != "" && msg.From == s.BotName {
		return
	}

	text, ok := s.strip(msg.Text)
	if !ok {
		return
	}

	reply := func(t string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- Outbound{Text: t}:
			return nil
		}
	}

	d := s.Registry.Execute(ctx, text, reply)
	if s.Verbose {
		util.Logf("session dispatch %q outcome %d", text, d.Outcome)
	}

	switch d.Outcome {
	case dispatch.NoMatch:
		// Most chatter isn't for us.
	case dispatch.Unauthorized:
		if s.UnauthorizedReply != "" {
			reply(s.UnauthorizedReply)
		}
	case dispatch.Failed:
		shape := ""
		if d.Command != nil {
			shape = d.Command.Shape
		}
		log.Printf("session command %q failed: %v", shape, d.Err)
		reply(fmt.Sprintf("Encountered error (%v)", d.Err))
	case dispatch.Invoked:
		// The handler said everything there was to say.
	}
}

// strip finds the first matching prefix and removes it.
func (s *Session) strip(text string) (string, bool) {
	if 0 == len(s.Prefixes) {
		return strings.TrimSpace(text), true
	}
	for _, p := range s.Prefixes {
		if strings.HasPrefix(text, p) {
			return strings.TrimSpace(strings.TrimPrefix(text, p)), true
		}
	}
	return "", false
}
