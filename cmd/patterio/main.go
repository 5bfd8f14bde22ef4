/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package main is a little chat-command process: it loads a command
// table, registers the commands, and runs a session over stdin/stdout,
// a WebSocket, or MQTT.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Comcast/patter/chatio"
	"github.com/Comcast/patter/dispatch"
	"github.com/Comcast/patter/interpreters"
	"github.com/Comcast/patter/table"
	"github.com/Comcast/patter/tags"
	"github.com/Comcast/patter/util"
)

func main() {

	var (
		coupling          = flag.String("io", "std", `IO protocol: "std", "mq", or "ws"`)
		tableFilename     = flag.String("table", "tables/demo.yaml", "Command table filename")
		tagsFilename      = flag.String("tags", "", "Optional Bolt filename for the tag store")
		botName           = flag.String("bot", "patter", "Bot name (inbound messages from this name are ignored)")
		unauthorizedReply = flag.String("unauthorized-reply", "", "Optional reply when a guard says no")
		bare              = flag.Bool("bare", false, "Answer input that has no prefix")
		verbose           = flag.Bool("v", false, "Verbose")
		help              = flag.Bool("h", false, "Get usage")
	)

	flag.Parse()

	if *help {
		flag.PrintDefaults()

		{
			fmt.Fprintf(os.Stderr, "\n-io std (default):\n\n")
			_, fs := NewStdCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io mq:\n\n")
			_, fs := NewMQTTCouplings(nil)
			fs.PrintDefaults()
		}

		{
			fmt.Fprintf(os.Stderr, "\n-io ws:\n\n")
			_, fs := NewWebSocketCouplings(nil)
			fs.PrintDefaults()
		}

		os.Exit(0)
	}

	if *verbose {
		util.Logging = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t, err := table.Load(*tableFilename)
	if err != nil {
		panic(err)
	}

	r := dispatch.NewRegistry()
	if err := t.Register(ctx, r, interpreters.Standard()); err != nil {
		panic(err)
	}

	if *tagsFilename != "" {
		store, err := tags.Open(*tagsFilename)
		if err != nil {
			panic(err)
		}
		defer store.Close()
		if err := tags.Register(r, store, nil); err != nil {
			panic(err)
		}
	}

	// The menu is read at execution time, so "help" lists whatever
	// ended up registered above.
	if err := r.Add("help", func(args dispatch.Args) error {
		return args.Reply(menu(r))
	}); err != nil {
		panic(err)
	}

	var cio chatio.Couplings
	switch *coupling {
	case "std":
		c, _ := NewStdCouplings(flag.Args())
		cio = c
	case "mq", "mqtt":
		c, _ := NewMQTTCouplings(flag.Args())
		cio = c
	case "ws":
		c, _ := NewWebSocketCouplings(flag.Args())
		cio = c
	default:
		panic(fmt.Errorf("unknown io: '%s'", *coupling))
	}

	prefixes := t.Prefixes
	if *bare {
		prefixes = nil
	}

	s := &chatio.Session{
		Registry:          r,
		Prefixes:          prefixes,
		BotName:           *botName,
		UnauthorizedReply: *unauthorizedReply,
		Verbose:           *verbose,
	}

	log.Printf("%s: %d commands from %s", *botName, r.Size(), *tableFilename)

	if err := s.Run(ctx, cio); err != nil && err != context.Canceled {
		panic(err)
	}
}

// menu renders the registry's help listing for chat.
func menu(r *dispatch.Registry) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "commands:\n")
	for _, e := range r.Menu() {
		fmt.Fprintf(&buf, "  %s", e.Name)
		if e.Doc != "" {
			fmt.Fprintf(&buf, ": %s", e.Doc)
		}
		if e.Protected {
			fmt.Fprintf(&buf, " (protected)")
		}
		fmt.Fprintf(&buf, "\n")
	}
	fmt.Fprintf(&buf, "Say \"help NAME\" for more.")
	return buf.String()
}

func E(err error, args ...interface{}) error {
	log.Printf("error %s: %v", err, args)
	return err
}
