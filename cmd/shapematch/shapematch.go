/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package main is a little command-line utility to invoke shape
// matching.
//
//	shapematch -s 'docs {crate}' -s 'ban user={} reason...' -m 'docs serde' -w '{"crate":"serde"}'
//
// With -w the output is "true" or "false" (with a non-zero exit for
// false); without it, the winning shape and its params as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Comcast/patter/core"
)

// shapes accumulates repeated -s flags.
type shapes []string

func (ss *shapes) String() string {
	return strings.Join(*ss, ", ")
}

func (ss *shapes) Set(s string) error {
	*ss = append(*ss, s)
	return nil
}

func main() {
	var (
		ss shapes

		messageText = flag.String("m", "", "message text")
		wantJS      = flag.String("w", "", "wanted params in JSON")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		verbose = flag.Bool("v", false, "verbosity")

		want   map[string]string
		wanted bool
	)

	flag.Var(&ss, "s", "a shape to register (repeatable; registration order is precedence)")

	flag.Parse()

	if 0 == len(ss) {
		log.Fatal("at least one -s shape is needed")
	}

	a := core.NewAutomaton()
	for i, shape := range ss {
		if err := a.AddShape(shape, core.HandlerRef(i)); err != nil {
			panic(err)
		}
	}

	if *wantJS != "" {
		if err := json.Unmarshal([]byte(*wantJS), &want); err != nil {
			panic(err)
		}
		wanted = true
	}

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			a.Process(*messageText)
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Process, %d mean bytes allocated per Process", *bench, meanNanos, allocated)
	}

	m := a.Process(*messageText)

	if wanted {
		ok := m != nil &&
			Subset(want, m.Params, *verbose) &&
			Subset(m.Params, want, *verbose)
		if !ok {
			fmt.Printf("false\n")
			os.Exit(1)
		}
		fmt.Printf("true\n")
		return
	}

	if m == nil {
		fmt.Printf("null\n")
		return
	}

	got := struct {
		Shape  string            `json:"shape"`
		Params map[string]string `json:"params"`
	}{
		Shape:  ss[int(m.Handler)],
		Params: m.Params,
	}

	js, err := json.Marshal(&got)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s\n", js)
}

// Subset checks that params x is a subset of params y.
func Subset(x, y map[string]string, verbose bool) bool {
	for p, vx := range x {
		vy, have := y[p]
		if !have {
			if verbose {
				fmt.Printf("missing %s\n", p)
			}
			return false
		}
		if vx != vy {
			if verbose {
				fmt.Printf("disagreement at %s: %q != %q\n", p, vx, vy)
			}
			return false
		}
	}
	return true
}
