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

package tools

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/Comcast/patter/core"
)

func demoAutomaton(t *testing.T) *core.Automaton {
	a := core.NewAutomaton()
	if err := a.AddShape("docs {crate}", 0); err != nil {
		t.Fatal(err)
	}
	if err := a.AddShape("ban user={} reason...", 1); err != nil {
		t.Fatal(err)
	}
	return a
}

func TestDot(t *testing.T) {
	filename := "g.dot"

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := os.Remove(filename); err != nil {
			t.Fatal(err)
		}
	}()

	a := demoAutomaton(t)

	labels := map[core.HandlerRef]string{
		0: "docs {crate}",
		1: "ban user={} reason...",
	}

	if err := Dot(a, labels, out); err != nil {
		t.Fatal(err)
	}

	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	got := string(bs)

	for _, want := range []string{
		"digraph G {",
		"doublecircle",
		"open crate",
		"docs {crate}",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}

	if !strings.HasSuffix(got, "}\n") {
		t.Fatalf("unterminated graph:\n%s", got)
	}
}
