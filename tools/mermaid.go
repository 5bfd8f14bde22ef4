/* Copyright 2018 Comcast Cable Communications Management, LLC
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
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/patter/core"
)

type MermaidOpts struct {
	// ShowCharSets will result in an edge label giving the
	// character set the transition accepts.
	ShowCharSets bool `json:"showCharSets"`

	// AcceptFill is the fill color for accepting states.  Does not
	// apply if AcceptClass is set.
	AcceptFill string `json:"acceptFill,omitempty"`

	// AcceptClass will be the CSS class for accepting states.  Not
	// yet implemented.
	AcceptClass string `json:"acceptClass,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given automaton.
func Mermaid(a *core.Automaton, labels map[core.HandlerRef]string, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowCharSets: true,
			AcceptFill:   "#bcf2db",
		}
	}

	fmt.Fprintf(w, "graph LR\n")

	for i := 0; i < a.Len(); i++ {
		s := a.At(i)

		name := fmt.Sprintf("%d", i)
		if s.Open != "" {
			name += " open " + s.Open
		}
		if s.Close {
			name += " close"
		}

		if !s.Accept {
			fmt.Fprintf(w, "  n%d(\"%s\")\n", i, name)
			continue
		}

		if l, have := labels[s.Handler]; have {
			name += ": " + l
		}
		fmt.Fprintf(w, "  n%d[\"%s\"]\n", i, name)
		if opts.AcceptClass == "" {
			if opts.AcceptFill == "" {
			} else {
				fmt.Fprintf(w, "  style n%d fill:%s\n", i, opts.AcceptFill)
			}
		}
	}

	for i := 0; i < a.Len(); i++ {
		for _, j := range a.At(i).Next {
			label := ""
			if opts.ShowCharSets {
				expected := a.At(j).Expected.String()
				expected = strings.Replace(expected, `"`, `'`, -1)
				label = fmt.Sprintf(`-- "%s"`, expected)
			}
			fmt.Fprintf(w, "  n%d %s --> n%d\n", i, label, j)
		}
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}
