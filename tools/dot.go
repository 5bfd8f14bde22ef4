package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/patter/core"
)

// Dot makes a Graphviz dot file for the given automaton.  A really
// ugly dot file.
//
// The optional labels give accepting states a readable name (say the
// shape that concluded there) instead of a bare handler ref.  Doubled
// circles accept; a second line marks capture opens and closes.
func Dot(a *core.Automaton, labels map[core.HandlerRef]string, w io.WriteCloser) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="circle" style="filled"]
  edge [fontsize = "12"]
`)

	for i := 0; i < a.Len(); i++ {
		s := a.At(i)

		label := fmt.Sprintf("%d", i)
		if s.Open != "" {
			label += `<BR/><FONT POINT-SIZE='8'>open ` + htmlEscape(s.Open) + `</FONT>`
		}
		if s.Close {
			label += `<BR/><FONT POINT-SIZE='8'>close</FONT>`
		}

		shape := "circle"
		fillcolor := "#99ddc8"
		style := "filled"
		if s.Accept {
			shape = "doublecircle"
			fillcolor = "#2d93ad"
			name, have := labels[s.Handler]
			if !have {
				name = fmt.Sprintf("ref %d", s.Handler)
			}
			label += `<BR/><FONT POINT-SIZE='8'>` + htmlEscape(name) + `</FONT>`
		}
		if i == a.Start() {
			style += ",bold"
		}

		fmt.Fprintf(w, "  s%d [shape=\"%s\", style=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			i, shape, style, fillcolor, label)
	}

	for i := 0; i < a.Len(); i++ {
		for _, j := range a.At(i).Next {
			expected := a.At(j).Expected.String()
			fmt.Fprintf(w, "  s%d -> s%d [ label=<%s> ]\n",
				i, j, htmlEscape(expected))
		}
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function will write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(a *core.Automaton, labels map[core.HandlerRef]string, basename string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	// ToDo: Use mktemp
	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(a, labels, dotfile); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

// htmlEscape makes a string safe inside an HTML-ish dot label.
func htmlEscape(s string) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "<", "&lt;", -1)
	s = strings.Replace(s, ">", "&gt;", -1)
	return s
}
