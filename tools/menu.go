package tools

import (
	"context"
	"fmt"
	"io"

	"github.com/Comcast/patter/core"
	"github.com/Comcast/patter/dispatch"
	"github.com/Comcast/patter/interpreters/noop"
	"github.com/Comcast/patter/table"

	md "github.com/russross/blackfriday/v2"
)

// RenderMenuHTML writes an HTML fragment describing the table's
// commands: shape, doc, help text, and any handler or guard source.
func RenderMenuHTML(t *table.Table, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if t.Doc != "" {
		f(`<div class="tableDoc doc">%s</div>`, md.Run([]byte(t.Doc)))
	}

	f(`<div class="commands"><table>`)
	for _, e := range t.Commands {
		name := e.Name
		if name == "" {
			name = e.Shape
		}
		f(`<tr class="command"><td><span id="%s" class="commandShape"><code>%s</code></span></td><td>`,
			name, e.Shape)

		if e.Doc != "" {
			f(`<div class="commandDoc doc">%s</div>`, md.Run([]byte(e.Doc)))
		}
		if e.Reply != "" {
			f(`<div class="reply"><code>%s</code></div>`, e.Reply)
		}
		if e.Handler != nil {
			f(`<div class="code"><pre>%s</pre></div>`, e.Handler.Source)
		}
		if e.Guard != nil {
			f(`<div>guarded</div>`)
			f(`<div class="code"><pre>%s</pre></div>`, e.Guard.Source)
		}
		if e.Help != "" {
			f(`<div class="help"><pre>%s</pre></div>`, e.Help)
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderMenuPage writes a complete HTML page for the table.
func RenderMenuPage(t *table.Table, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/table-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, t.Name)

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, t.Name)

	if 0 < len(t.Prefixes) {
		fmt.Fprintf(out, `<div class="prefixes">prefixes:`)
		for _, p := range t.Prefixes {
			fmt.Fprintf(out, " <code>%s</code>", p)
		}
		fmt.Fprintf(out, "</div>\n")
	}

	if err := RenderMenuHTML(t, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// CompileQuiet registers the table against a silent noop interpreter
// standing in for whatever interpreters the entries name.  Shape and
// table problems surface; the handlers do nothing.  Good for tools
// that want the automaton without the behavior.
func CompileQuiet(t *table.Table) (*dispatch.Registry, error) {
	quiet := &noop.Interpreter{Silent: true}
	interpreters := map[string]dispatch.Interpreter{
		"": quiet,
	}
	for _, e := range t.Commands {
		if e.Handler != nil {
			interpreters[e.Handler.Interpreter] = quiet
		}
		if e.Guard != nil {
			interpreters[e.Guard.Interpreter] = quiet
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := dispatch.NewRegistry()
	if err := t.Register(ctx, r, interpreters); err != nil {
		return nil, err
	}
	return r, nil
}

// Labels names each registered command by its shape, for Dot and
// Mermaid.
func Labels(r *dispatch.Registry) map[core.HandlerRef]string {
	labels := make(map[core.HandlerRef]string)
	for _, c := range r.Commands() {
		labels[c.Ref()] = c.Shape
	}
	return labels
}

// ReadAndRenderMenuPage loads a table, compiles it so shape and
// source problems surface now, and renders the page.
func ReadAndRenderMenuPage(filename string, cssFiles []string, out io.Writer) error {
	t, err := table.Load(filename)
	if err != nil {
		return err
	}

	if _, err := CompileQuiet(t); err != nil {
		return err
	}

	return RenderMenuPage(t, out, cssFiles)
}
