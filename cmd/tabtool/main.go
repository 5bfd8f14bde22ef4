package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/Comcast/patter/table"
	"github.com/Comcast/patter/tools"

	yamlv2 "gopkg.in/yaml.v2"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		t := readTable()
		r, err := tools.CompileQuiet(t)
		if err != nil {
			fail(err)
		}
		fmt.Printf("table %q: %d commands, %d states\n",
			t.Name, r.Size(), r.Automaton().Len())

	case "dot":
		t := readTable()
		r, err := tools.CompileQuiet(t)
		if err != nil {
			fail(err)
		}
		if err := tools.Dot(r.Automaton(), tools.Labels(r), os.Stdout); err != nil {
			fail(err)
		}

	case "mermaid":
		t := readTable()
		r, err := tools.CompileQuiet(t)
		if err != nil {
			fail(err)
		}
		if err := tools.Mermaid(r.Automaton(), tools.Labels(r), os.Stdout, nil); err != nil {
			fail(err)
		}

	case "html":
		t := readTable()
		if _, err := tools.CompileQuiet(t); err != nil {
			fail(err)
		}
		if err := tools.RenderMenuPage(t, os.Stdout, nil); err != nil {
			fail(err)
		}

	case "analyze":
		t := readTable()
		r, err := tools.CompileQuiet(t)
		if err != nil {
			fail(err)
		}
		an := tools.Analyze(r.Automaton())
		bs, err := json.MarshalIndent(an, "", "  ")
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s\n", bs)

	case "yamltojson":
		pretty := false

		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				panic(fmt.Sprintf("unsupported args: %v", os.Args[1:]))
			}
		default:
			panic(fmt.Sprintf("unsupported args: %v", os.Args[1:]))
		}

		t := readTable()

		var bs []byte
		var err error
		if pretty {
			bs, err = json.MarshalIndent(t, "  ", "  ")
		} else {
			bs, err = json.Marshal(t)
		}
		if err != nil {
			fail(err)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fail(err)
		}

	case "jsontoyaml":
		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}

		var t *table.Table
		if err = json.Unmarshal(bs, &t); err != nil {
			fail(err)
		}

		if bs, err = yamlv2.Marshal(&t); err != nil {
			fail(err)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fail(err)
		}

	default:
		fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
		Usage()
		os.Exit(1)
	}
}

// readTable parses the table on stdin.
func readTable() *table.Table {
	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		fail(err)
	}

	if len(bs) == 0 {
		bs = []byte(DefaultTableYAML)
	}

	t, err := table.Parse(bs)
	if err != nil {
		fail(err)
	}
	return t
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func Usage() {
	fmt.Printf("Subcommands (all read a table from stdin):\n\n")
	fmt.Printf("  check        validate the table and compile its shapes\n")
	fmt.Printf("  dot          write Graphviz for the compiled automaton\n")
	fmt.Printf("  mermaid      write Mermaid for the compiled automaton\n")
	fmt.Printf("  html         write an HTML help page for the table\n")
	fmt.Printf("  analyze      write an automaton analysis in JSON\n")
	fmt.Printf("  yamltojson   convert the table to JSON\n")
	fmt.Printf("  jsontoyaml   convert a JSON table to YAML\n\n")
	fmt.Printf("Usage of yamltojson:\n")
	fmt.Printf("  -p    pretty-print\n\n")
}

var DefaultTableYAML = `name: default
commands:
  - shape: echo text...
    reply: "${text}"
`
