package tools

import (
	"io/ioutil"
	"log"
	"os"
	"strings"
	"testing"
)

func TestMermaid(t *testing.T) {
	var (
		leaveFile = false
		filename  = "g.mermaid"
	)

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	if !leaveFile {
		defer func() {
			log.Printf("removing %s", filename)
			if err := os.Remove(filename); err != nil {
				t.Fatal(err)
			}
		}()
	}

	a := demoAutomaton(t)

	if err := Mermaid(a, nil, out, nil); err != nil {
		t.Fatal(err)
	}

	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	got := string(bs)

	if !strings.HasPrefix(got, "graph LR\n") {
		t.Fatalf("got\n%s", got)
	}
	for _, want := range []string{
		"open user",
		"-->",
		"style",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}
}
