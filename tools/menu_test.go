package tools

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderMenuPage(t *testing.T) {
	out := bytes.NewBuffer(make([]byte, 0, 1024*16))

	err := ReadAndRenderMenuPage("../tables/demo.yaml", []string{"table.css"}, out)
	if err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"table.css",
		"commandShape",
		"prefixes",
		"docs {crate}",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}
}

func TestRenderMenuPageMissing(t *testing.T) {
	out := bytes.NewBuffer(nil)
	if err := ReadAndRenderMenuPage("nosuchtable.yaml", nil, out); err == nil {
		t.Fatal("expected an error")
	}
}
