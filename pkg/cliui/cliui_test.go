package cliui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"NAME", "COUNT"}, [][]string{
		{"tick", "120"},
		{"fit_to_view", "1"},
		{"世界", "7"},
	})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	// Second column starts at the same display offset on every row.
	want := strings.Index(lines[0], "COUNT")
	for _, l := range lines[2:] {
		prefix := l[:strings.LastIndex(l, " ")+1]
		if w := displayWidth(prefix); w != want {
			t.Errorf("row %q: second column at %d, want %d", l, w, want)
		}
	}
}

func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		if r == '世' || r == '界' {
			n += 2
			continue
		}
		n++
	}
	return n
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"A"}, nil)
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	Errorf(&buf, "no graph at %s", "x.json")
	Warnf(&buf, "skipped %d", 2)
	Banner(&buf, "render")
	out := buf.String()
	for _, want := range []string{"entropy: no graph at x.json", "warning: skipped 2", "entropy · render"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if StatusIcon(true) != "✓" || StatusIcon(false) != "✗" {
		t.Error("unexpected status icons")
	}
}
