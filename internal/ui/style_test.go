package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestDays(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{3, "+3d"},
		{-2, "-2d"},
		{0, "0d"},
	}
	for _, tt := range tests {
		if got := Days(tt.n); got != tt.want {
			t.Errorf("Days(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestEdge(t *testing.T) {
	if got := Edge("a", "b"); got != "[a] -> [b]" {
		t.Errorf("unexpected edge %q", got)
	}
}

func TestStatusIcon(t *testing.T) {
	tests := map[string]string{
		"Done":        "✓",
		"in-progress": "●",
		"In Progress": "●",
		"blocked":     "✗",
		"canceled":    "⊘",
		"":            "◌",
		"backlog":     "◌",
	}
	for status, want := range tests {
		if got := StatusIcon(status); got != want {
			t.Errorf("StatusIcon(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestTaskColor_Stable(t *testing.T) {
	if taskColorIndex("api") != taskColorIndex("api") {
		t.Error("expected the same id to map to the same color")
	}
	if TaskPrefix("api") != "[api]" {
		t.Errorf("unexpected prefix %q", TaskPrefix("api"))
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), "P  U  L  S  E") {
		t.Errorf("expected banner, got:\n%s", buf.String())
	}
}
