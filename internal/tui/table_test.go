package tui

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable([][]string{
		{"task_id", "seconds"},
		{"T-100", "5"},
		{"T-300", "3"},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	for _, cell := range []string{"task_id", "seconds", "T-100", "T-300"} {
		if !strings.Contains(out, cell) {
			t.Fatalf("output missing %q:\n%s", cell, out)
		}
	}
}

func TestRenderTable_RaggedRowsPadded(t *testing.T) {
	out := renderTable([][]string{
		{"h1", "h2", "h3"},
		{"only-one"},
	})
	if !strings.Contains(out, "only-one") || !strings.Contains(out, "h3") {
		t.Fatalf("ragged rows not rendered:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if out := renderTable(nil); out != "" {
		t.Fatalf("empty input rendered %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer task name", 10, "a longer …"},
		{"ab", 1, "a"},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
