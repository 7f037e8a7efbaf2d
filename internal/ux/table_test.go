package ux

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{
		Headers: []string{"ID", "TITLE"},
		Rows:    [][]string{{"1", "Loksewa Set 1"}, {"2", "Engineering"}},
		Footer:  "2 of 14",
	}

	if err := tbl.Render(&buf, true); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ID", "TITLE", "Loksewa Set 1", "Engineering", "2 of 14"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTable_RenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (Table{Headers: []string{"ID"}}).Render(&buf, false); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No results." {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 5, "trun…"},
		{"राजधानी", 3, "रा…"},
		{"x", 0, "x"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
