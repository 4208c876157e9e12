package stats

import (
	"bytes"
	"strings"
	"testing"
)

func tableLines(t *testing.T, cols []column, rows [][]string) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := writeTable(&buf, cols, rows); err != nil {
		t.Fatalf("writeTable failed: %v", err)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestWriteTableAlignsColumns(t *testing.T) {
	cols := []column{{"#", true}, {"State", false}, {"Certified", true}, {"Percentage", true}}
	rows := [][]string{
		{"1", "CA", "2", "66.7%"},
		{"2", "NY", "1", "33.3%"},
	}

	lines := tableLines(t, cols, rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "# State Certified Percentage" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "1 CA            2      66.7%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "2 NY            1      33.3%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestWriteTableWideRunes(t *testing.T) {
	lines := tableLines(t, []column{{"Key", false}, {"Count", true}}, [][]string{{"東京", "12"}, {"CA", "3"}})
	if lines[1] != "東京    12" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "CA       3" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

func TestWriteTableShortRow(t *testing.T) {
	lines := tableLines(t, []column{{"Key", false}, {"Count", true}}, [][]string{{"CA"}})
	if lines[1] != "CA       " {
		t.Fatalf("unexpected short row: %q", lines[1])
	}
}
