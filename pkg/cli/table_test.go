package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_EmptyWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "DEVICE", "STATUS")
	tbl.Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTable_Rows(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "DEVICE", "TOTAL")
	tbl.Row("core-msk-1", "12")
	tbl.Row("edge-spb-22", "3")
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"DEVICE       TOTAL",
		"------       -----",
		"core-msk-1   12",
		"edge-spb-22  3",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTable_Prefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "KEY").WithPrefix("  ")
	tbl.Row("empty")
	tbl.Flush()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
	}
}

func TestTable_NonStringCells(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "VLANS", "OK")
	tbl.Row(7, true)
	tbl.Flush()
	if !strings.Contains(buf.String(), "7      true") {
		t.Errorf("output:\n%s", buf.String())
	}
	if tbl.Rows() != 1 {
		t.Errorf("Rows() = %d", tbl.Rows())
	}
}

func TestTable_WithLimit(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "DEVICE", "DETAIL").WithLimit(1, 10)
	tbl.Row("r1", "SSH dial 192.0.2.1:22: connection refused")
	tbl.Flush()
	if !strings.Contains(buf.String(), "SSH dia...") || strings.Contains(buf.String(), "refused") {
		t.Errorf("output:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"bridge", 0, "bridge"},
		{"bridge", 6, "bridge"},
		{"bridge-lan", 8, "bridg..."},
		{"bridge", 2, "br"},
		{"мост-центр", 7, "мост..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}
