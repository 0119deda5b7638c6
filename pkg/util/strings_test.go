package util

import (
	"reflect"
	"testing"
)

func TestSplitCommaSeparated(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"empty", []string{"empty"}},
		{"empty, single ,,ip_free", []string{"empty", "single", "ip_free"}},
	}
	for _, tt := range tests {
		if got := SplitCommaSeparated(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCommaSeparated(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCapitalizeFirst(t *testing.T) {
	if got := CapitalizeFirst("bridges without ports"); got != "Bridges without ports" {
		t.Errorf("CapitalizeFirst() = %q", got)
	}
	if got := CapitalizeFirst(""); got != "" {
		t.Errorf("CapitalizeFirst(\"\") = %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Москва", "Москва"},
		{"core/msk 1", "core_msk_1"},
		{"  ", "_"},
		{"a:b", "a_b"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
