package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    string
	}{
		{"first line only", "Hello\nworld", "Hello"},
		{"plain message", "hi", "hi"},
		{"surrounding whitespace", "  trimmed  \nrest", "trimmed"},
		{"empty message", "", DefaultTitle},
		{"whitespace only", "   \n\n", DefaultTitle},
		{"arabic", "مرحبا كيف حالك\nسطر ثاني", "مرحبا كيف حالك"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveTitle(tc.message); got != tc.want {
				t.Fatalf("DeriveTitle(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}

func TestDeriveTitleTruncatesByRunes(t *testing.T) {
	long := strings.Repeat("ب", DerivedTitleLen+20)
	got := DeriveTitle(long)
	if n := utf8.RuneCountInString(got); n != DerivedTitleLen {
		t.Fatalf("expected %d runes, got %d", DerivedTitleLen, n)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid utf-8")
	}
}
