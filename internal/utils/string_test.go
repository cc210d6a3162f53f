package utils

import (
	"net/url"
	"testing"
)

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		input string
		owner string
		repo  string
		ok    bool
	}{
		{"octo/hello", "octo", "hello", true},
		{" octo/hello ", "octo", "hello", true},
		{"octo", "", "", false},
		{"/hello", "", "", false},
		{"octo/", "", "", false},
		{"a/b/c", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, repo, ok := SplitFullName(tt.input)
			if owner != tt.owner || repo != tt.repo || ok != tt.ok {
				t.Errorf("SplitFullName(%q) = (%q, %q, %v); want (%q, %q, %v)",
					tt.input, owner, repo, ok, tt.owner, tt.repo, tt.ok)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := BearerToken(tt.input); got != tt.expected {
				t.Errorf("BearerToken(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEscapeRef(t *testing.T) {
	got := EscapeRef("feature/a b", url.PathEscape)
	if got != "feature/a%20b" {
		t.Errorf("EscapeRef = %q", got)
	}
}
