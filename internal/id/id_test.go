package id

import (
	"strings"
	"testing"
)

func TestNewIDShape(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(value), value)
	}
	if value != strings.ToLower(value) {
		t.Fatalf("expected lowercase identifier, got %q", value)
	}
	if strings.Contains(value, "=") {
		t.Fatalf("expected no padding, got %q", value)
	}
}

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		value, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate identifier %q", value)
		}
		seen[value] = struct{}{}
	}
}
