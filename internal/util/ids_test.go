package util

import (
	"strings"
	"testing"
)

func TestNewBuildID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewBuildID()
		if len(id) != 12 {
			t.Fatalf("expected 12 characters, got %q", id)
		}
		if strings.Trim(id, buildIDAlphabet) != "" {
			t.Fatalf("unexpected characters in %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
