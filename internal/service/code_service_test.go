package service

import (
	"testing"
)

func TestRandomDigits(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := randomDigits(6)
		if err != nil {
			t.Fatalf("randomDigits: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("got %q, want 6 digits", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit %q in %q", c, code)
			}
		}
		seen[code] = true
	}
	// 50 draws from a million-value space colliding down to a handful
	// would indicate broken randomness.
	if len(seen) < 40 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}
