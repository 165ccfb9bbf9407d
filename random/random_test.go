package random

import (
	"strings"
	"testing"
)

func TestAlphabet(t *testing.T) {
	tok, err := Token(48)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []string{tok, String(48)} {
		if len(v) != 48 {
			t.Fatalf("expected 48 chars, got %d", len(v))
		}
		if i := strings.IndexFunc(v, func(c rune) bool { return !strings.ContainsRune(alphabet, c) }); i >= 0 {
			t.Fatalf("unexpected char %q in %q", v[i], v)
		}
	}
}

func TestTokensDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := Token(16)
		if err != nil {
			t.Fatal(err)
		}
		if seen[tok] {
			t.Fatalf("token %q repeated", tok)
		}
		seen[tok] = true
	}
}

func TestTokenEmpty(t *testing.T) {
	tok, err := Token(0)
	if err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q %v", tok, err)
	}
}
