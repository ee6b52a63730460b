package buildinfo

import (
	"strings"
	"testing"
)

func TestShortPrefersVersion(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	Version, Commit = "v1.2.0", "0123456789abcdef"
	if got := Short(); got != "v1.2.0" {
		t.Fatalf("Short() = %q, want %q", got, "v1.2.0")
	}

	Version = "dev"
	if got := Short(); got != "0123456789ab" {
		t.Fatalf("Short() = %q, want %q", got, "0123456789ab")
	}
}

func TestString(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "v0.1.0", "abc", "2026-01-02"
	got := String()
	for _, want := range []string{"v0.1.0", "abc", "2026-01-02"} {
		if !strings.Contains(got, want) {
			t.Fatalf("String() = %q, missing %q", got, want)
		}
	}
}
