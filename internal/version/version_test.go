package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColoredWithoutColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	if got := Colored(); got != Version {
		t.Fatalf("Colored() = %q, want %q", got, Version)
	}
}

func TestLine(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		color.NoColor = prev
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	Version, GitCommit, BuildDate = "1.2.3", "abc123", "2024-01-15"
	if got, want := Line(), "disambig 1.2.3 (abc123, 2024-01-15)"; got != want {
		t.Fatalf("Line() = %q, want %q", got, want)
	}
	GitCommit = ""
	// without -ldflags the commit may come from the embedded VCS stamp
	if got := Line(); !strings.HasPrefix(got, "disambig 1.2.3") || strings.Contains(got, "abc123") {
		t.Fatalf("Line() = %q", got)
	}
	Version = "weird"
	if got := Colored(); got != "weird" {
		t.Fatalf("Colored() on a non-semver = %q", got)
	}
}

func TestStampPrefersLinkerValues(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = origCommit, origDate }()

	GitCommit, BuildDate = " deadbeef ", "2025-02-01"
	commit, date := Stamp()
	if commit != "deadbeef" || date != "2025-02-01" {
		t.Fatalf("Stamp() = %q, %q", commit, date)
	}
}
