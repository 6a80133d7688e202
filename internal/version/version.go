// Package version holds build metadata for the disambig CLI.
package version

import (
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
)

// These can be overridden at build time via -ldflags "-X".
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component in its own color.
// Colors follow fatih/color's global NoColor switch.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Stamp returns the commit and build date. Values set with -ldflags win;
// otherwise the VCS stamp the go command embeds is used.
func Stamp() (commit, date string) {
	commit, date = strings.TrimSpace(GitCommit), strings.TrimSpace(BuildDate)
	if commit != "" {
		return commit, date
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", date
	}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			commit = kv.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.time":
			if date == "" {
				date = kv.Value
			}
		}
	}
	return commit, date
}

// Line is the one-line description printed by "disambig version".
func Line() string {
	var sb strings.Builder
	sb.WriteString("disambig ")
	sb.WriteString(Colored())
	if commit, date := Stamp(); commit != "" {
		sb.WriteString(" (" + commit)
		if date != "" {
			sb.WriteString(", " + date)
		}
		sb.WriteString(")")
	}
	return sb.String()
}
