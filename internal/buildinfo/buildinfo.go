package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Short returns a compact build identifier for the window title and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return shortCommit(Commit)
	}
	if rev := vcsRevision(); rev != "" {
		return shortCommit(rev)
	}
	return "dev"
}

// String is the full line printed by --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, shortCommit(Commit), Date)
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}

// vcsRevision falls back to the revision stamped by `go build` when no
// ldflags were given.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
