// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

import "fmt"

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/mapgpt/mapgpt-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/mapgpt/mapgpt-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/mapgpt/mapgpt-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// String renders the build metadata for --version output and startup logs.
func String() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if Commit == "" {
		return version
	}
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if BuildDate == "" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", version, commit, BuildDate)
}
