// Package version exposes build metadata for the promptlab binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags, e.g.
//
//	go build -ldflags "-X github.com/promptlab/promptlab/version.Version=v0.2.0 \
//	  -X github.com/promptlab/promptlab/version.CommitHash=$(git rev-parse HEAD) \
//	  -X github.com/promptlab/promptlab/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version    = "dev"
	CommitHash = "dev"
	BuildTime  = "unknown"
)

// Info is the resolved build metadata, also served by /api/health.
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get resolves the current build information. When ldflags were not set
// (plain `go build` or `go install`), the commit hash falls back to the
// VCS revision embedded by the toolchain, when available.
func Get() Info {
	return Info{
		CommitHash: resolveCommit(),
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func resolveCommit() string {
	if CommitHash != "dev" {
		return CommitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return CommitHash
}

// String renders a one-line description of the build.
func (i Info) String() string {
	return fmt.Sprintf("promptlab %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}
