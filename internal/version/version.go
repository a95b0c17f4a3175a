// Package version reports the tally build.
package version

import (
	"runtime"
	"runtime/debug"
)

// Set at build time via ldflags:
//
//	-X github.com/rnwolfe/tally/internal/version.Version=v0.3.0
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build description served by `tally version --json` and /healthz.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
}

// Get returns the current build info.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
}

// Full returns "version (commit) date".
func Full() string {
	return Version + " (" + Commit + ") " + Date
}

func Short() string {
	return Version
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	backfill(info)
}

// backfill fills Version, Commit and Date from module build info when they
// still hold their ldflags defaults, so `go install` builds report something
// useful. A "(devel)" main version leaves Version as "dev".
func backfill(info *debug.BuildInfo) {
	if info == nil {
		return
	}
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		if s.Value == "" {
			continue
		}
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value[:min(len(s.Value), 7)]
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}
