package app

import (
	"fmt"
	"runtime/debug"
)

// Set via ldflags, e.g.
// -ldflags "-X github.com/heartmarshall/expense-ledger/internal/app.Version=1.4.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion is reported by /health and the startup log. Without ldflags
// the commit falls back to the VCS revision stamped by the toolchain.
func BuildVersion() string {
	return formatVersion(Version, commitOrVCS(Commit), BuildTime)
}

func formatVersion(version, commit, built string) string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, built)
}

func commitOrVCS(commit string) string {
	if commit != "unknown" && commit != "" {
		return commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return "unknown"
}
