// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set at build time using ldflags.
var (
	// Version is the semantic version (e.g., "0.1.0", "0.1.0-alpha.1").
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build date in RFC3339 format.
	Date = "unknown"
)

// Build describes one binary.
type Build struct {
	Version string
	Commit  string
	Date    string
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		b := Resolve(Build{Version: Version, Commit: Commit, Date: Date}, info)
		Version, Commit, Date = b.Version, b.Commit, b.Date
	}
}

// Resolve fills the values ldflags left at their defaults from the module
// and VCS data of info. A "go install module@version" build only has the
// module version.
func Resolve(b Build, info *debug.BuildInfo) Build {
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if b.Commit == "none" && len(setting.Value) >= 7 {
				b.Commit = setting.Value[:7]
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = setting.Value
			}
		}
	}
	return b
}

// Info returns formatted version information.
func Info() string {
	return fmt.Sprintf("avrobridge version %s (commit: %s, built: %s, go: %s)",
		Version, Commit, Date, runtime.Version())
}

// Short returns just the version string.
func Short() string {
	return Version
}
