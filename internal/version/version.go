/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package version provides version information for the rechunk CLI.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"     // Version string (e.g., "v0.3.0")
	GitCommit = "unknown" // Git commit hash
	GitTag    = "unknown" // Git tag
	BuildTime = "unknown" // Build timestamp
	GitDirty  = ""        // "dirty" if working directory has uncommitted changes
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the version string for the application.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := readBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	if GitTag != "unknown" && GitCommit != "unknown" {
		version := GitTag
		if commit := shortCommit(GitCommit); commit != "" && !strings.HasSuffix(GitTag, commit) {
			version = fmt.Sprintf("%s-%s", GitTag, commit)
		}
		if GitDirty == "dirty" {
			version += "-dirty"
		}
		return version
	}

	return "dev"
}

// GetFullVersion returns the version with the commit it was built from, if
// known.
func GetFullVersion() string {
	version := GetVersion()
	if commit := commit(); commit != "" {
		return fmt.Sprintf("%s (commit: %s)", version, shortCommit(commit))
	}
	return version
}

// GetBuildInfo returns detailed build information.
func GetBuildInfo() map[string]string {
	info := map[string]string{
		"version":   GetVersion(),
		"gitCommit": GitCommit,
		"gitTag":    GitTag,
		"buildTime": BuildTime,
		"gitDirty":  GitDirty,
	}
	if bi, ok := readBuildInfo(); ok {
		info["goVersion"] = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if GitCommit == "unknown" {
					info["gitCommit"] = s.Value
				}
			case "vcs.time":
				if BuildTime == "unknown" {
					info["buildTime"] = s.Value
				}
			case "vcs.modified":
				if GitDirty == "" && s.Value == "true" {
					info["gitDirty"] = "dirty"
				}
			}
		}
	}
	return info
}

// commit returns the ldflags commit, or the VCS revision stamped by the Go
// toolchain.
func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return ""
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
