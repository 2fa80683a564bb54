// Package version reports build information for the scrub binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
)

// Set by ldflags.
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string   `json:"version"`
	BuildDate string   `json:"build_date"`
	GitCommit string   `json:"git_commit"`
	GoVersion string   `json:"go_version"`
	Platform  string   `json:"platform"`
	Dirty     bool     `json:"dirty"`
	Module    string   `json:"module,omitempty"`
	Deps      []Module `json:"deps,omitempty"`
}

// Module is a dependency compiled into the binary.
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Info collects the ldflags values and the module build info. VCS settings
// fill the commit when ldflags did not.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Dirty:     strings.HasSuffix(GitCommit, "-dirty"),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Module = bi.Main.Path
	for _, dep := range bi.Deps {
		info.Deps = append(info.Deps, Module{Path: dep.Path, Version: dep.Version})
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == unknownValue {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.Dirty = info.Dirty || s.Value == "true"
		case "vcs.time":
			if info.BuildDate == unknownValue {
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

// String renders the information for `scrub version`.
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scrub %s", b.Version)
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.GitCommit != unknownValue {
		commit := b.GitCommit
		if len(commit) > commitHashLength {
			commit = commit[:commitHashLength]
		}
		fmt.Fprintf(&sb, "commit: %s\n", commit)
	}
	if b.BuildDate != unknownValue {
		fmt.Fprintf(&sb, "built: %s\n", b.BuildDate)
	}
	fmt.Fprintf(&sb, "go: %s %s\n", b.GoVersion, b.Platform)
	return sb.String()
}

// IsRelease reports whether Version is a tagged release rather than a
// development or pre-release build.
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-")
}
