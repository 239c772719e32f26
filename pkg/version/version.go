package version

import (
	"fmt"
	"runtime"
)

// Version information, set via -ldflags at build time where applicable.
const (
	Major = 1
	Minor = 0
	Patch = 0
)

var (
	GitCommit = ""
	BuildDate = ""
)

// Version returns the semantic version string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetBuildInfo returns the binary's build information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a one-line human-readable version string.
func (b BuildInfo) String() string {
	s := "swapkit v" + b.Version
	if len(b.GitCommit) >= 7 {
		s += fmt.Sprintf(" (%s)", b.GitCommit[:7])
	}
	return s
}
