// Package version reports build information injected with -ldflags:
//
//	go build -ldflags "-X github.com/i2y/bridle/internal/version.Version=v0.3.0 \
//	    -X github.com/i2y/bridle/internal/version.gitCommit=$(git rev-parse HEAD) \
//	    -X github.com/i2y/bridle/internal/version.buildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/gosuri/uitable"
)

var (
	// Version is the semantic version, vMAJOR.MINOR.PATCH[-PRERELEASE].
	Version = "v0.0.0-dev"

	gitCommit = ""
	buildDate = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit,omitempty"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// Get returns the build information. A commit missing from ldflags is taken
// from the embedded VCS stamp when present.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: gitCommit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if info.GitCommit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.GitCommit = s.Value
				}
			}
		}
	}
	return info
}

// String returns the version.
func (i Info) String() string {
	return i.Version
}

// JSON returns the indented JSON encoding.
func (i Info) JSON() (string, error) {
	b, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}
	return string(b), nil
}

// Text renders the information as an aligned table.
func (i Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.MaxColWidth = 80
	table.Separator = " "
	table.AddRow("version:", i.Version)
	if i.GitCommit != "" {
		table.AddRow("gitCommit:", i.GitCommit)
	}
	if i.BuildDate != "" {
		table.AddRow("buildDate:", i.BuildDate)
	}
	table.AddRow("goVersion:", i.GoVersion)
	table.AddRow("platform:", i.Platform)
	return table.String()
}
