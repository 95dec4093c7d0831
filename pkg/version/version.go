// Package version reports the entropy build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/entropy/pkg/version.Version=v1.2.3"
var Version = "v0.1.0"

// Commit is the VCS revision, filled from build info when not set by ldflags.
var Commit = ""

// Info is the version report printed by `entropy version`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get collects the version report.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					info.Commit = s.Value[:7]
				}
			}
		}
	}
	return info
}

func (i Info) String() string {
	if i.Commit == "" {
		return fmt.Sprintf("entropy %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
	}
	return fmt.Sprintf("entropy %s+%s (%s, %s)", i.Version, i.Commit, i.GoVersion, i.Platform)
}
