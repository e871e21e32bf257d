// Package version reports the tourguide build.
//
// Release builds stamp Version and Commit with ldflags:
//
//	go build -ldflags="-X github.com/muurk/tourguide/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/tourguide/internal/version.Commit=abc1234" ./cmd/tourguide
//
// Anything left unset is filled from the VCS stamp Go embeds in the binary.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// Set with -ldflags -X.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running build.
type Info struct {
	Version  string
	Commit   string
	Modified bool
	Built    time.Time // Commit time from the VCS stamp; zero when unknown
}

var (
	once sync.Once
	info Info
)

// Get returns the build info, resolving it on first use.
func Get() Info {
	once.Do(func() {
		info = resolve(Version, Commit, readSettings())
		Version, Commit = info.Version, info.Commit
	})
	return info
}

func readSettings() map[string]string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	out := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		out[s.Key] = s.Value
	}
	return out
}

// resolve fills whatever ldflags left empty from the vcs.* build settings.
func resolve(version, commit string, settings map[string]string) Info {
	in := Info{Version: version, Commit: commit}
	if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
		in.Built = t
	}
	in.Modified = settings["vcs.modified"] == "true"

	if in.Commit == "" {
		rev := settings["vcs.revision"]
		if len(rev) > 7 {
			rev = rev[:7]
		}
		switch {
		case rev == "":
			in.Commit = "unknown"
		case in.Modified:
			in.Commit = rev + "-dirty"
		default:
			in.Commit = rev
		}
	}

	if in.Version == "" {
		if in.Built.IsZero() {
			in.Version = "dev"
		} else {
			in.Version = "dev-" + in.Built.UTC().Format("20060102")
		}
	}
	return in
}

// Short returns the version alone.
func Short() string { return Get().Version }

// Full returns the version and commit.
func Full() string {
	i := Get()
	return fmt.Sprintf("%s (commit: %s)", i.Version, i.Commit)
}
