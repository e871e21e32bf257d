package version

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		settings    map[string]string
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "ldflags win",
			version:     "v0.3.0",
			commit:      "abc1234",
			settings:    map[string]string{"vcs.revision": "ffffffffffff"},
			wantVersion: "v0.3.0",
			wantCommit:  "abc1234",
		},
		{
			name: "vcs stamp",
			settings: map[string]string{
				"vcs.revision": "0123456789abcdef",
				"vcs.time":     "2026-03-04T10:00:00Z",
			},
			wantVersion: "dev-20260304",
			wantCommit:  "0123456",
		},
		{
			name:        "dirty tree",
			settings:    map[string]string{"vcs.revision": "0123456789abcdef", "vcs.modified": "true"},
			wantVersion: "dev",
			wantCommit:  "0123456-dirty",
		},
		{
			name:        "no build info",
			wantVersion: "dev",
			wantCommit:  "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.settings)
			if got.Version != tt.wantVersion {
				t.Errorf("resolve().Version = %q, want %q", got.Version, tt.wantVersion)
			}
			if got.Commit != tt.wantCommit {
				t.Errorf("resolve().Commit = %q, want %q", got.Commit, tt.wantCommit)
			}
		})
	}
}

func TestFull(t *testing.T) {
	if got := Full(); !strings.Contains(got, "(commit: ") {
		t.Errorf("Full() = %q, want commit suffix", got)
	}
	if Short() == "" {
		t.Error("Short() is empty")
	}
}
