package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paveg/scrub/internal/version"
)

func setVersion(t *testing.T, v, date, commit string) {
	t.Helper()
	oldV, oldD, oldC := version.Version, version.BuildDate, version.GitCommit
	version.Version, version.BuildDate, version.GitCommit = v, date, commit
	t.Cleanup(func() {
		version.Version, version.BuildDate, version.GitCommit = oldV, oldD, oldC
	})
}

func TestInfo(t *testing.T) {
	setVersion(t, "1.2.3", "2025-01-01T00:00:00Z", "abcdef1234567")

	info := version.Info()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "2025-01-01T00:00:00Z", info.BuildDate)
	assert.Equal(t, "abcdef1234567", info.GitCommit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestBuildInfoString(t *testing.T) {
	tests := []struct {
		name     string
		info     version.BuildInfo
		contains []string
		excludes []string
	}{
		{
			name:     "release",
			info:     version.BuildInfo{Version: "1.0.0", BuildDate: "2025-01-01", GitCommit: "abcdef1234567", GoVersion: "go1.24", Platform: "linux/amd64"},
			contains: []string{"scrub 1.0.0\n", "commit: abcdef1\n", "built: 2025-01-01\n", "go: go1.24 linux/amd64"},
			excludes: []string{"dirty"},
		},
		{
			name:     "dirty dev build",
			info:     version.BuildInfo{Version: "dev", BuildDate: "unknown", GitCommit: "unknown", Dirty: true},
			contains: []string{"scrub dev (dirty)"},
			excludes: []string{"commit:", "built:"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.info.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestIsRelease(t *testing.T) {
	for v, want := range map[string]bool{
		"dev":          false,
		"1.0.0":        true,
		"v2.1.0":       true,
		"1.0.0-rc.1":   false,
		"1.0.0-beta.2": false,
	} {
		t.Run(v, func(t *testing.T) {
			setVersion(t, v, "unknown", "unknown")
			assert.Equal(t, want, version.IsRelease())
		})
	}
}

func TestDirtyCommit(t *testing.T) {
	setVersion(t, "1.0.0", "unknown", "abc1234-dirty")
	assert.True(t, version.Info().Dirty)
}
