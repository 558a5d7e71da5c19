package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { SetBuildInfo(origVersion, origCommit, origDate) })
	SetBuildInfo(version, commit, date)
}

func TestGetInfo(t *testing.T) {
	withBuildInfo(t, "1.2.3", "abcdef1234567", "2025-01-01")

	info, err := GetInfo()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Equal(t, uint64(2), info.SemVer.Minor())
}

func TestGetInfo_Invalid(t *testing.T) {
	withBuildInfo(t, "not-a-version", "unknown", "unknown")

	_, err := GetInfo()
	assert.Error(t, err)
	assert.Contains(t, GetDetailedVersion(), "error")
}

func TestGetDetailedVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		contains []string
		excludes []string
	}{
		{
			name:     "release",
			version:  "1.0.0",
			contains: []string{"v1.0.0", "Git Commit: abcdef1", "Build Date: 2025-01-01", "Go Version:"},
			excludes: []string{"Prerelease", "Build Metadata", "Development build"},
		},
		{
			name:     "prerelease with metadata",
			version:  "1.1.0-rc.1+42.deadbee",
			contains: []string{"Prerelease: rc.1", "Build Metadata: 42.deadbee"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, "abcdef1234567", "2025-01-01")
			out := GetDetailedVersion()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.False(t, strings.Contains(out, s), "unexpected %q in %q", s, out)
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	withBuildInfo(t, "1.0.0", "unknown", "2025-01-01")
	assert.True(t, IsDevelopment())
	assert.Contains(t, GetDetailedVersion(), "Development build")

	SetBuildInfo("1.0.0", "abc", "2025-01-01")
	assert.False(t, IsDevelopment())
}
