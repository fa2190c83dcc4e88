package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	str := info.String()
	assert.Contains(t, str, "tidyframe ")
	assert.Contains(t, str, "Go Version:")
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.2.0",
		BuildDate: "2026-01-01T00:00:00Z",
		GitCommit: "abc123def456-dirty",
		GoVersion: "go1.24.4",
		Dirty:     true,
		Deps: []Module{
			{Path: "github.com/stretchr/testify", Version: "v1.10.0"},
			{Path: ArrowModule, Version: "v18.3.1"},
		},
	}

	str := info.String()
	assert.Contains(t, str, "tidyframe v1.2.0 (dirty)")
	assert.Contains(t, str, "Build Date: 2026-01-01T00:00:00Z")
	assert.Contains(t, str, "Git Commit: abc123d")
	assert.Contains(t, str, "Go Version: go1.24.4")
	assert.Contains(t, str, "Arrow: v18.3.1")
}

func TestBuildInfoStringMinimal(t *testing.T) {
	str := BuildInfo{Version: "dev", BuildDate: unknownValue, GitCommit: unknownValue, GoVersion: "go1.24.4"}.String()
	assert.NotContains(t, str, "Build Date")
	assert.NotContains(t, str, "Git Commit")
	assert.NotContains(t, str, "Arrow")
}

func TestDependency(t *testing.T) {
	info := BuildInfo{Deps: []Module{{Path: "a", Version: "v1"}}}

	v, ok := info.Dependency("a")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	_, ok = info.Dependency("b")
	assert.False(t, ok)
}

func TestIsRelease(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	tests := []struct {
		version string
		want    bool
	}{
		{"dev", false},
		{"v1.0.0", true},
		{"v1.0.0-rc.1", false},
	}
	for _, tt := range tests {
		Version = tt.version
		assert.Equal(t, tt.want, IsRelease(), tt.version)
	}
}
