package version

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBuildTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T10:00:00Z", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01T10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-05-01 10:00:00", time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"unknown", time.Time{}},
		{"yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(parseBuildTime(tt.in)))
		})
	}
}

func TestBuildInfoFormatting(t *testing.T) {
	b := &BuildInfo{
		Version:   "v1.2.0",
		GitCommit: "0123456789abcdef",
		BuildTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		GoVersion: "go1.24.0",
		Platform:  "linux/amd64",
		Dirty:     true,
	}

	assert.Equal(t, "v1.2.0 (0123456)", b.Short())
	assert.True(t, b.IsRelease())
	assert.Equal(t, strings.Join([]string{
		"Version: v1.2.0",
		"Commit: 0123456789abcdef (dirty)",
		"Built: 2024-05-01T10:00:00Z",
		"Go: go1.24.0",
		"Platform: linux/amd64",
	}, "\n"), b.String())

	dev := &BuildInfo{Version: "dev-0123456", GitCommit: "0123456789", GoVersion: "go", Platform: "p"}
	assert.Equal(t, "dev-0123456", dev.Short())
	assert.False(t, dev.IsRelease())
	assert.NotContains(t, dev.String(), "Built:")
}

func TestGetBuildInfoUsesLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v9.9.9"

	info := GetBuildInfo()
	assert.Equal(t, "v9.9.9", info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
