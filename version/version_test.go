package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, BuildTime, info.BuildTime)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestResolveCommitPrefersLdflags(t *testing.T) {
	orig := CommitHash
	defer func() { CommitHash = orig }()

	CommitHash = "abc123def456"
	assert.Equal(t, "abc123def456", resolveCommit())
}

func TestString(t *testing.T) {
	info := Info{Version: "v1.2.3", CommitHash: "abc123d", BuildTime: "2026-01-01T00:00:00Z"}
	s := info.String()
	assert.True(t, strings.HasPrefix(s, "promptlab v1.2.3"))
	assert.Contains(t, s, "abc123d")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc123d", Info{CommitHash: "abc123def456"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}
