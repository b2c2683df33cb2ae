package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())

	orig := version
	t.Cleanup(func() { version = orig })

	version = "v1.4.0"
	assert.Equal(t, "v1.4.0", GetVersion())
	assert.Contains(t, String(), "paginator v1.4.0")
	assert.Contains(t, String(), runtime.GOOS+"/"+runtime.GOARCH)
}

func TestBuildMetadataDefaults(t *testing.T) {
	assert.Equal(t, "unknown", GetGitCommit())
	assert.Equal(t, "unknown", GetBuildDate())
}
