package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvu812/mvpaginator/internal/config"
)

// newDefaultTarget returns a Config with known non-zero values so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		SchemaVersion: "1.0.0",
		Paging:        config.PagingConfig{PageSize: 10, MaxPages: 5},
		Output:        config.OutputConfig{Format: "table"},
		Logging:       config.LoggingConfig{Level: "info", Format: "console"},
		Sources: map[string]config.SourceConfig{
			"existing": {Kind: "in_memory", Path: "existing.json"},
		},
	}
}

// writeOverlay writes YAML content to a temp file and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
output:
  format: json
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "json", target.Output.Format)
	assert.Equal(t, 10, target.Paging.PageSize)
	assert.Contains(t, target.Sources, "existing")
}

func TestShallowMergeYAML_SectionReplacedNotMerged(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
paging:
  page_size: 50
sources:
  remote:
    kind: remote_json
    url: https://example.com/data.json
    items_path: data.items
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, config.PagingConfig{PageSize: 50}, target.Paging, "max_pages absent from overlay resets to zero")
	require.Len(t, target.Sources, 1)
	assert.Equal(t, "data.items", target.Sources["remote"].ItemsPath)
}

func TestShallowMergeYAML_SchemaVersionAndLogging(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
schema_version: 1.4.0
logging:
  level: debug
  format: json
  file: /tmp/p.log
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "1.4.0", target.SchemaVersion)
	assert.Equal(t, config.LoggingConfig{Level: "debug", Format: "json", File: "/tmp/p.log"}, target.Logging)
}

func TestShallowMergeYAML_EmptySourcesSection(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, "sources: {}\n")

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.NotNil(t, target.Sources)
	assert.Empty(t, target.Sources)
}

func TestShallowMergeYAML_EmptyAndCommentOnly(t *testing.T) {
	for _, content := range []string{"", "# nothing here\n"} {
		target := newDefaultTarget()
		require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, content)))
		assert.Equal(t, newDefaultTarget(), target)
	}
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
telemetry:
  enabled: true
output:
  format: yaml
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "yaml", target.Output.Format)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	require.Error(t, config.ShallowMergeYAML(nil, "x"))

	err := config.ShallowMergeYAML(newDefaultTarget(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading overlay file")

	err = config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "output: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing overlay YAML")

	err = config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "paging: notamap\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `applying overlay section "paging"`)
}
