package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelvu812/mvpaginator/internal/config"
)

// isolate points the global config at an empty temp home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(config.EnvHome, "")
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvPageSize, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFormat, "")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

func TestResolveProjectDir_FlagOverride(t *testing.T) {
	isolate(t)
	flagDir := t.TempDir()

	got := config.ResolveProjectDir(flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".paginator"), got)
	assert.True(t, filepath.IsAbs(got), "returned path must be absolute")
}

func TestResolveProjectDir_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	envDir := t.TempDir()
	flagDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	assert.Equal(t, filepath.Join(flagDir, ".paginator"), config.ResolveProjectDir(flagDir, ""))
	assert.Equal(t, filepath.Join(envDir, ".paginator"), config.ResolveProjectDir("", ""))
}

func TestResolveProjectDir_SuffixNotDoubled(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), ".paginator")

	assert.Equal(t, dir, config.ResolveProjectDir(dir, ""))
}

func TestResolveProjectDir_WalkUp(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	project := filepath.Join(root, ".paginator")
	require.NoError(t, os.MkdirAll(project, 0o755))

	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, project, config.ResolveProjectDir("", deep))
}

func TestResolveProjectDir_IgnoresGlobalDir(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".paginator"), 0o755))

	work := filepath.Join(home, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))

	assert.Empty(t, config.ResolveProjectDir("", work))
}

func TestResolveProjectDir_NoProject(t *testing.T) {
	isolate(t)
	assert.Empty(t, config.ResolveProjectDir("", t.TempDir()))
	assert.Empty(t, config.ResolveProjectDir("", ""))
}

func TestSetResolvedProjectDir_RoundTrip(t *testing.T) {
	config.SetResolvedProjectDir("/some/dir/.paginator")
	t.Cleanup(func() { config.SetResolvedProjectDir("") })
	assert.Equal(t, "/some/dir/.paginator", config.GetResolvedProjectDir())
}

func TestNewWithProjectDir(t *testing.T) {
	home := isolate(t)

	global := filepath.Join(home, ".paginator", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(global), 0o700))
	require.NoError(t, os.WriteFile(global, []byte(`
paging:
  page_size: 20
output:
  format: yaml
`), 0o600))

	project := filepath.Join(t.TempDir(), ".paginator")
	require.NoError(t, os.MkdirAll(project, 0o755))

	t.Run("no overlay", func(t *testing.T) {
		cfg := config.NewWithProjectDir(project)
		assert.Equal(t, 20, cfg.Paging.PageSize)
		assert.Equal(t, "yaml", cfg.Output.Format)
	})

	t.Run("overlay replaces sections", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(project, "config.yaml"), []byte(`
paging:
  page_size: 5
`), 0o600))
		cfg := config.NewWithProjectDir(project)
		assert.Equal(t, 5, cfg.Paging.PageSize)
		assert.Equal(t, "yaml", cfg.Output.Format)
		assert.Equal(t, global, cfg.ConfigPath(), "saves still go to the global file")
	})

	t.Run("env beats overlay", func(t *testing.T) {
		t.Setenv(config.EnvPageSize, "3")
		cfg := config.NewWithProjectDir(project)
		assert.Equal(t, 3, cfg.Paging.PageSize)
	})

	t.Run("corrupt overlay falls back", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(project, "config.yaml"), []byte("paging: [\n"), 0o600))
		cfg := config.NewWithProjectDir(project)
		assert.Equal(t, 20, cfg.Paging.PageSize)
	})

	t.Run("empty dir is global", func(t *testing.T) {
		assert.Equal(t, 20, config.NewWithProjectDir("").Paging.PageSize)
	})
}
