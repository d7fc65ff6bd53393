package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	prev := configDirOverride
	configDirOverride = dir
	t.Cleanup(func() { configDirOverride = prev })
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 200, cfg.Search.DebounceMs)
	assert.True(t, cfg.Search.MatchKey)
	assert.True(t, cfg.Search.MatchValue)
	assert.Equal(t, "substring", cfg.Search.Mode)
	assert.True(t, cfg.Selection.AutoSelectChildren)
	assert.Equal(t, 100, cfg.View.BatchThreshold)
	assert.Equal(t, 50, cfg.View.BatchSize)
	assert.Equal(t, "treepick_export.json", cfg.Export.FileName)
	assert.Equal(t, 2, cfg.Export.Indent)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("search:\n  debounce_ms: 150\nselection:\n  auto_select_children: false\n"), 0o600))

	cfg, path, err := Load(LoadOptions{SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), path)
	assert.Equal(t, 150, cfg.Search.DebounceMs)
	assert.False(t, cfg.Selection.AutoSelectChildren)
	// untouched keys keep their defaults
	assert.True(t, cfg.Search.MatchKey)
}

func TestMissingUserConfigIsFine(t *testing.T) {
	withConfigDir(t, t.TempDir())
	cfg, path, err := Load(LoadOptions{SkipEnv: true})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, 200, cfg.Search.DebounceMs)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	_, _, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	withConfigDir(t, t.TempDir())
	t.Setenv("TREEPICK_SEARCH_DEBOUNCE_MS", "120")
	t.Setenv("TREEPICK_EXPORT_FILE_NAME", "picked.json")

	cfg, _, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Search.DebounceMs)
	assert.Equal(t, "picked.json", cfg.Export.FileName)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"debounce too short", func(c *Config) { c.Search.DebounceMs = 50 }, "DebounceMs"},
		{"debounce too long", func(c *Config) { c.Search.DebounceMs = 400 }, "DebounceMs"},
		{"unknown mode", func(c *Config) { c.Search.Mode = "regex" }, "Mode"},
		{"batch larger than threshold", func(c *Config) { c.View.BatchSize = 500 }, "BatchSize"},
		{"empty file name", func(c *Config) { c.Export.FileName = "" }, "FileName"},
		{"bad addr", func(c *Config) { c.Server.Addr = "nowhere" }, "Addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestInvalidFileIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  debounce_ms: 5\n"), 0o600))
	_, _, err := Load(LoadOptions{ConfigFile: path, SkipEnv: true})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	out, err := cfg.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg, back)
}
