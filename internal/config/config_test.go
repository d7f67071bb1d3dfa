package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	assert.False(t, info.FileFound)
	assert.False(t, info.PortSpecified)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 8080

[matching]
threshold = 0.8

[generation]
strict = true
`), 0644))

	cfg, info, err := Load(path)
	require.NoError(t, err)

	assert.True(t, info.PortSpecified)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.8, cfg.Matching.Threshold)
	assert.True(t, cfg.Matching.FuzzyEnabled, "unspecified keys keep defaults")
	assert.True(t, cfg.Generation.Strict)
	assert.True(t, cfg.Generation.RemapMatched)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9001")
	t.Setenv(EnvDataDir, "/srv/taoda")
	t.Setenv(EnvLogLevel, "debug")

	cfg, info, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "/srv/taoda", cfg.Data.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0644))
	_, _, err := Load(path)
	assert.Error(t, err)

	t.Setenv(EnvPort, "abc")
	_, _, err = Load(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Generation.UniqueNames = true

	require.NoError(t, SaveConfig(cfg, path))

	loaded, info, err := Load(path)
	require.NoError(t, err)
	assert.True(t, info.FileFound)
	assert.Equal(t, cfg, loaded)
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.DataDir, dir)
	assert.DirExists(t, filepath.Join(dir, UploadsDir))
	assert.DirExists(t, filepath.Join(dir, OutputsDir))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TAODA_TEST_DOTENV=from-file\n"), 0644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("TAODA_TEST_DOTENV", "")
	os.Unsetenv("TAODA_TEST_DOTENV")

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "from-file", os.Getenv("TAODA_TEST_DOTENV"))
}
