package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_STATE_HOME", filepath.Join(tempDir, "state"))
	return tempDir
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Read(NewViper(""))
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultAlgorithm, cfg.Algorithm)
	assert.Equal(t, "canonical", cfg.Display)
	assert.Empty(t, cfg.Exclude)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultConsoleLevel, cfg.Logging.ConsoleLevel)
	assert.Equal(t, filepath.Join(home, "state", "crcsum", "crcsum.log"), cfg.Logging.Path)
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	configDir := filepath.Join(home, ".config", "crcsum")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	configContent := `
workers: 3
algorithm: crc32c
display: local
exclude:
  - "*.tmp"
  - .git
logging:
  level: debug
  path: ~/logs/crcsum.log
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644))

	cfg, err := Read(NewViper(""))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "crc32c", cfg.Algorithm)
	assert.Equal(t, "local", cfg.Display)
	assert.Equal(t, []string{"*.tmp", ".git"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "logs", "crcsum.log"), cfg.Logging.Path)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	dir := filepath.Join(xdgHome, "crcsum")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: 7\n"), 0o644))

	cfg, err := Read(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CRCSUM_WORKERS", "5")
	t.Setenv("CRCSUM_ALGORITHM", "castagnoli")
	t.Setenv("CRCSUM_LOGGING_CONSOLE_LEVEL", "error")
	t.Setenv("CRCSUM_DISPLAY", "local")

	cfg, err := Read(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "castagnoli", cfg.Algorithm)
	assert.Equal(t, "error", cfg.Logging.ConsoleLevel)
	assert.Equal(t, "local", cfg.Display)
}

func TestLoad_FileLoggingDisabled(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  path: \"\"\n"), 0o644))

	cfg, err := Read(NewViper(path))
	require.NoError(t, err)
	assert.Empty(t, cfg.Logging.Path)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("algorithm: crc32\nworkers: 2\n"), 0o644))

	cfg, err := Read(NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative workers", "workers: -1\n"},
		{"unknown algorithm", "algorithm: md5\n"},
		{"unknown display", "display: relative\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad console level", "logging:\n  console_level: loud\n"},
		{"malformed yaml", "workers: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Read(NewViper(path))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Workers = -2
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestStateDir(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, filepath.Join(home, "state", "crcsum"), StateDir())
	assert.Equal(t, filepath.Join(home, "state", "crcsum", "crcsum.log"), DefaultLogPath())
}

func TestWriteDefault(t *testing.T) {
	isolate(t)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	path, err := WriteDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdgHome, "crcsum", "config.yaml"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "algorithm: crc32")
	assert.Contains(t, string(content), "# crcsum configuration")

	// The written file loads back to the defaults.
	cfg, err := Read(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Algorithm, cfg.Algorithm)
	assert.Equal(t, Defaults().Workers, cfg.Workers)

	// A second call leaves an edited file alone.
	require.NoError(t, os.WriteFile(path, []byte("workers: 9\n"), 0o644))
	_, err = WriteDefault()
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "workers: 9\n", string(content))
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := ExpandPath("~/x/y")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestConfigYAML(t *testing.T) {
	out, err := Defaults().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "workers: 0")
	assert.Contains(t, string(out), "console_level: warn")
	assert.Contains(t, string(out), "display: canonical")
}
