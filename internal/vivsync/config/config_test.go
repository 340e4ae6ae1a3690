package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvPortLegacy, "")
	cfg := Default()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultFiletypes, cfg.Filetypes)
	assert.False(t, cfg.InstantRefresh)
	assert.False(t, cfg.AutoScroll)
	assert.False(t, cfg.Debug)
}

func TestValidate_PortPrecedence(t *testing.T) {
	t.Run("explicit port wins", func(t *testing.T) {
		t.Setenv(EnvPort, "9999")
		cfg := &Config{Port: 4242}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 4242, cfg.Port)
	})

	t.Run("env overrides default", func(t *testing.T) {
		t.Setenv(EnvPort, "9999")
		cfg := &Config{}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 9999, cfg.Port)
	})

	t.Run("legacy env honored", func(t *testing.T) {
		t.Setenv(EnvPort, "")
		t.Setenv(EnvPortLegacy, "8888")
		cfg := &Config{}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 8888, cfg.Port)
	})

	t.Run("garbage env falls back to default", func(t *testing.T) {
		t.Setenv(EnvPort, "not-a-port")
		t.Setenv(EnvPortLegacy, "")
		cfg := &Config{}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultPort, cfg.Port)
	})

	t.Run("out of range rejected", func(t *testing.T) {
		cfg := &Config{Port: 70000}
		assert.Error(t, cfg.Validate())
	})
}

func TestValidate_FiletypePatterns(t *testing.T) {
	cfg := &Config{Port: DefaultPort, Filetypes: []string{"markdown", "^pandoc$"}}
	require.NoError(t, cfg.Validate())

	cfg = &Config{Port: DefaultPort, Filetypes: []string{"("}}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "filetype pattern")
}

func TestValidate_EmptyFiletypesGetDefaults(t *testing.T) {
	cfg := &Config{Port: DefaultPort}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultFiletypes, cfg.Filetypes)
}

func TestServerURL(t *testing.T) {
	cfg := &Config{Port: 31622}
	assert.Equal(t, "http://localhost:31622", cfg.ServerURL())
}

func TestBinaryOrDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultBinary, cfg.BinaryOrDefault())

	cfg = &Config{Binary: "/opt/viv/bin/viv"}
	assert.Equal(t, "/opt/viv/bin/viv", cfg.BinaryOrDefault())
}

func TestSaveAndLoad_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.json")

	cfg := &Config{
		Port:           4242,
		Binary:         filepath.Join(tmp, "viv"),
		InstantRefresh: true,
		AutoScroll:     true,
		Filetypes:      []string{"markdown", "vimwiki"},
		Debug:          true,
		Path:           path,
	}

	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Save())

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Port, loaded.Port)
	assert.Equal(t, cfg.Binary, loaded.Binary)
	assert.Equal(t, cfg.InstantRefresh, loaded.InstantRefresh)
	assert.Equal(t, cfg.AutoScroll, loaded.AutoScroll)
	assert.Equal(t, cfg.Filetypes, loaded.Filetypes)
	assert.Equal(t, cfg.Debug, loaded.Debug)
	assert.Equal(t, path, loaded.Path)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.json")

	require.NoError(t, writeFile(path, `{"port": -1}`))
	_, err := LoadFromFile(path)
	assert.Error(t, err)

	require.NoError(t, writeFile(path, `not json`))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
