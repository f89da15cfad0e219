package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(new(discard))
	return fs
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestParseConfigDefaults(t *testing.T) {
	c, version, err := parseConfig(newFlagSet(), nil)
	require.NoError(t, err)
	assert.False(t, version)
	assert.Equal(t, defaultConfig(), *c)
	assert.Equal(t, 5*time.Second, time.Duration(c.Cooldown))
}

func TestParseConfigFlags(t *testing.T) {
	c, _, err := parseConfig(newFlagSet(), []string{"-target-fps", "30", "-cooldown", "2s", "-quality", "low", "-optimize=false"})
	require.NoError(t, err)
	assert.Equal(t, 30.0, c.TargetFPS)
	assert.Equal(t, 2*time.Second, time.Duration(c.Cooldown))
	assert.Equal(t, "low", c.Quality)
	assert.False(t, c.Optimize)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadercube.toml")
	data := `
shader = "fragment_blur"
target_fps = 120.0
threshold = 20
cooldown = "10s"
hud_interval = "0s"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, _, err := parseConfig(newFlagSet(), []string{"-config", path, "-threshold", "5"})
	require.NoError(t, err)
	assert.Equal(t, "fragment_blur", c.Shader)
	assert.Equal(t, 120.0, c.TargetFPS)
	assert.Equal(t, 5, c.Threshold) // Flags win over the file.
	assert.Equal(t, 10*time.Second, time.Duration(c.Cooldown))
	assert.Zero(t, c.HUDInterval)
	assert.True(t, c.VSync)
}

func TestParseConfigErrors(t *testing.T) {
	_, _, err := parseConfig(newFlagSet(), []string{"-quality", "ultra"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("nope = 1\n"), 0644))
	_, _, err = parseConfig(newFlagSet(), []string{"-config", path})
	assert.Error(t, err)

	_, _, err = parseConfig(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestParseConfigVersion(t *testing.T) {
	_, version, err := parseConfig(newFlagSet(), []string{"-version"})
	require.NoError(t, err)
	assert.True(t, version)
}
