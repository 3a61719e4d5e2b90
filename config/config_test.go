package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fraycore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
seed: 42
encounter: wolf_pack
save_dir: saves
log_file: fray.log
log_level: debug
plain: true
trace: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Seed:      42,
		Encounter: "wolf_pack",
		SaveDir:   "saves",
		LogFile:   "fray.log",
		LogLevel:  "debug",
		Plain:     true,
		Trace:     true,
	}, cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "encounter: rat_nest\n"))
	require.NoError(t, err)
	assert.Equal(t, "rat_nest", cfg.Encounter)
	assert.Equal(t, ".", cfg.SaveDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "sede: 3\n"},
		{"bad type", "seed: lots\n"},
		{"negative seed", "seed: -1\n"},
		{"not yaml", "seed: [1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBattleSeed(t *testing.T) {
	now := func() time.Time { return time.Unix(0, 12345) }

	assert.Equal(t, int64(7), Config{Seed: 7}.BattleSeed(now))
	assert.Equal(t, int64(12345), Config{}.BattleSeed(now))
}
