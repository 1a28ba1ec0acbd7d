package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, found, err := Load(filepath.Join(t.TempDir(), "drifter.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drifter.yaml")
	doc := "seed: -42\nprofile: Caverns\nstore: sqlite\nrender_distance: 6\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(-42), cfg.Seed)
	assert.Equal(t, "Caverns", cfg.Profile)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, 6, cfg.RenderDistance)
	assert.Equal(t, DefaultConfig().KeepDistance, cfg.KeepDistance)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drifter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [1, 2\n"), 0o644))
	_, _, err := Load(path)
	assert.Error(t, err)
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RenderDistance = -1
	cfg.Store = "redis"
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render_distance")
	assert.Contains(t, err.Error(), "redis")
	assert.Contains(t, err.Error(), "log_level")
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		explicit map[string]bool
		wantSeed int64
		wantDist int
	}{
		{"file wins without flags", map[string]bool{}, 7, 9},
		{"flags win when explicit", map[string]bool{"seed": true, "render-distance": true}, 1, 2},
		{"partial", map[string]bool{"seed": true}, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Seed = 1
			cfg.RenderDistance = 2
			file := DefaultConfig()
			file.Seed = 7
			file.RenderDistance = 9
			file.Store = "leveldb"

			Merge(cfg, file, tt.explicit)
			assert.Equal(t, tt.wantSeed, cfg.Seed)
			assert.Equal(t, tt.wantDist, cfg.RenderDistance)
			assert.Equal(t, "leveldb", cfg.Store)
		})
	}
}
