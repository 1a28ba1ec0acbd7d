package host

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/config"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/storage"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.RenderDistance = 1
	cfg.KeepDistance = 2
	cfg.Steps = 40
	cfg.Speed = 8
	cfg.DigEvery = 4
	cfg.Preview = 32
	return cfg
}

func TestRunWalksAndPreviews(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = string(storage.BackendMemory)

	h, err := New(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer h.Close()

	var out bytes.Buffer
	require.NoError(t, h.Run(context.Background(), &out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, gen.ChunkHeight)
	assert.Len(t, lines[0], 32)

	st := h.Manager().Stats()
	assert.Positive(t, st.Evicted)
	assert.LessOrEqual(t, st.Resident, 2*cfg.KeepDistance+2)
}

func TestRunPersistsDigsAcrossRestarts(t *testing.T) {
	for _, backend := range []storage.Backend{storage.BackendFile, storage.BackendSQLite, storage.BackendLevelDB} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store = string(backend)
			cfg.Preview = 0

			h, err := New(context.Background(), cfg, discardLogger())
			require.NoError(t, err)
			require.NoError(t, h.Run(context.Background(), nil))
			id := h.Meta().ID
			require.Positive(t, h.Manager().Stats().Persisted)
			require.NoError(t, h.Close())

			h2, err := New(context.Background(), cfg, discardLogger())
			require.NoError(t, err)
			defer h2.Close()
			assert.Equal(t, id, h2.Meta().ID)

			// The first dig happened at StartX on step 0.
			fresh := h2.Manager().Generator().Baseline(0)
			restored, err := h2.Manager().Chunk(context.Background(), 0)
			require.NoError(t, err)
			assert.NotEqual(t, fresh.Tiles(), restored.Tiles())
			assert.Positive(t, h2.Manager().Stats().Restored)
		})
	}
}

func TestNewRejectsMismatchedWorld(t *testing.T) {
	cfg := testConfig(t)
	h, err := New(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	require.NoError(t, h.Close())

	cfg.Seed++
	_, err = New(context.Background(), cfg, discardLogger())
	assert.ErrorIs(t, err, storage.ErrWorldMismatch)
}

func TestResolveProfile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Profile = "amplified"
	cfg.Seed = 5
	cfg.Noise = "perlin"
	p, err := ResolveProfile(cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "Amplified", p.Name)
	assert.Equal(t, int64(5), p.Seed)
	assert.Equal(t, gen.NoisePerlin, p.Noise)

	path := filepath.Join(t.TempDir(), "set.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: Dunes\n    base: Barren\n    water_level: 0\n"), 0o644))
	cfg = config.DefaultConfig()
	cfg.ProfileFile = path
	cfg.Profile = "Dunes"
	p, err = ResolveProfile(cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "Dunes", p.Name)
	assert.Equal(t, 0.0, p.WaterLevel)

	cfg.Profile = "Volcanic"
	cfg.Seed = 11
	var logs bytes.Buffer
	p, err = ResolveProfile(cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Equal(t, gen.DefaultPreset, p.Name)
	assert.Equal(t, int64(11), p.Seed)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "Volcanic")

	cfg.ProfileFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = ResolveProfile(cfg, discardLogger())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = string(storage.BackendMemory)
	cfg.Steps = 1000

	h, err := New(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	require.NoError(t, h.Run(ctx, &out))
	assert.NotEmpty(t, out.String())
	assert.Equal(t, int64(0), h.Manager().Stats().Evicted)
}
