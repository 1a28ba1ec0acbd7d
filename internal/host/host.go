// Package host runs a headless world: it resolves the profile, opens the
// diff store, and walks a player across the world driving the chunk
// manager.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/config"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/profiles"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/storage"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/world"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

// Host owns the world of one run.
type Host struct {
	cfg     *config.Config
	log     *slog.Logger
	meta    storage.WorldMeta
	store   storage.DiffStore
	manager *world.Manager
}

// New resolves the profile and opens the world described by cfg.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	p, err := ResolveProfile(cfg, log)
	if err != nil {
		return nil, err
	}

	backend, _ := storage.ParseBackend(cfg.Store)
	store, meta, err := storage.Open(ctx, backend, cfg.DataDir, storage.NewWorldMeta(p), log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}

	m := world.NewManager(gen.NewGenerator(p), store, world.Options{
		RenderDistance: cfg.RenderDistance,
		KeepDistance:   cfg.KeepDistance,
		MaxResident:    cfg.MaxResident,
		Workers:        cfg.Workers,
	}, log)

	return &Host{cfg: cfg, log: log, meta: meta, store: store, manager: m}, nil
}

// ResolveProfile picks the generation profile for cfg: the named profile
// from ProfileFile or a built-in preset, with the seed and noise override
// applied. A name found in neither falls back to the default preset with
// a warning; a profile file that fails to load is an error.
func ResolveProfile(cfg *config.Config, log *slog.Logger) (gen.Profile, error) {
	var set *profiles.Set
	if cfg.ProfileFile != "" {
		s, err := profiles.Load(cfg.ProfileFile)
		if err != nil {
			return gen.Profile{}, err
		}
		set = s
	}
	p, err := profiles.Resolve(set, cfg.Profile, cfg.Seed)
	if errors.Is(err, profiles.ErrUnknownPreset) {
		log.Warn("unknown profile, using default", "profile", cfg.Profile, "default", gen.DefaultPreset)
		p, err = gen.ProfileByName(gen.DefaultPreset, cfg.Seed), nil
	}
	if err != nil {
		return gen.Profile{}, err
	}
	if cfg.Noise != "" {
		p.Noise = gen.ParseNoiseBackend(cfg.Noise)
	}
	return gen.CustomProfile(p), nil
}

// Manager returns the host's chunk manager.
func (h *Host) Manager() *world.Manager { return h.manager }

// Meta returns the metadata of the open world.
func (h *Host) Meta() storage.WorldMeta { return h.meta }

// Run walks the player Steps times, then flushes edits and writes a
// preview of the final surroundings to out. Save failures during the walk
// are logged; the chunks stay resident and are retried by later steps and
// the final flush. A cancelled context stops the walk early but still
// flushes.
func (h *Host) Run(ctx context.Context, out io.Writer) error {
	p := h.manager.Generator().Profile()
	h.log.Info("world started",
		"id", h.meta.ID,
		"seed", p.Seed,
		"profile", p.Name,
		"noise", p.Noise,
		"store", h.cfg.Store,
		"renderDistance", h.manager.Options().RenderDistance,
	)

	x := h.cfg.StartX
	for step := 0; step < h.cfg.Steps; step++ {
		if ctx.Err() != nil {
			h.log.Info("walk interrupted", "step", step)
			break
		}
		if err := h.manager.Update(ctx, x); err != nil {
			if ctx.Err() != nil {
				break
			}
			h.log.Error("update world", "x", x, "error", err)
		}
		if h.cfg.DigEvery > 0 && step%h.cfg.DigEvery == 0 {
			if err := h.dig(ctx, x); err != nil {
				h.log.Error("dig", "x", x, "error", err)
			}
		}
		x += h.cfg.Speed
	}

	// Flush with a fresh context so an interrupt never drops edits.
	flushErr := h.manager.Flush(context.WithoutCancel(ctx))

	st := h.manager.Stats()
	h.log.Info("world stopped",
		"x", x,
		"resident", st.Resident,
		"generated", st.Generated,
		"restored", st.Restored,
		"evicted", st.Evicted,
		"persisted", st.Persisted,
	)

	if h.cfg.Preview > 0 && out != nil {
		from := x - h.cfg.Preview/2
		view, err := h.manager.Preview(context.WithoutCancel(ctx), from, from+h.cfg.Preview-1)
		if err != nil {
			return errors.Join(flushErr, err)
		}
		if _, err := io.WriteString(out, view); err != nil {
			return errors.Join(flushErr, fmt.Errorf("write preview: %w", err))
		}
	}
	if flushErr != nil {
		return fmt.Errorf("flush: %w", flushErr)
	}
	return nil
}

// dig mines the first solid tile under the player.
func (h *Host) dig(ctx context.Context, x int) error {
	row, err := h.manager.SpawnRow(ctx, x)
	if err != nil {
		return err
	}
	for y := row + 1; y < gen.BedrockRow; y++ {
		t, err := h.manager.GetTile(ctx, x, y)
		if err != nil {
			return err
		}
		if !t.IsSolid() {
			continue
		}
		if err := h.manager.SetTile(ctx, x, y, gen.TileAir); err != nil {
			return err
		}
		h.log.Debug("dug tile", "x", x, "y", y, "tile", t)
		return nil
	}
	return nil
}

// Close releases the store.
func (h *Host) Close() error {
	return h.store.Close()
}
