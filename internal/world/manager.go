// Package world owns the resident set of chunks around the player.
//
// A Manager generates chunks on demand, serves tile reads and edits, and
// streams chunks in and out as the player moves. Edited chunks are handed
// to a storage.DiffStore before they leave memory.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/storage"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

// Options controls streaming around the player.
type Options struct {
	// RenderDistance is how many chunks either side of the player are kept loaded.
	RenderDistance int
	// KeepDistance is the distance beyond which chunks are evicted. It is
	// raised to RenderDistance when smaller.
	KeepDistance int
	// MaxResident caps the resident set; 0 means no cap. The cap never
	// drops below the render window.
	MaxResident int
	// Workers bounds concurrent generation during Update.
	Workers int
}

// DefaultOptions matches the defaults of the drifter command.
func DefaultOptions() Options {
	return Options{RenderDistance: 3, KeepDistance: 5, MaxResident: 0, Workers: runtime.GOMAXPROCS(0)}
}

func (o Options) normalized() Options {
	if o.RenderDistance < 0 {
		o.RenderDistance = 0
	}
	if o.KeepDistance < o.RenderDistance {
		o.KeepDistance = o.RenderDistance
	}
	if window := 2*o.RenderDistance + 1; o.MaxResident > 0 && o.MaxResident < window {
		o.MaxResident = window
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// entry is a resident chunk plus a counter of edits, used to detect
// writes that raced with a save.
type entry struct {
	chunk *gen.Chunk
	edits uint64
}

// Stats is a snapshot of manager counters.
type Stats struct {
	Resident  int
	Generated int64
	Restored  int64
	Evicted   int64
	Persisted int64
}

// Manager caches chunks by index. All methods are safe for concurrent use.
type Manager struct {
	gen   *gen.Generator
	store storage.DiffStore
	opts  Options
	log   *slog.Logger

	mu     sync.RWMutex
	chunks map[int]*entry
	flight singleflight.Group

	generated atomic.Int64
	restored  atomic.Int64
	evicted   atomic.Int64
	persisted atomic.Int64
}

// NewManager creates a manager. store may be nil, in which case edited
// chunks are never evicted.
func NewManager(g *gen.Generator, store storage.DiffStore, opts Options, log *slog.Logger) *Manager {
	return &Manager{
		gen:    g,
		store:  store,
		opts:   opts.normalized(),
		log:    log,
		chunks: make(map[int]*entry),
	}
}

// Generator returns the generator the manager builds chunks with.
func (m *Manager) Generator() *gen.Generator { return m.gen }

// Options returns the effective (normalized) options.
func (m *Manager) Options() Options { return m.opts }

// Chunk returns a snapshot of the chunk at index, generating it and
// replaying its stored diff if needed. Concurrent callers for the same
// index share a single generation. The snapshot is the caller's own copy:
// later edits through the manager do not show up in it, and changing it
// does not touch the world.
func (m *Manager) Chunk(ctx context.Context, index int) (*gen.Chunk, error) {
	e, err := m.entryFor(ctx, index)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return e.chunk.Clone(), nil
}

func (m *Manager) entryFor(ctx context.Context, index int) (*entry, error) {
	m.mu.RLock()
	if e, ok := m.chunks[index]; ok {
		m.mu.RUnlock()
		return e, nil
	}
	m.mu.RUnlock()

	v, err, _ := m.flight.Do(strconv.Itoa(index), func() (any, error) {
		// Double-check: a previous flight may have inserted it.
		m.mu.RLock()
		if e, ok := m.chunks[index]; ok {
			m.mu.RUnlock()
			return e, nil
		}
		m.mu.RUnlock()

		c, err := m.load(ctx, index)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.chunks[index]; ok {
			return existing, nil
		}
		e := &entry{chunk: c}
		m.chunks[index] = e
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// load generates a chunk and replays its stored diff.
func (m *Manager) load(ctx context.Context, index int) (*gen.Chunk, error) {
	start := time.Now()
	c := m.gen.Baseline(index)
	m.generated.Add(1)

	if m.store == nil {
		m.log.Debug("generated chunk", "index", index, "duration", time.Since(start))
		return c, nil
	}
	d, ok, err := m.store.Load(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("load chunk %d: %w", index, err)
	}
	if ok {
		n := d.Apply(c)
		m.restored.Add(1)
		m.log.Debug("restored chunk", "index", index, "edits", n, "duration", time.Since(start))
		return c, nil
	}
	m.log.Debug("generated chunk", "index", index, "duration", time.Since(start))
	return c, nil
}

// GetTile returns the tile at world (x, y). Rows outside the world read as air.
func (m *Manager) GetTile(ctx context.Context, x, y int) (gen.Tile, error) {
	if y < 0 || y >= gen.ChunkHeight {
		return gen.TileAir, nil
	}
	e, err := m.entryFor(ctx, ChunkOf(x))
	if err != nil {
		return gen.TileAir, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return e.chunk.Tile(LocalOf(x), y), nil
}

// SetTile writes the tile at world (x, y). Writes at or below the bedrock
// row or above the world are ignored.
func (m *Manager) SetTile(ctx context.Context, x, y int, t gen.Tile) error {
	if y < 0 || y >= gen.BedrockRow {
		return nil
	}
	if !t.Valid() {
		return fmt.Errorf("set tile at (%d, %d): invalid tile %d", x, y, uint8(t))
	}
	return m.edit(ctx, x, func(c *gen.Chunk) bool {
		return c.SetTile(LocalOf(x), y, t)
	})
}

// GetVegetation returns the overlay of world column x and whether one is set.
func (m *Manager) GetVegetation(ctx context.Context, x int) (gen.Tile, bool, error) {
	e, err := m.entryFor(ctx, ChunkOf(x))
	if err != nil {
		return gen.TileAir, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := e.chunk.Vegetation(LocalOf(x))
	return v, ok, nil
}

// SetVegetation sets or, with TileAir, clears the overlay of column x.
func (m *Manager) SetVegetation(ctx context.Context, x int, t gen.Tile) error {
	if t != gen.TileAir && !t.IsVegetation() {
		return fmt.Errorf("set vegetation at %d: %s is not vegetation", x, t)
	}
	return m.edit(ctx, x, func(c *gen.Chunk) bool {
		return c.SetVegetation(LocalOf(x), t)
	})
}

// edit applies fn to the chunk of column x under the write lock. If the
// chunk is evicted between lookup and lock, the lookup is retried so the
// edit never lands on a detached chunk.
func (m *Manager) edit(ctx context.Context, x int, fn func(*gen.Chunk) bool) error {
	index := ChunkOf(x)
	for {
		e, err := m.entryFor(ctx, index)
		if err != nil {
			return err
		}
		m.mu.Lock()
		if m.chunks[index] != e {
			m.mu.Unlock()
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		if fn(e.chunk) {
			e.edits++
		}
		m.mu.Unlock()
		return nil
	}
}

// SpawnRow returns the row a player standing on column x occupies: the
// air cell directly above the first non-air tile.
func (m *Manager) SpawnRow(ctx context.Context, x int) (int, error) {
	e, err := m.entryFor(ctx, ChunkOf(x))
	if err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	lx := LocalOf(x)
	for y := 0; y < gen.ChunkHeight; y++ {
		if e.chunk.Tile(lx, y) != gen.TileAir {
			return max(y-1, 0), nil
		}
	}
	return gen.BedrockRow - 1, nil
}

// LoadedChunks returns the resident chunk indices in ascending order.
func (m *Manager) LoadedChunks() []int {
	m.mu.RLock()
	out := make([]int, 0, len(m.chunks))
	for idx := range m.chunks {
		out = append(out, idx)
	}
	m.mu.RUnlock()
	slices.Sort(out)
	return out
}

// LoadedChunkCount returns the number of resident chunks.
func (m *Manager) LoadedChunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// IsLoaded reports whether chunk index is resident.
func (m *Manager) IsLoaded(index int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[index]
	return ok
}

// Stats returns a snapshot of the manager counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Resident:  m.LoadedChunkCount(),
		Generated: m.generated.Load(),
		Restored:  m.restored.Load(),
		Evicted:   m.evicted.Load(),
		Persisted: m.persisted.Load(),
	}
}

// Update streams chunks around world column playerX: every chunk within
// RenderDistance is made resident, then chunks beyond KeepDistance (and,
// with a cap, the farthest ones) are evicted. Edited chunks are saved
// first; a chunk whose save fails stays resident and the error is
// returned.
func (m *Manager) Update(ctx context.Context, playerX int) error {
	center := ChunkOf(playerX)
	r := m.opts.RenderDistance

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for idx := center - r; idx <= center+r; idx++ {
		idx := idx
		g.Go(func() error {
			_, err := m.entryFor(gctx, idx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load around chunk %d: %w", center, err)
	}
	return m.evict(ctx, center)
}

// evictionCandidates returns resident indices to drop for a player in
// chunk center, farthest first.
func (m *Manager) evictionCandidates(center int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var far, near []int
	for idx := range m.chunks {
		d := abs(idx - center)
		switch {
		case d > m.opts.KeepDistance:
			far = append(far, idx)
		case d > m.opts.RenderDistance:
			near = append(near, idx)
		}
	}
	byDistance := func(a, b int) int {
		if da, db := abs(a-center), abs(b-center); da != db {
			return db - da
		}
		return a - b
	}
	slices.SortFunc(far, byDistance)
	if m.opts.MaxResident > 0 {
		if excess := len(m.chunks) - len(far) - m.opts.MaxResident; excess > 0 {
			slices.SortFunc(near, byDistance)
			far = append(far, near[:min(excess, len(near))]...)
		}
	}
	return far
}

func (m *Manager) evict(ctx context.Context, center int) error {
	var errs []error
	evicted := 0
	for _, idx := range m.evictionCandidates(center) {
		ok, err := m.release(ctx, idx)
		if err != nil {
			m.log.Error("chunk save failed, keeping it resident", "index", idx, "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			evicted++
		}
	}
	if evicted > 0 {
		m.log.Debug("evicted chunks", "count", evicted, "center", center, "resident", m.LoadedChunkCount())
	}
	return errors.Join(errs...)
}

// release removes chunk idx from the resident set, saving it first when
// it was edited. It reports whether the chunk was removed.
func (m *Manager) release(ctx context.Context, idx int) (bool, error) {
	m.mu.Lock()
	e, ok := m.chunks[idx]
	if !ok {
		m.mu.Unlock()
		return false, nil
	}
	if !e.chunk.Dirty() {
		delete(m.chunks, idx)
		m.mu.Unlock()
		m.evicted.Add(1)
		return true, nil
	}
	if m.store == nil {
		m.mu.Unlock()
		return false, nil
	}
	snap, edits := e.chunk.Clone(), e.edits
	m.mu.Unlock()

	if err := m.save(ctx, snap); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chunks[idx] != e || e.edits != edits {
		// Edited while saving; the next pass saves it again.
		return false, nil
	}
	delete(m.chunks, idx)
	m.evicted.Add(1)
	return true, nil
}

func (m *Manager) save(ctx context.Context, snap *gen.Chunk) error {
	d := storage.Diff(m.gen.Baseline(snap.Index), snap)
	if err := m.store.Save(ctx, d); err != nil {
		return fmt.Errorf("save chunk %d: %w", snap.Index, err)
	}
	m.persisted.Add(1)
	return nil
}

// Flush saves every edited resident chunk without evicting it.
func (m *Manager) Flush(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	type pending struct {
		e     *entry
		snap  *gen.Chunk
		edits uint64
	}
	var work []pending
	m.mu.RLock()
	for _, e := range m.chunks {
		if e.chunk.Dirty() {
			work = append(work, pending{e: e, snap: e.chunk.Clone(), edits: e.edits})
		}
	}
	m.mu.RUnlock()

	var errs []error
	for _, p := range work {
		if err := m.save(ctx, p.snap); err != nil {
			errs = append(errs, err)
			continue
		}
		m.mu.Lock()
		if m.chunks[p.snap.Index] == p.e && p.e.edits == p.edits {
			p.e.chunk.MarkClean()
		}
		m.mu.Unlock()
	}
	m.log.Info("flushed chunks", "saved", len(work)-len(errs), "failed", len(errs))
	return errors.Join(errs...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
