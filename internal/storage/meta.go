package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

const metaFile = "world.yaml"

// WorldMeta identifies the world a data directory belongs to.
type WorldMeta struct {
	ID        uuid.UUID   `yaml:"id"`
	Seed      int64       `yaml:"seed"`
	Profile   gen.Profile `yaml:"profile"`
	CreatedAt time.Time   `yaml:"created_at"`
}

// NewWorldMeta returns metadata for a new world generated with p.
func NewWorldMeta(p gen.Profile) WorldMeta {
	return WorldMeta{
		ID:        uuid.New(),
		Seed:      p.Seed,
		Profile:   p,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Matches reports whether stored diffs of m can be replayed on chunks
// generated for other.
func (m WorldMeta) Matches(other WorldMeta) bool {
	return m.Seed == other.Seed && m.Profile == other.Profile
}

func marshalMeta(m WorldMeta) ([]byte, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal world meta: %w", err)
	}
	return b, nil
}

func unmarshalMeta(b []byte) (WorldMeta, error) {
	var m WorldMeta
	if err := yaml.Unmarshal(b, &m); err != nil {
		return WorldMeta{}, fmt.Errorf("parse world meta: %w", err)
	}
	return m, nil
}

func checkMeta(stored, want WorldMeta) error {
	if !stored.Matches(want) {
		return fmt.Errorf("%w: stored world %s has seed %d profile %q, requested seed %d profile %q",
			ErrWorldMismatch, stored.ID, stored.Seed, stored.Profile.Name, want.Seed, want.Profile.Name)
	}
	return nil
}

// reconcileMetaFile reads dir/world.yaml, or writes want there when the
// directory holds no world yet.
func reconcileMetaFile(dir string, want WorldMeta, log *slog.Logger) (WorldMeta, error) {
	path := filepath.Join(dir, metaFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		b, err := marshalMeta(want)
		if err != nil {
			return WorldMeta{}, err
		}
		if err := atomicWrite(path, b); err != nil {
			return WorldMeta{}, fmt.Errorf("write world meta: %w", err)
		}
		log.Info("created world", "id", want.ID, "seed", want.Seed, "profile", want.Profile.Name)
		return want, nil
	}
	if err != nil {
		return WorldMeta{}, fmt.Errorf("read world meta: %w", err)
	}
	stored, err := unmarshalMeta(data)
	if err != nil {
		return WorldMeta{}, err
	}
	if err := checkMeta(stored, want); err != nil {
		return WorldMeta{}, err
	}
	log.Info("opened world", "id", stored.ID, "seed", stored.Seed, "profile", stored.Profile.Name)
	return stored, nil
}

// atomicWrite writes data using a temp file and rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
