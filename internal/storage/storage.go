// Package storage persists chunk diffs and world metadata.
//
// Only edits are stored: a chunk is rebuilt from its seed and profile and
// the diff is replayed on top. Every backend implements DiffStore.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ErrWorldMismatch is returned when a data directory belongs to a world
// with a different seed or profile.
var ErrWorldMismatch = errors.New("storage: world seed or profile mismatch")

// DiffStore persists chunk diffs keyed by chunk index.
type DiffStore interface {
	// Load returns the stored diff of a chunk; ok is false when none exists.
	Load(ctx context.Context, index int) (d ChunkDiff, ok bool, err error)
	// Save stores d, replacing any earlier diff. An empty diff deletes the record.
	Save(ctx context.Context, d ChunkDiff) error
	Delete(ctx context.Context, index int) error
	Close() error
}

// Backend names a DiffStore implementation.
type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendFile    Backend = "file"
	BackendSQLite  Backend = "sqlite"
	BackendLevelDB Backend = "leveldb"
)

// ParseBackend resolves a backend name.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendMemory, BackendFile, BackendSQLite, BackendLevelDB:
		return b, nil
	case "":
		return BackendFile, nil
	}
	return "", fmt.Errorf("unknown storage backend %q", name)
}

// Open opens the store of the given backend rooted at dir and reconciles
// its world metadata with want. The returned meta is the one on disk when
// the world already existed.
func Open(ctx context.Context, backend Backend, dir string, want WorldMeta, log *slog.Logger) (DiffStore, WorldMeta, error) {
	if backend != BackendMemory {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WorldMeta{}, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), want, nil
	case BackendFile:
		meta, err := reconcileMetaFile(dir, want, log)
		if err != nil {
			return nil, WorldMeta{}, err
		}
		s, err := OpenFileStore(dir, log)
		return s, meta, err
	case BackendLevelDB:
		meta, err := reconcileMetaFile(dir, want, log)
		if err != nil {
			return nil, WorldMeta{}, err
		}
		s, err := OpenLevelStore(dir, log)
		return s, meta, err
	case BackendSQLite:
		s, err := OpenSQLiteStore(dir, log)
		if err != nil {
			return nil, WorldMeta{}, err
		}
		meta, err := s.reconcileMeta(ctx, want)
		if err != nil {
			_ = s.Close()
			return nil, WorldMeta{}, err
		}
		return s, meta, nil
	}
	return nil, WorldMeta{}, fmt.Errorf("unknown storage backend %q", backend)
}
