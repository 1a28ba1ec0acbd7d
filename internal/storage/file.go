package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore writes one zstd-compressed JSON file per chunk under
// dir/chunks. Writes are atomic.
type FileStore struct {
	dir   string
	codec *codec
	log   *slog.Logger
}

// OpenFileStore creates dir/chunks if needed.
func OpenFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	chunks := filepath.Join(dir, "chunks")
	if err := os.MkdirAll(chunks, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", chunks, err)
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &FileStore{dir: chunks, codec: c, log: log}, nil
}

func (s *FileStore) path(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("c.%d.json.zst", index))
}

func (s *FileStore) Load(ctx context.Context, index int) (ChunkDiff, bool, error) {
	if err := ctx.Err(); err != nil {
		return ChunkDiff{}, false, err
	}
	data, err := os.ReadFile(s.path(index))
	if errors.Is(err, os.ErrNotExist) {
		return ChunkDiff{}, false, nil
	}
	if err != nil {
		return ChunkDiff{}, false, fmt.Errorf("read chunk %d: %w", index, err)
	}
	d, err := s.codec.decode(data)
	if err != nil {
		return ChunkDiff{}, false, fmt.Errorf("chunk %d: %w", index, err)
	}
	d.Index = index
	return d, true, nil
}

func (s *FileStore) Save(ctx context.Context, d ChunkDiff) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Empty() {
		return s.Delete(ctx, d.Index)
	}
	data, err := s.codec.encode(d)
	if err != nil {
		return err
	}
	if err := atomicWrite(s.path(d.Index), data); err != nil {
		return fmt.Errorf("save chunk %d: %w", d.Index, err)
	}
	s.log.Debug("saved chunk diff", "index", d.Index, "tiles", len(d.Tiles), "vegetation", len(d.Vegetation), "bytes", len(data))
	return nil
}

func (s *FileStore) Delete(_ context.Context, index int) error {
	if err := os.Remove(s.path(index)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete chunk %d: %w", index, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	s.codec.close()
	return nil
}
