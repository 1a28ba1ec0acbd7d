package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/df-mc/goleveldb/leveldb"
)

// LevelStore keeps diffs in a LevelDB database under dir/db.
type LevelStore struct {
	db    *leveldb.DB
	codec *codec
	log   *slog.Logger
}

func OpenLevelStore(dir string, log *slog.Logger) (*LevelStore, error) {
	path := filepath.Join(dir, "db")
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	c, err := newCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &LevelStore{db: db, codec: c, log: log}, nil
}

// levelKey is "d" followed by the big-endian index.
func levelKey(index int) []byte {
	k := make([]byte, 9)
	k[0] = 'd'
	binary.BigEndian.PutUint64(k[1:], uint64(int64(index)))
	return k
}

func (s *LevelStore) Load(ctx context.Context, index int) (ChunkDiff, bool, error) {
	if err := ctx.Err(); err != nil {
		return ChunkDiff{}, false, err
	}
	data, err := s.db.Get(levelKey(index), nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return ChunkDiff{}, false, nil
	case err != nil:
		return ChunkDiff{}, false, fmt.Errorf("read chunk %d: %w", index, err)
	}
	d, err := s.codec.decode(data)
	if err != nil {
		return ChunkDiff{}, false, fmt.Errorf("chunk %d: %w", index, err)
	}
	d.Index = index
	return d, true, nil
}

func (s *LevelStore) Save(ctx context.Context, d ChunkDiff) error {
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
	if err := s.db.Put(levelKey(d.Index), data, nil); err != nil {
		return fmt.Errorf("save chunk %d: %w", d.Index, err)
	}
	s.log.Debug("saved chunk diff", "index", d.Index, "tiles", len(d.Tiles), "vegetation", len(d.Vegetation), "bytes", len(data))
	return nil
}

func (s *LevelStore) Delete(_ context.Context, index int) error {
	if err := s.db.Delete(levelKey(index), nil); err != nil {
		return fmt.Errorf("delete chunk %d: %w", index, err)
	}
	return nil
}

func (s *LevelStore) Close() error {
	s.codec.close()
	return s.db.Close()
}
