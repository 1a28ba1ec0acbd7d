package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// codec turns diffs into zstd-compressed JSON. EncodeAll and DecodeAll
// are safe for concurrent use, so one codec serves a whole store.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) encode(d ChunkDiff) ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal diff %d: %w", d.Index, err)
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *codec) decode(b []byte) (ChunkDiff, error) {
	raw, err := c.dec.DecodeAll(b, nil)
	if err != nil {
		return ChunkDiff{}, fmt.Errorf("decompress diff: %w", err)
	}
	var d ChunkDiff
	if err := json.Unmarshal(raw, &d); err != nil {
		return ChunkDiff{}, fmt.Errorf("parse diff: %w", err)
	}
	return d, nil
}

func (c *codec) close() {
	c.dec.Close()
	_ = c.enc.Close()
}
