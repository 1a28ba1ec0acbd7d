package storage

import (
	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

// TileEdit records one cell that differs from the generated baseline.
type TileEdit struct {
	Cell int      `json:"cell"`
	Tile gen.Tile `json:"tile"`
}

// VegetationEdit records one column whose overlay differs from the
// baseline. Tile is air when the overlay was cleared.
type VegetationEdit struct {
	Column int      `json:"column"`
	Tile   gen.Tile `json:"tile"`
}

// ChunkDiff is the persisted form of a chunk: only what differs from a
// fresh generation with the same seed and profile.
type ChunkDiff struct {
	Index      int              `json:"index"`
	Tiles      []TileEdit       `json:"tiles,omitempty"`
	Vegetation []VegetationEdit `json:"vegetation,omitempty"`
}

// Empty reports whether the diff carries no edits.
func (d ChunkDiff) Empty() bool {
	return len(d.Tiles) == 0 && len(d.Vegetation) == 0
}

// Diff computes the edits that turn baseline into current.
func Diff(baseline, current *gen.Chunk) ChunkDiff {
	d := ChunkDiff{Index: current.Index}
	base := baseline.Tiles()
	for i, t := range current.Tiles() {
		if t != base[i] {
			d.Tiles = append(d.Tiles, TileEdit{Cell: i, Tile: t})
		}
	}
	for x := 0; x < gen.ChunkWidth; x++ {
		bv, _ := baseline.Vegetation(x)
		cv, _ := current.Vegetation(x)
		if bv != cv {
			d.Vegetation = append(d.Vegetation, VegetationEdit{Column: x, Tile: cv})
		}
	}
	return d
}

// Apply replays the diff onto a freshly generated chunk and leaves it
// clean, since its contents now match what is stored. Edits that the
// chunk refuses (bedrock row, out of range) are skipped; the number of
// applied edits is returned.
func (d ChunkDiff) Apply(c *gen.Chunk) int {
	n := 0
	for _, e := range d.Tiles {
		if e.Cell < 0 || e.Cell >= gen.ChunkWidth*gen.ChunkHeight {
			continue
		}
		x, y := gen.CellXY(e.Cell)
		if c.SetTile(x, y, e.Tile) {
			n++
		}
	}
	for _, e := range d.Vegetation {
		if c.SetVegetation(e.Column, e.Tile) {
			n++
		}
	}
	c.MarkClean()
	return n
}
