package gen

// CaveStyle is the structural hint attached to carved cave cells.
type CaveStyle uint8

const (
	CaveNone CaveStyle = iota
	CavePlain
	CaveMossy
	CaveSandstone
	CaveFrozen
)

func (s CaveStyle) String() string {
	switch s {
	case CavePlain:
		return "plain"
	case CaveMossy:
		return "mossy"
	case CaveSandstone:
		return "sandstone"
	case CaveFrozen:
		return "frozen"
	default:
		return "none"
	}
}

// Chunk is a ChunkWidth × ChunkHeight slab of tiles plus a per-column
// vegetation overlay. Index is the chunk's horizontal position in chunk
// units. A Chunk is not safe for concurrent use; the owner serializes
// access.
type Chunk struct {
	Index int

	tiles      [ChunkWidth * ChunkHeight]Tile
	vegetation [ChunkWidth]Tile // TileAir = none
	caves      [ChunkWidth * ChunkHeight]CaveStyle
	surface    [ChunkWidth]int
	biomes     [ChunkWidth]Biome

	generated bool
	dirty     bool
}

// NewChunk returns an empty, ungenerated chunk.
func NewChunk(index int) *Chunk {
	return &Chunk{Index: index}
}

func inChunk(x, y int) bool {
	return x >= 0 && x < ChunkWidth && y >= 0 && y < ChunkHeight
}

func cellIndex(x, y int) int { return y*ChunkWidth + x }

// CellIndex returns the flat index of local cell (x, y).
func CellIndex(x, y int) int { return cellIndex(x, y) }

// CellXY is the inverse of CellIndex.
func CellXY(i int) (x, y int) { return i % ChunkWidth, i / ChunkWidth }

// Tile returns the tile at local (x, y); out-of-range cells read as air.
func (c *Chunk) Tile(x, y int) Tile {
	if !inChunk(x, y) {
		return TileAir
	}
	return c.tiles[cellIndex(x, y)]
}

// SetTile writes a tile at local (x, y). Writes outside the chunk, on the
// bedrock row, or of an invalid tile are ignored; the return value
// reports whether the cell changed.
func (c *Chunk) SetTile(x, y int, t Tile) bool {
	if !inChunk(x, y) || y >= BedrockRow || !t.Valid() {
		return false
	}
	i := cellIndex(x, y)
	if c.tiles[i] == t {
		return false
	}
	c.tiles[i] = t
	if c.generated {
		c.dirty = true
	}
	return true
}

// set is the generation-time writer. It still refuses the bedrock row.
func (c *Chunk) set(x, y int, t Tile) {
	if !inChunk(x, y) || y == BedrockRow {
		return
	}
	c.tiles[cellIndex(x, y)] = t
}

// Vegetation returns the overlay of local column x and whether one is set.
func (c *Chunk) Vegetation(x int) (Tile, bool) {
	if x < 0 || x >= ChunkWidth {
		return TileAir, false
	}
	v := c.vegetation[x]
	return v, v != TileAir
}

// SetVegetation sets or, with TileAir, clears the overlay of column x.
// Non-vegetation tiles are rejected. The tile grid is never touched.
func (c *Chunk) SetVegetation(x int, t Tile) bool {
	if x < 0 || x >= ChunkWidth || (t != TileAir && !t.IsVegetation()) {
		return false
	}
	if c.vegetation[x] == t {
		return false
	}
	c.vegetation[x] = t
	if c.generated {
		c.dirty = true
	}
	return true
}

// CaveStyle returns the cave hint of local cell (x, y).
func (c *Chunk) CaveStyle(x, y int) CaveStyle {
	if !inChunk(x, y) {
		return CaveNone
	}
	return c.caves[cellIndex(x, y)]
}

// Surface returns the generated surface row of local column x.
func (c *Chunk) Surface(x int) int {
	if x < 0 || x >= ChunkWidth {
		return 0
	}
	return c.surface[x]
}

// Biome returns the effective biome local column x was generated with.
func (c *Chunk) Biome(x int) Biome {
	if x < 0 || x >= ChunkWidth {
		return BiomePlains
	}
	return c.biomes[x]
}

// Generated reports whether the generation pipeline has run.
func (c *Chunk) Generated() bool { return c.generated }

// Dirty reports whether the chunk was mutated after generation.
func (c *Chunk) Dirty() bool { return c.dirty }

// MarkClean clears the dirty flag once mutations have been persisted.
func (c *Chunk) MarkClean() { c.dirty = false }

// Tiles returns a copy of the tile grid in CellIndex order.
func (c *Chunk) Tiles() []Tile {
	out := make([]Tile, len(c.tiles))
	copy(out, c.tiles[:])
	return out
}

// SurfaceRows returns a copy of the per-column surface rows.
func (c *Chunk) SurfaceRows() [ChunkWidth]int { return c.surface }

// Clone returns an independent copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	cp := *c
	return &cp
}
