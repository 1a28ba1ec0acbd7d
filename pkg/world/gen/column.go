package gen

import "math"

// ColumnGenerator computes surface heights and fills the vertical
// material stack of a column.
type ColumnGenerator struct {
	field      NoiseField
	multiplier float64
	amplified  bool
	seaRow     int
}

func NewColumnGenerator(nc *NoiseContext, p Profile) *ColumnGenerator {
	return &ColumnGenerator{
		field:      nc.Field(ChannelHeight),
		multiplier: nonNegative(p.HeightMultiplier),
		amplified:  p.Amplified,
		seaRow:     p.SeaRow(),
	}
}

// SurfaceRow returns the row of the topmost solid tile of column x.
func (cg *ColumnGenerator) SurfaceRow(x int, biome Biome) int {
	mod := biome.HeightModifier()
	if cg.amplified {
		mod *= amplifiedModifier
	}
	n := cg.field.Sample1D(float64(x), heightFrequency)
	row := BaseSurfaceRow - int(math.Round(n*HeightAmplitude*cg.multiplier*mod))
	return clampInt(row, MinSurfaceRow, MaxSurfaceRow)
}

// Fill writes the full stack of local column lx: air above the surface,
// the biome cover, topsoil, stone, deep-stone and bedrock on the last row.
func (cg *ColumnGenerator) Fill(c *Chunk, lx, surface int, biome Biome) {
	for y := 0; y < surface; y++ {
		c.set(lx, y, TileAir)
	}
	c.set(lx, surface, biome.SurfaceTile())
	for y := surface + 1; y < BedrockRow; y++ {
		switch {
		case y <= surface+TopsoilDepth:
			c.set(lx, y, TileDirt)
		case y >= DeepStoneRow:
			c.set(lx, y, TileDeepStone)
		default:
			c.set(lx, y, TileStone)
		}
	}
	c.tiles[cellIndex(lx, BedrockRow)] = TileBedrock
}

// FloodColumn fills open air between the sea row and the surface with
// water.
func (cg *ColumnGenerator) FloodColumn(c *Chunk, lx, surface int) {
	for y := cg.seaRow; y < surface; y++ {
		if c.Tile(lx, y) == TileAir {
			c.set(lx, y, TileWater)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
