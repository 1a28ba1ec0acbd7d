package gen

// CaveGenerator carves open space out of the underground.
type CaveGenerator struct {
	field     NoiseField
	threshold float64
}

// NewCaveGenerator creates a CaveGenerator. A cave density of zero
// disables carving entirely.
func NewCaveGenerator(nc *NoiseContext, density float64) *CaveGenerator {
	return &CaveGenerator{
		field:     nc.Field(ChannelCave),
		threshold: 1 - caveBaseThreshold*nonNegative(density),
	}
}

// IsCave reports whether world cell (wx, y) is void.
func (cg *CaveGenerator) IsCave(wx, y int) bool {
	if cg.threshold >= 1 {
		return false
	}
	return cg.field.Unit2D(float64(wx), float64(y), caveFrequency) > cg.threshold
}

// Carve turns eligible underground cells of local column lx into air and
// tags them with the biome's cave style. Cells shallower than
// CaveMinDepth and the bedrock row are never carved.
func (cg *CaveGenerator) Carve(c *Chunk, lx, surface int, biome Biome) {
	wx := c.Index*ChunkWidth + lx
	style := biome.CaveStyle()
	for y := surface + CaveMinDepth; y < BedrockRow; y++ {
		if !c.Tile(lx, y).IsSolid() {
			continue
		}
		if cg.IsCave(wx, y) {
			c.set(lx, y, TileAir)
			c.caves[cellIndex(lx, y)] = style
		}
	}
}
