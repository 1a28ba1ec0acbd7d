package gen

// vegetationSlot is one sub-range of a biome's probability partition.
// A slot with alt set splits its range by a weighted coin-flip between
// kind (probability 1-altWeight) and alt.
type vegetationSlot struct {
	width     float64
	kind      Tile
	alt       Tile
	altWeight float64
}

// vegetationTable lists each biome's non-"none" slots in order; "none"
// takes whatever width remains at the end of the interval.
var vegetationTable = [biomeCount][]vegetationSlot{
	BiomePlains: {
		{width: 0.30, kind: TileTallGrass},
		{width: 0.10, kind: TileFlower},
		{width: 0.05, kind: TileOakTree},
	},
	BiomeForest: {
		{width: 0.35, kind: TileOakTree, alt: TileBirchTree, altWeight: 0.3},
		{width: 0.10, kind: TileBush},
		{width: 0.10, kind: TileTallGrass},
		{width: 0.05, kind: TileFlower},
	},
	BiomeDesert: {
		{width: 0.03, kind: TileCactus},
		{width: 0.02, kind: TileDeadBush},
	},
	BiomeSnow: {
		{width: 0.15, kind: TilePineTree},
		{width: 0.05, kind: TileBush},
	},
	BiomeSwamp: {
		{width: 0.25, kind: TileReed},
		{width: 0.10, kind: TileMushroom},
		{width: 0.15, kind: TileOakTree},
	},
	BiomeBeach: {
		{width: 0.07, kind: TilePalmTree},
		{width: 0.03, kind: TileTallGrass},
	},
	BiomeRocky: {
		{width: 0.10, kind: TileBush},
		{width: 0.05, kind: TileDeadBush},
	},
	BiomeMountains: {
		{width: 0.10, kind: TilePineTree},
		{width: 0.05, kind: TileBush},
	},
}

// Coverage returns the fraction of a biome's columns that receive
// vegetation at the given density.
func Coverage(b Biome, density float64) float64 {
	var sum float64
	for _, s := range scaledSlots(b, density) {
		sum += s.width
	}
	return sum
}

// scaledSlots applies the density factor to every non-"none" width. When
// the scaled widths would exceed the whole interval they are renormalized
// so "none" ends at zero rather than negative.
func scaledSlots(b Biome, density float64) []vegetationSlot {
	if b >= biomeCount {
		b = BiomePlains
	}
	density = nonNegative(density)
	src := vegetationTable[b]
	out := make([]vegetationSlot, len(src))
	var sum float64
	for i, s := range src {
		s.width *= density
		out[i] = s
		sum += s.width
	}
	if sum > 1 {
		for i := range out {
			out[i].width /= sum
		}
	}
	return out
}

func decorationEligible(t Tile) bool {
	switch t {
	case TileGrass, TileSand, TileSnow, TileMud, TileGravel:
		return true
	}
	return false
}

// VegetationPlacer assigns at most one vegetation overlay per column.
type VegetationPlacer struct {
	field NoiseField
	seed  int64
	slots [biomeCount][]vegetationSlot
}

func NewVegetationPlacer(nc *NoiseContext, density float64) *VegetationPlacer {
	vp := &VegetationPlacer{
		field: nc.Field(ChannelVegetation),
		seed:  nc.Seed(),
	}
	for b := Biome(0); b < biomeCount; b++ {
		vp.slots[b] = scaledSlots(b, density)
	}
	return vp
}

// Pick maps a probability p in [0, 1) to a vegetation kind for biome b.
// TileAir means none.
func (vp *VegetationPlacer) Pick(b Biome, p float64, x int) Tile {
	if b >= biomeCount {
		b = BiomePlains
	}
	lo := 0.0
	for _, s := range vp.slots[b] {
		if p >= lo && p < lo+s.width {
			if s.alt != TileAir && Hash(vp.seed, x, 0, TagTreeKind) < s.altWeight {
				return s.alt
			}
			return s.kind
		}
		lo += s.width
	}
	return TileAir
}

// Place decorates every column of a generated chunk. Columns covered by
// a mini-biome take the feature's vegetation instead. Ungenerated chunks
// are left alone.
func (vp *VegetationPlacer) Place(c *Chunk, features []MiniBiomeFeature) {
	if !c.generated {
		return
	}
	base := c.Index * ChunkWidth
columns:
	for lx := 0; lx < ChunkWidth; lx++ {
		wx := base + lx
		for _, f := range features {
			if f.Covers(wx) {
				c.vegetation[lx] = f.VegetationAt(wx)
				continue columns
			}
		}
		top, ok := shallowestSolid(c, lx)
		if !ok || !decorationEligible(c.Tile(lx, top)) {
			c.vegetation[lx] = TileAir
			continue
		}
		p := vp.field.Probability1D(float64(wx), vegetationFrequency)
		c.vegetation[lx] = vp.Pick(c.biomes[lx], p, wx)
	}
}

// shallowestSolid finds the first non-air row of a column. Standing water
// counts, which keeps flooded columns bare.
func shallowestSolid(c *Chunk, lx int) (int, bool) {
	for y := 0; y < ChunkHeight; y++ {
		if c.Tile(lx, y) != TileAir {
			return y, true
		}
	}
	return 0, false
}
