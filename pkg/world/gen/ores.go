package gen

import "math"

// Point is a world cell position.
type Point struct{ X, Y int }

// OreBand is the depth range, measured in rows below the column surface,
// where an ore kind may appear. Bounds are inclusive.
type OreBand struct {
	Kind     Tile
	MinDepth int
	MaxDepth int
	tag      FeatureTag
}

// Contains reports whether depth lies inside the band.
func (b OreBand) Contains(depth int) bool {
	return depth >= b.MinDepth && depth <= b.MaxDepth
}

var oreBands = []OreBand{
	{Kind: TileCoalOre, MinDepth: 4, MaxDepth: 10, tag: TagClusterCoal},
	{Kind: TileCopperOre, MinDepth: 6, MaxDepth: 12, tag: TagClusterCopper},
	{Kind: TileIronOre, MinDepth: 8, MaxDepth: 14, tag: TagClusterIron},
	{Kind: TileSilverOre, MinDepth: 11, MaxDepth: 17, tag: TagClusterSilver},
	{Kind: TileGoldOre, MinDepth: 14, MaxDepth: 19, tag: TagClusterGold},
}

// rarestOre passes the per-cell and cluster rolls only with an extra
// rareOreExtraChance.
const rarestOre = TileGoldOre

const (
	ClusterRadius = 2
	clusterGate   = 0.004
)

// OreBands returns a copy of the depth eligibility table.
func OreBands() []OreBand {
	out := make([]OreBand, len(oreBands))
	copy(out, oreBands)
	return out
}

// BandFor returns the band of an ore kind.
func BandFor(kind Tile) (OreBand, bool) {
	for _, b := range oreBands {
		if b.Kind == kind {
			return b, true
		}
	}
	return OreBand{}, false
}

// OreGenerator replaces base stone with ore, both cell by cell from
// high-frequency noise and as whole clusters.
type OreGenerator struct {
	field     NoiseField
	seed      int64
	threshold float64
	density   float64
	veins     bool
}

func NewOreGenerator(nc *NoiseContext, p Profile) *OreGenerator {
	density := nonNegative(p.OreDensity)
	return &OreGenerator{
		field:     nc.Field(ChannelOre),
		seed:      nc.Seed(),
		threshold: 1 - oreBaseChance*density,
		density:   density,
		veins:     p.OreVeins,
	}
}

// eligible appends the ore kinds allowed at depth to dst.
func eligible(dst []OreBand, depth int) []OreBand {
	for _, b := range oreBands {
		if b.Contains(depth) {
			dst = append(dst, b)
		}
	}
	return dst
}

// oreAt decides the ore for one cell, if any. The kind is drawn
// uniformly among the kinds eligible at this depth.
func (og *OreGenerator) oreAt(wx, y, depth int, rng *chunkRNG, scratch []OreBand) (Tile, bool) {
	if og.threshold >= 1 {
		return TileAir, false
	}
	kinds := eligible(scratch[:0], depth)
	if len(kinds) == 0 {
		return TileAir, false
	}
	if og.field.Unit2D(float64(wx), float64(y), oreFrequency) <= og.threshold {
		return TileAir, false
	}
	kind := kinds[rng.nextN(len(kinds))].Kind
	if kind == rarestOre && rng.float() >= rareOreExtraChance {
		return TileAir, false
	}
	return kind, true
}

// Place runs the per-cell ore pass over local column lx.
func (og *OreGenerator) Place(c *Chunk, lx, surface int, rng *chunkRNG) {
	wx := c.Index*ChunkWidth + lx
	var scratch [8]OreBand
	for y := surface + 1; y < BedrockRow; y++ {
		if !c.Tile(lx, y).isBaseStone() {
			continue
		}
		if kind, ok := og.oreAt(wx, y, y-surface, rng, scratch[:]); ok {
			c.set(lx, y, kind)
		}
	}
}

// ClusterAt reports whether a cluster of kind is seeded at world cell
// (wx, y). The decision comes from the position hash alone, so it does
// not depend on the order in which cells are visited.
func (og *OreGenerator) ClusterAt(wx, y int, kind Tile) bool {
	if !og.veins || og.density == 0 {
		return false
	}
	band, ok := BandFor(kind)
	if !ok {
		return false
	}
	p := clusterGate * og.density
	if kind == rarestOre {
		p *= rareOreExtraChance
	}
	return Hash(og.seed, wx, y, band.tag) < p
}

// GenerateOreCluster returns the cells of a vein centred on center. Each
// offset within ClusterRadius is included with a probability that falls
// linearly with distance, which approximates a disc; the centre is always
// included, so the result is never empty.
func (og *OreGenerator) GenerateOreCluster(center Point, kind Tile) []Point {
	band, _ := BandFor(kind)
	rng := newChunkRNG(int64(Hash64(og.seed, center.X, center.Y, band.tag)), 0, int64(kind))
	cells := make([]Point, 0, (2*ClusterRadius+1)*(2*ClusterRadius+1))
	for dy := -ClusterRadius; dy <= ClusterRadius; dy++ {
		for dx := -ClusterRadius; dx <= ClusterRadius; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			if d > ClusterRadius {
				continue
			}
			if rng.float() < 1-d/float64(ClusterRadius+1) {
				cells = append(cells, Point{X: center.X + dx, Y: center.Y + dy})
			}
		}
	}
	return cells
}

// PlaceClusters seeds clusters inside the chunk. Cluster cells are kept
// within the chunk and within the kind's depth band, and only replace
// base stone.
func (og *OreGenerator) PlaceClusters(c *Chunk) {
	if !og.veins || og.density == 0 {
		return
	}
	base := c.Index * ChunkWidth
	var scratch [8]OreBand
	for lx := 0; lx < ChunkWidth; lx++ {
		surface := c.surface[lx]
		for y := surface + 1; y < BedrockRow; y++ {
			for _, band := range eligible(scratch[:0], y-surface) {
				if !og.ClusterAt(base+lx, y, band.Kind) {
					continue
				}
				for _, p := range og.GenerateOreCluster(Point{X: base + lx, Y: y}, band.Kind) {
					px := p.X - base
					if px < 0 || px >= ChunkWidth || p.Y >= BedrockRow {
						continue
					}
					if !band.Contains(p.Y-c.surface[px]) || !c.Tile(px, p.Y).isBaseStone() {
						continue
					}
					c.set(px, p.Y, band.Kind)
				}
			}
		}
	}
}
