package gen

// MiniBiomeType names a rare local override of normal column generation.
type MiniBiomeType uint8

const (
	MiniBiomeNone MiniBiomeType = iota
	MiniBiomeOasis
	MiniBiomeClearing
	MiniBiomeIceLake
	MiniBiomeBoulder
)

func (t MiniBiomeType) String() string {
	switch t {
	case MiniBiomeOasis:
		return "oasis"
	case MiniBiomeClearing:
		return "clearing"
	case MiniBiomeIceLake:
		return "ice_lake"
	case MiniBiomeBoulder:
		return "boulder"
	default:
		return "none"
	}
}

const (
	miniBiomeSpacing   = 64
	miniBiomeFrequency = 0.013
	miniBiomeThreshold = 0.9
	miniBiomeMinRadius = 3
	miniBiomeMaxRadius = 6
)

// MiniBiomeFeature describes one override. It is never stored: the same
// seed, region and biome always produce the same descriptor.
type MiniBiomeFeature struct {
	Type       MiniBiomeType
	Center     int // world column
	Radius     int
	Fill       Tile
	Vegetation Tile // TileAir = none
}

// Covers reports whether world column x lies within the feature.
func (f MiniBiomeFeature) Covers(x int) bool {
	d := x - f.Center
	if d < 0 {
		d = -d
	}
	return f.Type != MiniBiomeNone && d <= f.Radius
}

func featureFor(biome Biome) (MiniBiomeType, Tile, Tile) {
	switch biome {
	case BiomeDesert:
		return MiniBiomeOasis, TileWater, TilePalmTree
	case BiomeForest:
		return MiniBiomeClearing, TileGrass, TileTallGrass
	case BiomeSnow:
		return MiniBiomeIceLake, TileIce, TileAir
	case BiomeRocky:
		return MiniBiomeBoulder, TileStone, TileAir
	default:
		return MiniBiomeNone, TileAir, TileAir
	}
}

// MiniBiomeInjector decides where mini-biomes occur. There is at most one
// candidate per miniBiomeSpacing columns, and it only fires when the
// low-frequency noise at its centre clears a high threshold.
type MiniBiomeInjector struct {
	field   NoiseField
	seed    int64
	biomes  *BiomeBlender
	enabled bool
}

func NewMiniBiomeInjector(nc *NoiseContext, biomes *BiomeBlender, enabled bool) *MiniBiomeInjector {
	return &MiniBiomeInjector{
		field:   nc.Field(ChannelMiniBiome),
		seed:    nc.Seed(),
		biomes:  biomes,
		enabled: enabled,
	}
}

// FeatureInRegion returns the feature of a region, if it has one.
func (mi *MiniBiomeInjector) FeatureInRegion(region int) (MiniBiomeFeature, bool) {
	if !mi.enabled {
		return MiniBiomeFeature{}, false
	}
	span := miniBiomeSpacing - 2*miniBiomeMaxRadius
	center := region*miniBiomeSpacing + miniBiomeMaxRadius +
		int(Hash(mi.seed, region, 0, TagMiniBiomeOffset)*float64(span))
	if mi.field.Probability1D(float64(center), miniBiomeFrequency) <= miniBiomeThreshold {
		return MiniBiomeFeature{}, false
	}
	kind, fill, veg := featureFor(mi.biomes.BiomeAt(center))
	if kind == MiniBiomeNone {
		return MiniBiomeFeature{}, false
	}
	radius := miniBiomeMinRadius +
		int(Hash(mi.seed, region, 0, TagMiniBiomeRadius)*float64(miniBiomeMaxRadius-miniBiomeMinRadius+1))
	return MiniBiomeFeature{Type: kind, Center: center, Radius: radius, Fill: fill, Vegetation: veg}, true
}

// FeaturesBetween returns every feature touching world columns [x0, x1].
func (mi *MiniBiomeInjector) FeaturesBetween(x0, x1 int) []MiniBiomeFeature {
	if !mi.enabled {
		return nil
	}
	var out []MiniBiomeFeature
	for r := floorDiv(x0, miniBiomeSpacing); r <= floorDiv(x1, miniBiomeSpacing); r++ {
		f, ok := mi.FeatureInRegion(r)
		if !ok || f.Center+f.Radius < x0 || f.Center-f.Radius > x1 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Apply carves feature f into the chunk in place of the normal column
// stack. The bedrock row is out of reach of every feature.
func (f MiniBiomeFeature) Apply(c *Chunk) {
	base := c.Index * ChunkWidth
	for lx := 0; lx < ChunkWidth; lx++ {
		wx := base + lx
		if !f.Covers(wx) {
			continue
		}
		dx := wx - f.Center
		if dx < 0 {
			dx = -dx
		}
		s := c.surface[lx]
		switch f.Type {
		case MiniBiomeOasis:
			for y := s; y < s+f.Radius-dx; y++ {
				c.set(lx, y, f.Fill)
			}
		case MiniBiomeIceLake:
			for y := s; y < s+(f.Radius-dx+1)/2; y++ {
				c.set(lx, y, f.Fill)
			}
		case MiniBiomeClearing:
			c.set(lx, s, f.Fill)
		case MiniBiomeBoulder:
			for y := s - (f.Radius - dx); y < s; y++ {
				c.set(lx, y, f.Fill)
			}
		}
	}
}

// VegetationAt is the overlay the feature forces on world column x.
func (f MiniBiomeFeature) VegetationAt(x int) Tile {
	if f.Type == MiniBiomeOasis {
		d := x - f.Center
		if d == f.Radius || d == -f.Radius {
			return f.Vegetation
		}
		return TileAir
	}
	return f.Vegetation
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}
