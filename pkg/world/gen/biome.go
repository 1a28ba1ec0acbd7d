package gen

import (
	"math"
	"strings"
)

// Biome is the terrain and vegetation regime assigned to a column.
type Biome uint8

const (
	BiomePlains Biome = iota
	BiomeForest
	BiomeDesert
	BiomeSnow
	BiomeSwamp
	BiomeBeach
	BiomeRocky
	BiomeMountains

	biomeCount
)

var biomeNames = [biomeCount]string{
	BiomePlains:    "plains",
	BiomeForest:    "forest",
	BiomeDesert:    "desert",
	BiomeSnow:      "snow",
	BiomeSwamp:     "swamp",
	BiomeBeach:     "beach",
	BiomeRocky:     "rocky",
	BiomeMountains: "mountains",
}

func (b Biome) String() string {
	if b < biomeCount {
		return biomeNames[b]
	}
	return "unknown"
}

// ParseBiome resolves a biome name; unknown names yield Plains.
func ParseBiome(name string) Biome {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range biomeNames {
		if n == name {
			return Biome(i)
		}
	}
	return BiomePlains
}

type biomeParams struct {
	surface   Tile
	heightMod float64
	cave      CaveStyle
}

var biomeTable = [biomeCount]biomeParams{
	BiomePlains:    {surface: TileGrass, heightMod: 0.8, cave: CavePlain},
	BiomeForest:    {surface: TileGrass, heightMod: 1.0, cave: CaveMossy},
	BiomeDesert:    {surface: TileSand, heightMod: 0.7, cave: CaveSandstone},
	BiomeSnow:      {surface: TileSnow, heightMod: 1.1, cave: CaveFrozen},
	BiomeSwamp:     {surface: TileMud, heightMod: 0.3, cave: CaveMossy},
	BiomeBeach:     {surface: TileSand, heightMod: 0.25, cave: CavePlain},
	BiomeRocky:     {surface: TileGravel, heightMod: 1.3, cave: CavePlain},
	BiomeMountains: {surface: TileStone, heightMod: 1.8, cave: CavePlain},
}

// fallbackParams applies to biome values outside the table.
var fallbackParams = biomeParams{surface: TileGrass, heightMod: 1.0, cave: CavePlain}

func (b Biome) params() biomeParams {
	if b < biomeCount {
		return biomeTable[b]
	}
	return fallbackParams
}

// SurfaceTile is the cover tile placed on the surface row.
func (b Biome) SurfaceTile() Tile { return b.params().surface }

// HeightModifier scales terrain amplitude: mountains taller, beaches and
// swamps flatter.
func (b Biome) HeightModifier() float64 { return b.params().heightMod }

// CaveStyle is the hint attached to caves carved under this biome.
func (b Biome) CaveStyle() CaveStyle { return b.params().cave }

// biomeBands partitions the unit interval; each entry is the exclusive
// upper bound of its biome's band.
var biomeBands = []struct {
	upper float64
	biome Biome
}{
	{0.10, BiomeBeach},
	{0.22, BiomeSwamp},
	{0.40, BiomePlains},
	{0.56, BiomeForest},
	{0.70, BiomeDesert},
	{0.82, BiomeSnow},
	{0.91, BiomeRocky},
	{1.00, BiomeMountains},
}

func biomeForValue(v float64) Biome {
	for _, band := range biomeBands {
		if v < band.upper {
			return band.biome
		}
	}
	return BiomeMountains
}

// BiomeClassifier assigns raw biomes to columns from low-frequency noise.
type BiomeClassifier struct {
	field     NoiseField
	frequency float64
}

// NewBiomeClassifier creates a classifier. A larger biomeScale lowers
// the sampling frequency and widens every biome region.
func NewBiomeClassifier(nc *NoiseContext, biomeScale float64) *BiomeClassifier {
	if !(biomeScale > 0) || math.IsInf(biomeScale, 0) {
		biomeScale = 1
	}
	return &BiomeClassifier{
		field:     nc.Field(ChannelBiome),
		frequency: biomeFrequency / biomeScale,
	}
}

// BiomeAt returns the unblended biome of world column x.
func (bc *BiomeClassifier) BiomeAt(x int) Biome {
	return biomeForValue(bc.field.Probability1D(float64(x), bc.frequency))
}

// BiomeBlender softens hard biome boundaries. Near a boundary each column
// makes one deterministic weighted pick between its own biome and the
// nearest different neighbour; the pick decides which biome drives that
// column's generation. Nothing blended is stored in the tiles.
type BiomeBlender struct {
	classifier *BiomeClassifier
	field      NoiseField
	seed       int64
	enabled    bool
}

func NewBiomeBlender(nc *NoiseContext, classifier *BiomeClassifier, enabled bool) *BiomeBlender {
	return &BiomeBlender{
		classifier: classifier,
		field:      nc.Field(ChannelBlend),
		seed:       nc.Seed(),
		enabled:    enabled,
	}
}

// BlendWeight returns the probability that column x takes the biome of
// its nearest different neighbour, and that neighbour. The weight is zero
// when blending is disabled or no boundary lies within blendRadius.
func (bb *BiomeBlender) BlendWeight(x int) (float64, Biome) {
	own := bb.classifier.BiomeAt(x)
	if !bb.enabled {
		return 0, own
	}
	for d := 1; d <= blendRadius; d++ {
		for _, nx := range [2]int{x - d, x + d} {
			nb := bb.classifier.BiomeAt(nx)
			if nb == own {
				continue
			}
			proximity := 1 - float64(d)/float64(blendRadius+1)
			s := bb.field.Probability1D(float64(x), blendFrequency)
			w := smoothstep(proximity) * (0.5 + s) * 0.5
			return clamp01(w), nb
		}
	}
	return 0, own
}

// BiomeAt returns the effective biome of column x.
func (bb *BiomeBlender) BiomeAt(x int) Biome {
	own := bb.classifier.BiomeAt(x)
	w, other := bb.BlendWeight(x)
	if w > 0 && Hash(bb.seed, x, 0, TagBlend) < w {
		return other
	}
	return own
}

func smoothstep(t float64) float64 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}
