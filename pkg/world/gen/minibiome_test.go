package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInjector(seed int64, enabled bool) *MiniBiomeInjector {
	nc := NewNoiseContext(seed, NoiseOpenSimplex)
	bc := NewBiomeClassifier(nc, 1)
	return NewMiniBiomeInjector(nc, NewBiomeBlender(nc, bc, true), enabled)
}

func TestMiniBiomeReproducible(t *testing.T) {
	a := newTestInjector(31337, true)
	b := newTestInjector(31337, true)
	for r := -500; r < 500; r++ {
		fa, oka := a.FeatureInRegion(r)
		fb, okb := b.FeatureInRegion(r)
		require.Equal(t, oka, okb)
		require.Equal(t, fa, fb)
		if !oka {
			continue
		}
		require.True(t, fa.Radius >= miniBiomeMinRadius && fa.Radius <= miniBiomeMaxRadius)
		require.Equal(t, r, floorDiv(fa.Center, miniBiomeSpacing))
		require.NotEqual(t, MiniBiomeNone, fa.Type)
	}
}

func TestMiniBiomeRare(t *testing.T) {
	mi := newTestInjector(5, true)
	found := 0
	const regions = 2000
	for r := 0; r < regions; r++ {
		if _, ok := mi.FeatureInRegion(r); ok {
			found++
		}
	}
	assert.Less(t, found, regions/5)
}

func TestMiniBiomeDisabled(t *testing.T) {
	mi := newTestInjector(5, false)
	for r := -100; r < 100; r++ {
		_, ok := mi.FeatureInRegion(r)
		require.False(t, ok)
	}
	assert.Empty(t, mi.FeaturesBetween(-10000, 10000))
}

func TestFeatureForBiome(t *testing.T) {
	kind, fill, veg := featureFor(BiomeDesert)
	assert.Equal(t, MiniBiomeOasis, kind)
	assert.Equal(t, TileWater, fill)
	assert.Equal(t, TilePalmTree, veg)

	kind, _, _ = featureFor(BiomeSnow)
	assert.Equal(t, MiniBiomeIceLake, kind)
	kind, _, _ = featureFor(BiomeRocky)
	assert.Equal(t, MiniBiomeBoulder, kind)
	kind, _, _ = featureFor(BiomeForest)
	assert.Equal(t, MiniBiomeClearing, kind)
	kind, _, _ = featureFor(BiomeSwamp)
	assert.Equal(t, MiniBiomeNone, kind)
}

func generatedFlatChunk(t *testing.T) *Chunk {
	t.Helper()
	p := ProfileByName("Flat", 1)
	p.MiniBiomes = false
	return NewGenerator(p).Baseline(0)
}

func TestApplyOasis(t *testing.T) {
	c := generatedFlatChunk(t)
	f := MiniBiomeFeature{Type: MiniBiomeOasis, Center: 8, Radius: 4, Fill: TileWater, Vegetation: TilePalmTree}
	f.Apply(c)
	s := c.Surface(8)
	for y := s; y < s+4; y++ {
		assert.Equal(t, TileWater, c.Tile(8, y))
	}
	assert.Equal(t, TilePalmTree, f.VegetationAt(12))
	assert.Equal(t, TilePalmTree, f.VegetationAt(4))
	assert.Equal(t, TileAir, f.VegetationAt(8))
	assert.Equal(t, TileBedrock, c.Tile(8, BedrockRow))
}

func TestApplyBoulder(t *testing.T) {
	c := generatedFlatChunk(t)
	f := MiniBiomeFeature{Type: MiniBiomeBoulder, Center: 3, Radius: 3, Fill: TileStone}
	f.Apply(c)
	s := c.Surface(3)
	for y := s - 3; y < s; y++ {
		assert.Equal(t, TileStone, c.Tile(3, y))
	}
	assert.NotEqual(t, TileStone, c.Tile(3, s-4))
	// Columns outside the radius are untouched.
	assert.Equal(t, TileAir, c.Tile(7, c.Surface(7)-1))
}

func TestFeatureCovers(t *testing.T) {
	f := MiniBiomeFeature{Type: MiniBiomeIceLake, Center: -10, Radius: 3}
	assert.True(t, f.Covers(-13))
	assert.True(t, f.Covers(-7))
	assert.False(t, f.Covers(-6))
	assert.False(t, MiniBiomeFeature{Center: 0, Radius: 5}.Covers(0))
}

func TestGeneratedChunkCarriesMiniBiome(t *testing.T) {
	seen := map[MiniBiomeType]bool{}
	for seed := int64(1); seed <= 20 && len(seen) < 4; seed++ {
		g := NewGenerator(ProfileByName("Normal", seed))
		for r := -200; r < 200; r++ {
			f, ok := g.MiniBiomes().FeatureInRegion(r)
			if !ok || seen[f.Type] {
				continue
			}
			seen[f.Type] = true

			idx := floorDiv(f.Center, ChunkWidth)
			c := g.Baseline(idx)
			lx := f.Center - idx*ChunkWidth
			s := c.Surface(lx)
			v, hasVeg := c.Vegetation(lx)

			switch f.Type {
			case MiniBiomeOasis:
				assert.Equal(t, TileWater, c.Tile(lx, s), "oasis seed %d", seed)
				assert.False(t, hasVeg)
			case MiniBiomeIceLake:
				assert.Equal(t, TileIce, c.Tile(lx, s), "ice lake seed %d", seed)
				assert.False(t, hasVeg)
			case MiniBiomeClearing:
				assert.Equal(t, TileGrass, c.Tile(lx, s), "clearing seed %d", seed)
				assert.Equal(t, TileTallGrass, v)
			case MiniBiomeBoulder:
				assert.Equal(t, TileStone, c.Tile(lx, s-1), "boulder seed %d", seed)
				assert.Equal(t, TileStone, c.Tile(lx, s-f.Radius))
			}
			assert.Equal(t, TileBedrock, c.Tile(lx, BedrockRow))
		}
	}
	assert.NotEmpty(t, seen)
}
