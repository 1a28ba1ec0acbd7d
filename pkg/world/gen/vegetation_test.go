package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVegetationCoverage(t *testing.T) {
	assert.InDelta(t, 0.60, Coverage(BiomeForest, 1), 1e-9)
	assert.InDelta(t, 0.05, Coverage(BiomeDesert, 1), 1e-9)
	assert.InDelta(t, 0.10, Coverage(BiomeDesert, 2), 1e-9)
	assert.Zero(t, Coverage(BiomeForest, 0))
}

func TestVegetationDensityNeverNegativeNone(t *testing.T) {
	for b := Biome(0); b < biomeCount; b++ {
		slots := scaledSlots(b, 25)
		var sum float64
		for _, s := range slots {
			require.GreaterOrEqual(t, s.width, 0.0)
			sum += s.width
		}
		assert.InDelta(t, 1.0, sum, 1e-9, b.String())
	}
}

func TestVegetationPickPartition(t *testing.T) {
	vp := NewVegetationPlacer(NewNoiseContext(1, NoiseOpenSimplex), 1)
	assert.Equal(t, TileCactus, vp.Pick(BiomeDesert, 0.01, 0))
	assert.Equal(t, TileDeadBush, vp.Pick(BiomeDesert, 0.04, 0))
	assert.Equal(t, TileAir, vp.Pick(BiomeDesert, 0.05, 0))
	assert.Equal(t, TileAir, vp.Pick(BiomeDesert, 0.99, 0))
	assert.Equal(t, TileTallGrass, vp.Pick(BiomePlains, 0.0, 0))
	assert.Equal(t, TileFlower, vp.Pick(BiomePlains, 0.35, 0))
	assert.Equal(t, TileAir, vp.Pick(Biome(99), 0.9, 0))
}

func TestForestTreeCoinFlip(t *testing.T) {
	vp := NewVegetationPlacer(NewNoiseContext(1, NoiseOpenSimplex), 1)
	counts := map[Tile]int{}
	const n = 5000
	for x := 0; x < n; x++ {
		counts[vp.Pick(BiomeForest, 0.1, x)]++
	}
	require.Len(t, counts, 2)
	assert.InDelta(t, 0.3, float64(counts[TileBirchTree])/n, 0.03)
	assert.Equal(t, vp.Pick(BiomeForest, 0.1, 77), vp.Pick(BiomeForest, 0.1, 77))
}

func TestVegetationSkipsUngeneratedChunk(t *testing.T) {
	vp := NewVegetationPlacer(NewNoiseContext(1, NoiseOpenSimplex), 5)
	c := NewChunk(0)
	for x := 0; x < ChunkWidth; x++ {
		c.set(x, 10, TileGrass)
	}
	vp.Place(c, nil)
	for x := 0; x < ChunkWidth; x++ {
		_, ok := c.Vegetation(x)
		assert.False(t, ok)
	}
}

func TestVegetationOnlyOnEligibleSurfaces(t *testing.T) {
	g := NewGenerator(ProfileByName("Normal", 99))
	placed := 0
	for idx := -15; idx <= 15; idx++ {
		c := g.Baseline(idx)
		features := g.MiniBiomes().FeaturesBetween(idx*ChunkWidth, idx*ChunkWidth+ChunkWidth-1)
	columns:
		for x := 0; x < ChunkWidth; x++ {
			v, ok := c.Vegetation(x)
			if !ok {
				continue
			}
			placed++
			require.True(t, v.IsVegetation())
			for _, f := range features {
				if f.Covers(idx*ChunkWidth + x) {
					continue columns
				}
			}
			top, found := shallowestSolid(c, x)
			require.True(t, found)
			require.True(t, decorationEligible(c.Tile(x, top)), "vegetation %s on %s", v, c.Tile(x, top))
		}
	}
	assert.Greater(t, placed, 0)
}

func TestClearingVegetationKeepsTerrain(t *testing.T) {
	g := NewGenerator(ProfileByName("Normal", 99))
	for idx := 0; idx < 8; idx++ {
		c := g.Baseline(idx)
		before := c.Tiles()
		for x := 0; x < ChunkWidth; x++ {
			c.SetVegetation(x, TileOakTree)
			c.SetVegetation(x, TileAir)
			_, ok := c.Vegetation(x)
			require.False(t, ok)
		}
		require.Equal(t, before, c.Tiles())
	}
}

func TestVegetationRealizedCoverage(t *testing.T) {
	for _, backend := range allBackends {
		t.Run(string(backend), func(t *testing.T) {
			nc := NewNoiseContext(424242, backend)
			bc := NewBiomeClassifier(nc, 1)
			vp := NewVegetationPlacer(nc, 1)
			field := nc.Field(ChannelVegetation)

			const n = 300000
			var columns, covered [biomeCount]int
			for x := -n / 2; x < n/2; x++ {
				b := bc.BiomeAt(x)
				columns[b]++
				p := field.Probability1D(float64(x), vegetationFrequency)
				if vp.Pick(b, p, x) != TileAir {
					covered[b]++
				}
			}
			for b := Biome(0); b < biomeCount; b++ {
				require.Greater(t, columns[b], 5000, b.String())
				want := Coverage(b, 1)
				got := float64(covered[b]) / float64(columns[b])
				assert.InDelta(t, want, got, 0.02+want/4, "%s: want %.3f got %.3f", b, want, got)
			}
		})
	}
}
