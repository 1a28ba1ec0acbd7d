package gen

// Generator runs the full generation pipeline for chunks of one world.
// Everything it reads during generation is immutable after construction,
// so Generate may run for different chunks on different goroutines.
type Generator struct {
	profile Profile
	noise   *NoiseContext

	classifier *BiomeClassifier
	blender    *BiomeBlender
	columns    *ColumnGenerator
	caves      *CaveGenerator
	ores       *OreGenerator
	mini       *MiniBiomeInjector
	vegetation *VegetationPlacer
}

// NewGenerator builds a generator for a profile. The profile is
// sanitized with CustomProfile first, so any value is usable.
func NewGenerator(p Profile) *Generator {
	p = CustomProfile(p)
	nc := NewNoiseContext(p.Seed, p.Noise)
	classifier := NewBiomeClassifier(nc, p.BiomeScale)
	blender := NewBiomeBlender(nc, classifier, p.BiomeBlending)
	return &Generator{
		profile:    p,
		noise:      nc,
		classifier: classifier,
		blender:    blender,
		columns:    NewColumnGenerator(nc, p),
		caves:      NewCaveGenerator(nc, p.CaveDensity),
		ores:       NewOreGenerator(nc, p),
		mini:       NewMiniBiomeInjector(nc, blender, p.MiniBiomes),
		vegetation: NewVegetationPlacer(nc, p.VegetationDensity),
	}
}

// Profile returns the generator's (sanitized) profile.
func (g *Generator) Profile() Profile { return g.profile }

// Noise returns the generator's noise context.
func (g *Generator) Noise() *NoiseContext { return g.noise }

// Classifier exposes the raw biome classifier.
func (g *Generator) Classifier() *BiomeClassifier { return g.classifier }

// Ores exposes the ore generator for cluster queries.
func (g *Generator) Ores() *OreGenerator { return g.ores }

// MiniBiomes exposes the mini-biome injector.
func (g *Generator) MiniBiomes() *MiniBiomeInjector { return g.mini }

// BiomeAt returns the effective (blended) biome of world column x.
func (g *Generator) BiomeAt(x int) Biome {
	return g.blender.BiomeAt(x)
}

// SurfaceRow returns the generated surface row of world column x, before
// any mini-biome override.
func (g *Generator) SurfaceRow(x int) int {
	return g.columns.SurfaceRow(x, g.BiomeAt(x))
}

// Generate fills c. It is a no-op for a chunk that has already been
// generated, so tiles changed after generation are never reverted.
func (g *Generator) Generate(c *Chunk) {
	if c.generated {
		return
	}
	base := c.Index * ChunkWidth

	// Pass 1: biomes, surface rows and the column stacks.
	for lx := 0; lx < ChunkWidth; lx++ {
		wx := base + lx
		biome := g.BiomeAt(wx)
		surface := g.columns.SurfaceRow(wx, biome)
		c.biomes[lx] = biome
		c.surface[lx] = surface
		g.columns.Fill(c, lx, surface, biome)
	}

	// Pass 2: mini-biome overrides.
	features := g.mini.FeaturesBetween(base, base+ChunkWidth-1)
	for _, f := range features {
		f.Apply(c)
	}

	// Pass 3: caves.
	for lx := 0; lx < ChunkWidth; lx++ {
		g.caves.Carve(c, lx, c.surface[lx], c.biomes[lx])
	}

	// Pass 4: per-cell ores, then clusters.
	rng := newChunkRNG(g.profile.Seed, c.Index, 500)
	for lx := 0; lx < ChunkWidth; lx++ {
		g.ores.Place(c, lx, c.surface[lx], rng)
	}
	g.ores.PlaceClusters(c)

	// Pass 5: water.
	for lx := 0; lx < ChunkWidth; lx++ {
		g.columns.FloodColumn(c, lx, c.surface[lx])
	}

	c.generated = true
	c.dirty = false

	// Pass 6: vegetation runs on the finished terrain.
	g.vegetation.Place(c, features)
}

// Baseline generates a fresh, unmutated copy of chunk index.
func (g *Generator) Baseline(index int) *Chunk {
	c := NewChunk(index)
	g.Generate(c)
	return c
}
