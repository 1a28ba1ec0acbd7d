package gen

// World dimensions. Row 0 is the top of the world; rows grow downward.
const (
	ChunkWidth  = 16
	ChunkHeight = 96
	BedrockRow  = ChunkHeight - 1

	BaseSurfaceRow  = 32
	MinSurfaceRow   = 6
	MaxSurfaceRow   = 60
	HeightAmplitude = 8.0
	TopsoilDepth    = 4
	DeepStoneRow    = 64
	CaveMinDepth    = 5

	// seaSpan is how far below BaseSurfaceRow the sea sits at water level 0.
	seaSpan = 8.0
)

// Sampling frequencies and thresholds.
const (
	biomeFrequency      = 0.004
	heightFrequency     = 0.035
	caveFrequency       = 0.08
	caveBaseThreshold   = 0.28
	oreFrequency        = 0.35
	oreBaseChance       = 0.12
	rareOreExtraChance  = 0.3
	vegetationFrequency = 0.21

	blendRadius    = 8
	blendFrequency = 0.05

	amplifiedModifier = 1.5
)
