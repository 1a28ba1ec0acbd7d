package gen

import (
	"math"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// NoiseBackend names a coherent-noise implementation.
type NoiseBackend string

const (
	NoiseOpenSimplex NoiseBackend = "opensimplex"
	NoisePerlin      NoiseBackend = "perlin"
	NoiseSimplex     NoiseBackend = "simplex"
)

// ParseNoiseBackend resolves a backend name; unknown names yield the
// default opensimplex backend.
func ParseNoiseBackend(name string) NoiseBackend {
	switch NoiseBackend(strings.ToLower(strings.TrimSpace(name))) {
	case NoisePerlin:
		return NoisePerlin
	case NoiseSimplex:
		return NoiseSimplex
	default:
		return NoiseOpenSimplex
	}
}

type sampler interface {
	Eval2(x, y float64) float64
}

type perlinSampler struct{ p *perlin.Perlin }

func (s perlinSampler) Eval2(x, y float64) float64 { return s.p.Noise2D(x, y) }

// line is the fixed second coordinate used for 1D samples. Lattice rows
// of gradient noise are identically zero, so it sits between them.
const line = 0.5

func newSampler(backend NoiseBackend, seed int64) sampler {
	switch backend {
	case NoisePerlin:
		return perlinSampler{p: perlin.NewPerlin(2, 2, 3, seed)}
	case NoiseSimplex:
		return newSimplexNoise(seed)
	default:
		return opensimplex.New(seed)
	}
}

// NoiseField is a seeded coherent-noise sampler. Sampling is a pure
// function of the seed, the coordinates and the frequency.
type NoiseField struct {
	src sampler
	cal func() *calibration
}

// NewNoiseField creates a field for the given backend and seed.
func NewNoiseField(backend NoiseBackend, seed int64) NoiseField {
	src := newSampler(backend, seed)
	return NoiseField{
		src: src,
		cal: sync.OnceValue(func() *calibration { return measure(src) }),
	}
}

// Sample1D returns noise in [-1, 1] along a line.
func (f NoiseField) Sample1D(x, frequency float64) float64 {
	return clampSigned(f.src.Eval2(x*frequency, line))
}

// Sample2D returns noise in [-1, 1].
func (f NoiseField) Sample2D(x, y, frequency float64) float64 {
	return clampSigned(f.src.Eval2(x*frequency, y*frequency))
}

// Unit1D maps Sample1D into [0, 1).
func (f NoiseField) Unit1D(x, frequency float64) float64 {
	return toUnit(f.Sample1D(x, frequency))
}

// Unit2D maps Sample2D into [0, 1).
func (f NoiseField) Unit2D(x, y, frequency float64) float64 {
	return toUnit(f.Sample2D(x, y, frequency))
}

// Probability1D maps Sample1D through the field's measured distribution
// into [0, 1). Unlike Unit1D the result is uniform: a band of width w
// holds about a fraction w of all columns. It is monotonic in the raw
// sample, so neighbouring columns still get neighbouring values.
func (f NoiseField) Probability1D(x, frequency float64) float64 {
	v := f.Sample1D(x, frequency)
	if f.cal == nil {
		return toUnit(v)
	}
	return f.cal().probability(v)
}

func clampSigned(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

// maxUnit is the largest float64 below 1.
var maxUnit = math.Nextafter(1, 0)

func toUnit(v float64) float64 {
	return clampUnit((v + 1) / 2)
}

func clampUnit(u float64) float64 {
	if u >= 1 {
		return maxUnit
	}
	if u < 0 || math.IsNaN(u) {
		return 0
	}
	return u
}

const (
	calibrationKnots   = 512
	calibrationSamples = 16384

	// calibrationStep keeps calibration samples off the lattice.
	calibrationStep = 0.6180339887498949
)

// calibration is the empirical distribution of a field's 1D samples,
// stored as calibrationKnots+1 evenly spaced quantiles.
type calibration struct {
	quantiles [calibrationKnots + 1]float64
}

// measure samples src along the same line Sample1D uses, centred on the
// origin. The result depends only on src, so it is as deterministic as
// the field itself.
func measure(src sampler) *calibration {
	samples := make([]float64, calibrationSamples)
	for i := range samples {
		x := float64(i-calibrationSamples/2) * calibrationStep
		samples[i] = clampSigned(src.Eval2(x, line))
	}
	slices.Sort(samples)

	cal := &calibration{}
	last := len(samples) - 1
	for k := range cal.quantiles {
		cal.quantiles[k] = samples[k*last/calibrationKnots]
	}
	return cal
}

// probability interpolates the CDF linearly between quantiles.
func (c *calibration) probability(v float64) float64 {
	q := c.quantiles[:]
	k := sort.SearchFloat64s(q, v)
	switch {
	case k == 0:
		return 0
	case k > calibrationKnots:
		return maxUnit
	}
	lo, hi := q[k-1], q[k]
	frac := 0.0
	if hi > lo {
		frac = (v - lo) / (hi - lo)
	}
	return clampUnit((float64(k-1) + frac) / calibrationKnots)
}

// Channel identifies one independent noise field of a NoiseContext.
type Channel int

const (
	ChannelBiome Channel = iota
	ChannelHeight
	ChannelCave
	ChannelOre
	ChannelVegetation
	ChannelBlend
	ChannelMiniBiome

	channelCount
)

// channelSeedOffset separates the channels the way each generator
// derives its own seed from the world seed.
var channelSeedOffset = [channelCount]int64{
	ChannelBiome:      100,
	ChannelHeight:     0,
	ChannelCave:       300,
	ChannelOre:        500,
	ChannelVegetation: 600,
	ChannelBlend:      700,
	ChannelMiniBiome:  800,
}

// NoiseContext is the immutable set of noise fields for one world. It is
// built once per (seed, backend) and passed explicitly to every
// generation step; nothing in this package keeps global noise state.
type NoiseContext struct {
	seed    int64
	backend NoiseBackend
	fields  [channelCount]NoiseField
}

// NewNoiseContext builds every channel for the given seed.
func NewNoiseContext(seed int64, backend NoiseBackend) *NoiseContext {
	nc := &NoiseContext{seed: seed, backend: backend}
	for ch := Channel(0); ch < channelCount; ch++ {
		nc.fields[ch] = NewNoiseField(backend, seed+channelSeedOffset[ch])
	}
	return nc
}

func (nc *NoiseContext) Seed() int64           { return nc.seed }
func (nc *NoiseContext) Backend() NoiseBackend { return nc.backend }

// Field returns the noise field of a channel.
func (nc *NoiseContext) Field(ch Channel) NoiseField {
	return nc.fields[ch]
}
