package gen

// FeatureTag separates independent uses of the position hash so that,
// for example, a copper cluster gate and an iron cluster gate at the same
// cell are uncorrelated.
type FeatureTag uint64

const (
	TagClusterCoal FeatureTag = iota + 1
	TagClusterCopper
	TagClusterIron
	TagClusterSilver
	TagClusterGold
	TagBlend
	TagTreeKind
	TagMiniBiomeOffset
	TagMiniBiomeRadius
	TagSimplexPermutation
)

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash64 mixes a seed, a cell position and a feature tag into 64 bits.
func Hash64(seed int64, x, y int, tag FeatureTag) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uint64(tag) * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// Hash returns a deterministic value in [0, 1) for (seed, position, tag).
//
// It is the only source of randomness for decisions that must not depend
// on call order: cluster gating, blend picks, tree kind coin-flips and
// mini-biome placement. Quantity rolls use chunkRNG instead.
func Hash(seed int64, x, y int, tag FeatureTag) float64 {
	return float64(Hash64(seed, x, y, tag)>>11) / (1 << 53)
}

// chunkRNG is the ambient lottery for quantity and type rolls. It is
// seeded per chunk so a chunk's rolls are reproducible, but the values
// depend on the order in which a pass consumes them.
type chunkRNG struct {
	state int64
}

func newChunkRNG(seed int64, index int, salt int64) *chunkRNG {
	s := seed ^ (int64(index)*341873128712 + salt*132897987541)
	r := &chunkRNG{state: s}
	r.next()
	return r
}

func (r *chunkRNG) next() int64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// nextN returns a value in [0, n).
func (r *chunkRNG) nextN(n int) int {
	v := int(r.next()>>33) % n
	if v < 0 {
		v = -v
	}
	return v
}

// float returns a value in [0, 1).
func (r *chunkRNG) float() float64 {
	return float64(uint64(r.next())>>11) / (1 << 53)
}
