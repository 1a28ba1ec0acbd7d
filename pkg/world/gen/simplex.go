package gen

// simplexNoise is the in-tree 2D simplex backend. Lattice corners pick
// their gradient through a permutation shuffled by the position hash, so
// fields built from the same seed agree everywhere.
type simplexNoise struct {
	perm [512]uint8
}

// simplexGrads are the lattice gradients: four axes and four diagonals.
var simplexGrads = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

const (
	skew2   = 0.36602540378443864676 // (sqrt(3) - 1) / 2
	unskew2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6

	// simplexScale brings the summed corner contributions to about [-1, 1].
	simplexScale = 70.0
)

func newSimplexNoise(seed int64) *simplexNoise {
	var p [256]uint8
	for i := range p {
		p[i] = uint8(i)
	}
	for i := len(p) - 1; i > 0; i-- {
		j := int(Hash64(seed, i, 0, TagSimplexPermutation) % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}

	sn := &simplexNoise{}
	for i := range sn.perm {
		sn.perm[i] = p[i&255]
	}
	return sn
}

// gradient returns the gradient of lattice corner (i, j).
func (sn *simplexNoise) gradient(i, j int) [2]float64 {
	h := sn.perm[(i&255)+int(sn.perm[j&255])]
	return simplexGrads[h&7]
}

func (sn *simplexNoise) Eval2(x, y float64) float64 {
	s := (x + y) * skew2
	i := fastFloor(x + s)
	j := fastFloor(y + s)
	t := float64(i+j) * unskew2
	dx := x - (float64(i) - t)
	dy := y - (float64(j) - t)

	// The middle corner steps along whichever axis dominates.
	mi, mj := 0, 1
	if dx > dy {
		mi, mj = 1, 0
	}
	corners := [3][2]int{{0, 0}, {mi, mj}, {1, 1}}

	var sum float64
	for _, c := range corners {
		shift := float64(c[0]+c[1]) * unskew2
		cx := dx - float64(c[0]) + shift
		cy := dy - float64(c[1]) + shift
		falloff := 0.5 - cx*cx - cy*cy
		if falloff <= 0 {
			continue
		}
		g := sn.gradient(i+c[0], j+c[1])
		falloff *= falloff
		sum += falloff * falloff * (g[0]*cx + g[1]*cy)
	}
	return simplexScale * sum
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}
