package world

import "github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"

// ChunkOf returns the index of the chunk containing world column x.
// It floors, so x = -1 is in chunk -1.
func ChunkOf(x int) int {
	q := x / gen.ChunkWidth
	if x%gen.ChunkWidth < 0 {
		q--
	}
	return q
}

// LocalOf returns the column of x inside its chunk, in [0, ChunkWidth).
func LocalOf(x int) int {
	r := x % gen.ChunkWidth
	if r < 0 {
		r += gen.ChunkWidth
	}
	return r
}

// WorldX is the inverse of ChunkOf and LocalOf.
func WorldX(index, local int) int {
	return index*gen.ChunkWidth + local
}
