package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

func TestChunkCoordinates(t *testing.T) {
	tests := []struct {
		x, chunk, local int
	}{
		{0, 0, 0},
		{15, 0, 15},
		{16, 1, 0},
		{-1, -1, 15},
		{-16, -1, 0},
		{-17, -2, 15},
		{511, 31, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.chunk, ChunkOf(tt.x), "ChunkOf(%d)", tt.x)
		assert.Equal(t, tt.local, LocalOf(tt.x), "LocalOf(%d)", tt.x)
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	for x := -1000; x <= 1000; x++ {
		l := LocalOf(x)
		require.True(t, l >= 0 && l < gen.ChunkWidth)
		require.Equal(t, x, WorldX(ChunkOf(x), l))
	}
}
