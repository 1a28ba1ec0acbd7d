package world

import (
	"context"
	"fmt"
	"strings"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

var glyphs = map[gen.Tile]byte{
	gen.TileAir:       ' ',
	gen.TileGrass:     '"',
	gen.TileSand:      '.',
	gen.TileSnow:      '*',
	gen.TileMud:       '%',
	gen.TileGravel:    ':',
	gen.TileDirt:      '=',
	gen.TileStone:     '#',
	gen.TileDeepStone: '@',
	gen.TileBedrock:   'B',
	gen.TileWater:     '~',
	gen.TileIce:       '-',
	gen.TileCoalOre:   'c',
	gen.TileCopperOre: 'u',
	gen.TileIronOre:   'i',
	gen.TileSilverOre: 's',
	gen.TileGoldOre:   'g',
	gen.TileTallGrass: ',',
	gen.TileFlower:    'f',
	gen.TileBush:      'b',
	gen.TileOakTree:   'T',
	gen.TileBirchTree: 'Y',
	gen.TilePineTree:  'A',
	gen.TilePalmTree:  'P',
	gen.TileCactus:    '!',
	gen.TileDeadBush:  'x',
	gen.TileReed:      '|',
	gen.TileMushroom:  'm',
}

// Glyph returns the preview character of a tile.
func Glyph(t gen.Tile) byte {
	if g, ok := glyphs[t]; ok {
		return g
	}
	return '?'
}

// Preview renders world columns [fromX, toX] as text, one line per row.
// Vegetation is drawn in the air cell above the first non-air tile.
func (m *Manager) Preview(ctx context.Context, fromX, toX int) (string, error) {
	if toX < fromX {
		return "", fmt.Errorf("preview: empty range [%d, %d]", fromX, toX)
	}
	width := toX - fromX + 1
	grid := make([][]byte, gen.ChunkHeight)
	for y := range grid {
		grid[y] = make([]byte, width)
	}

	for x := fromX; x <= toX; x++ {
		e, err := m.entryFor(ctx, ChunkOf(x))
		if err != nil {
			return "", err
		}
		col := x - fromX
		lx := LocalOf(x)

		m.mu.RLock()
		top := -1
		for y := 0; y < gen.ChunkHeight; y++ {
			t := e.chunk.Tile(lx, y)
			grid[y][col] = Glyph(t)
			if top < 0 && t != gen.TileAir {
				top = y
			}
		}
		if v, ok := e.chunk.Vegetation(lx); ok && top > 0 {
			grid[top-1][col] = Glyph(v)
		}
		m.mu.RUnlock()
	}

	var b strings.Builder
	b.Grow(gen.ChunkHeight * (width + 1))
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
