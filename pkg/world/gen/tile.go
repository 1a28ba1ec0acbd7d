package gen

import (
	"fmt"
	"strings"
)

// Tile is a single material cell in the world grid. The set of tiles is
// closed; every cell of a chunk holds exactly one Tile.
type Tile uint8

const (
	TileAir Tile = iota
	TileGrass
	TileSand
	TileSnow
	TileMud
	TileGravel
	TileDirt
	TileStone
	TileDeepStone
	TileBedrock
	TileWater
	TileIce

	TileCoalOre
	TileCopperOre
	TileIronOre
	TileSilverOre
	TileGoldOre

	TileTallGrass
	TileFlower
	TileBush
	TileOakTree
	TileBirchTree
	TilePineTree
	TilePalmTree
	TileCactus
	TileDeadBush
	TileReed
	TileMushroom

	tileCount
)

var tileNames = [tileCount]string{
	TileAir:       "air",
	TileGrass:     "grass",
	TileSand:      "sand",
	TileSnow:      "snow",
	TileMud:       "mud",
	TileGravel:    "gravel",
	TileDirt:      "dirt",
	TileStone:     "stone",
	TileDeepStone: "deep_stone",
	TileBedrock:   "bedrock",
	TileWater:     "water",
	TileIce:       "ice",
	TileCoalOre:   "coal_ore",
	TileCopperOre: "copper_ore",
	TileIronOre:   "iron_ore",
	TileSilverOre: "silver_ore",
	TileGoldOre:   "gold_ore",
	TileTallGrass: "tall_grass",
	TileFlower:    "flower",
	TileBush:      "bush",
	TileOakTree:   "oak_tree",
	TileBirchTree: "birch_tree",
	TilePineTree:  "pine_tree",
	TilePalmTree:  "palm_tree",
	TileCactus:    "cactus",
	TileDeadBush:  "dead_bush",
	TileReed:      "reed",
	TileMushroom:  "mushroom",
}

func (t Tile) String() string {
	if t < tileCount {
		return tileNames[t]
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

// ParseTile resolves a tile by its lowercase name.
func ParseTile(name string) (Tile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range tileNames {
		if n == name {
			return Tile(i), nil
		}
	}
	return TileAir, fmt.Errorf("unknown tile %q", name)
}

// Valid reports whether t is a member of the tile set.
func (t Tile) Valid() bool { return t < tileCount }

// IsSolid reports whether the tile blocks movement and counts as ground.
func (t Tile) IsSolid() bool {
	switch t {
	case TileAir, TileWater:
		return false
	}
	return t < TileTallGrass
}

func (t Tile) IsOre() bool {
	return t >= TileCoalOre && t <= TileGoldOre
}

func (t Tile) IsVegetation() bool {
	return t >= TileTallGrass && t < tileCount
}

// isBaseStone reports whether ores and clusters may replace the tile.
func (t Tile) isBaseStone() bool {
	return t == TileStone || t == TileDeepStone
}

// MarshalText encodes the tile by name, so persisted data survives
// reordering of the enum.
func (t Tile) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tile %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Tile) UnmarshalText(b []byte) error {
	v, err := ParseTile(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
