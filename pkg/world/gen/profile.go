package gen

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Profile is the bundle of scale factors and feature toggles that
// parameterizes generation. It is a plain value: the generator keeps its
// own copy, so a Profile cannot change under a running world.
type Profile struct {
	Name string `yaml:"name" json:"name"`
	Seed int64  `yaml:"seed" json:"seed"`

	BiomeScale        float64 `yaml:"biome_scale" json:"biome_scale"`
	HeightMultiplier  float64 `yaml:"height_multiplier" json:"height_multiplier"`
	CaveDensity       float64 `yaml:"cave_density" json:"cave_density"`
	VegetationDensity float64 `yaml:"vegetation_density" json:"vegetation_density"`
	WaterLevel        float64 `yaml:"water_level" json:"water_level"`
	OreDensity        float64 `yaml:"ore_density" json:"ore_density"`

	Amplified     bool `yaml:"amplified" json:"amplified"`
	MiniBiomes    bool `yaml:"mini_biomes" json:"mini_biomes"`
	OreVeins      bool `yaml:"ore_veins" json:"ore_veins"`
	BiomeBlending bool `yaml:"biome_blending" json:"biome_blending"`

	Noise NoiseBackend `yaml:"noise" json:"noise"`
}

// DefaultPreset is the preset used whenever a name is unknown.
const DefaultPreset = "Normal"

var presets = map[string]Profile{
	"normal": {
		Name: "Normal", BiomeScale: 1, HeightMultiplier: 1, CaveDensity: 1,
		VegetationDensity: 1, WaterLevel: 0.5, OreDensity: 1,
		MiniBiomes: true, OreVeins: true, BiomeBlending: true,
	},
	"flat": {
		Name: "Flat", BiomeScale: 1, HeightMultiplier: 0.3, CaveDensity: 0.5,
		VegetationDensity: 1, WaterLevel: 0.5, OreDensity: 1,
		MiniBiomes: true, OreVeins: true, BiomeBlending: true,
	},
	"amplified": {
		Name: "Amplified", BiomeScale: 1, HeightMultiplier: 2, CaveDensity: 1.2,
		VegetationDensity: 1, WaterLevel: 0.5, OreDensity: 1, Amplified: true,
		MiniBiomes: true, OreVeins: true, BiomeBlending: true,
	},
	"largebiomes": {
		Name: "LargeBiomes", BiomeScale: 4, HeightMultiplier: 1, CaveDensity: 1,
		VegetationDensity: 1, WaterLevel: 0.5, OreDensity: 1,
		MiniBiomes: true, OreVeins: true, BiomeBlending: true,
	},
	"archipelago": {
		Name: "Archipelago", BiomeScale: 1, HeightMultiplier: 1.2, CaveDensity: 0.8,
		VegetationDensity: 1.1, WaterLevel: 0.9, OreDensity: 1,
		MiniBiomes: true, OreVeins: true, BiomeBlending: true,
	},
	"caverns": {
		Name: "Caverns", BiomeScale: 1, HeightMultiplier: 1, CaveDensity: 2,
		VegetationDensity: 0.8, WaterLevel: 0.5, OreDensity: 1.5,
		MiniBiomes: true, OreVeins: true, BiomeBlending: true,
	},
	"barren": {
		Name: "Barren", BiomeScale: 1, HeightMultiplier: 0.8, CaveDensity: 0.6,
		VegetationDensity: 0.2, WaterLevel: 0.2, OreDensity: 0.7,
	},
}

// PresetNames lists the built-in presets in display form, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// LookupPreset returns the preset with the given (case-insensitive) name.
func LookupPreset(name string, seed int64) (Profile, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, false
	}
	p.Seed = seed
	p.Noise = NoiseOpenSimplex
	return p, true
}

// ProfileByName returns the named preset, falling back to Normal for
// unknown names.
func ProfileByName(name string, seed int64) Profile {
	if p, ok := LookupPreset(name, seed); ok {
		return p
	}
	p, _ := LookupPreset(DefaultPreset, seed)
	return p
}

// CustomProfile builds a profile from caller-supplied values, replacing
// out-of-range values with usable ones.
func CustomProfile(p Profile) Profile {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = "Custom"
	}
	if !(p.BiomeScale > 0) || math.IsInf(p.BiomeScale, 0) {
		p.BiomeScale = 1
	}
	p.HeightMultiplier = nonNegative(p.HeightMultiplier)
	p.CaveDensity = nonNegative(p.CaveDensity)
	p.VegetationDensity = nonNegative(p.VegetationDensity)
	p.OreDensity = nonNegative(p.OreDensity)
	p.WaterLevel = clamp01(p.WaterLevel)
	p.Noise = ParseNoiseBackend(string(p.Noise))
	return p
}

// Validate reports every out-of-range field. CustomProfile never returns a
// profile that fails validation.
func (p Profile) Validate() error {
	var errs []error
	if !(p.BiomeScale > 0) || math.IsInf(p.BiomeScale, 0) {
		errs = append(errs, fmt.Errorf("biome_scale must be positive, got %v", p.BiomeScale))
	}
	check := func(name string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be a non-negative number, got %v", name, v))
		}
	}
	check("height_multiplier", p.HeightMultiplier)
	check("cave_density", p.CaveDensity)
	check("vegetation_density", p.VegetationDensity)
	check("ore_density", p.OreDensity)
	if !(p.WaterLevel >= 0 && p.WaterLevel <= 1) {
		errs = append(errs, fmt.Errorf("water_level must be within [0,1], got %v", p.WaterLevel))
	}
	if p.Noise != "" && ParseNoiseBackend(string(p.Noise)) != NoiseBackend(strings.ToLower(string(p.Noise))) {
		errs = append(errs, fmt.Errorf("unknown noise backend %q", p.Noise))
	}
	return errors.Join(errs...)
}

// SeaRow is the first row that floods when terrain lies below it.
func (p Profile) SeaRow() int {
	return BaseSurfaceRow + int(math.Round(seaSpan*(1-clamp01(p.WaterLevel))))
}

func nonNegative(v float64) float64 {
	if !(v >= 0) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
