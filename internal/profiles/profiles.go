// Package profiles loads user-defined generation profiles.
//
// A profile set is a YAML document listing named profiles. Each profile
// starts from a base (a built-in preset or an earlier profile in the set)
// and overrides some of its fields.
//
//	profiles:
//	  - name: Glacier
//	    base: LargeBiomes
//	    water_level: 0.7
//	    vegetation_density: 0.3
package profiles

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

// ErrUnknownPreset is returned when a profile name resolves to neither a
// loaded profile nor a built-in preset.
var ErrUnknownPreset = errors.New("profiles: unknown preset")

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("profile-set.json", schemaJSON)

type entry struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
	Seed *int64 `yaml:"seed"`

	BiomeScale        *float64 `yaml:"biome_scale"`
	HeightMultiplier  *float64 `yaml:"height_multiplier"`
	CaveDensity       *float64 `yaml:"cave_density"`
	VegetationDensity *float64 `yaml:"vegetation_density"`
	WaterLevel        *float64 `yaml:"water_level"`
	OreDensity        *float64 `yaml:"ore_density"`

	Amplified     *bool `yaml:"amplified"`
	MiniBiomes    *bool `yaml:"mini_biomes"`
	OreVeins      *bool `yaml:"ore_veins"`
	BiomeBlending *bool `yaml:"biome_blending"`

	Noise *gen.NoiseBackend `yaml:"noise"`
}

type document struct {
	Profiles []entry `yaml:"profiles"`
}

type resolved struct {
	profile gen.Profile
	seed    *int64
}

// Set is a collection of named profiles. The zero value is an empty set.
type Set struct {
	byName map[string]resolved
	names  []string
}

// Parse validates and decodes a profile-set document.
func Parse(data []byte) (*Set, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode profile set: %w", err)
	}
	s := &Set{}
	for _, e := range doc.Profiles {
		if err := s.add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// validate checks the document against the embedded schema. The schema
// validator expects JSON values, so the YAML tree is normalized first.
func validate(data []byte) error {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decode profile set: %w", err)
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("normalize profile set: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("normalize profile set: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid profile set: %w", err)
	}
	return nil
}

func (s *Set) add(e entry) error {
	key := strings.ToLower(e.Name)
	if _, dup := s.byName[key]; dup {
		return fmt.Errorf("duplicate profile %q", e.Name)
	}

	base := e.Base
	if base == "" {
		base = gen.DefaultPreset
	}
	var p gen.Profile
	if r, ok := s.byName[strings.ToLower(base)]; ok {
		p = r.profile
	} else if preset, ok := gen.LookupPreset(base, 0); ok {
		p = preset
	} else {
		return fmt.Errorf("profile %q: base %q: %w", e.Name, base, ErrUnknownPreset)
	}

	p.Name = e.Name
	setFloat(&p.BiomeScale, e.BiomeScale)
	setFloat(&p.HeightMultiplier, e.HeightMultiplier)
	setFloat(&p.CaveDensity, e.CaveDensity)
	setFloat(&p.VegetationDensity, e.VegetationDensity)
	setFloat(&p.WaterLevel, e.WaterLevel)
	setFloat(&p.OreDensity, e.OreDensity)
	setBool(&p.Amplified, e.Amplified)
	setBool(&p.MiniBiomes, e.MiniBiomes)
	setBool(&p.OreVeins, e.OreVeins)
	setBool(&p.BiomeBlending, e.BiomeBlending)
	if e.Noise != nil {
		p.Noise = *e.Noise
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", e.Name, err)
	}

	if s.byName == nil {
		s.byName = make(map[string]resolved)
	}
	s.byName[key] = resolved{profile: p, seed: e.Seed}
	s.names = append(s.names, e.Name)
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Load reads a profile set from a file, or merges every *.yaml and *.yml
// file of a directory in lexical order.
func Load(path string) (*Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	if !info.IsDir() {
		return loadFile(path)
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, fmt.Errorf("load profiles: %w", err)
		}
		files = append(files, m...)
	}
	sort.Strings(files)

	out := &Set{}
	for _, f := range files {
		s, err := loadFile(f)
		if err != nil {
			return nil, err
		}
		if err := out.merge(s); err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
	}
	return out, nil
}

func loadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Set) merge(other *Set) error {
	for _, name := range other.names {
		key := strings.ToLower(name)
		if _, dup := s.byName[key]; dup {
			return fmt.Errorf("duplicate profile %q", name)
		}
		if s.byName == nil {
			s.byName = make(map[string]resolved)
		}
		s.byName[key] = other.byName[key]
		s.names = append(s.names, name)
	}
	return nil
}

// Names returns the profile names in definition order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Lookup returns the named profile for a world seed. A profile that pins
// its own seed ignores the argument.
func (s *Set) Lookup(name string, seed int64) (gen.Profile, bool) {
	if s == nil {
		return gen.Profile{}, false
	}
	r, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return gen.Profile{}, false
	}
	p := r.profile
	p.Seed = seed
	if r.seed != nil {
		p.Seed = *r.seed
	}
	return p, true
}

// Resolve looks a name up in s (which may be nil), then among the
// built-in presets.
func Resolve(s *Set, name string, seed int64) (gen.Profile, error) {
	if p, ok := s.Lookup(name, seed); ok {
		return p, nil
	}
	if p, ok := gen.LookupPreset(name, seed); ok {
		return p, nil
	}
	return gen.Profile{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
