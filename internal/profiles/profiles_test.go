package profiles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

const glacier = `
profiles:
  - name: Glacier
    base: LargeBiomes
    water_level: 0.7
    vegetation_density: 0.3
    noise: perlin
  - name: DeepGlacier
    base: glacier
    cave_density: 1.8
    seed: 99
`

func TestParseInheritsFromBase(t *testing.T) {
	s, err := Parse([]byte(glacier))
	require.NoError(t, err)
	assert.Equal(t, []string{"Glacier", "DeepGlacier"}, s.Names())

	p, ok := s.Lookup("glacier", 7)
	require.True(t, ok)
	large, _ := gen.LookupPreset("LargeBiomes", 7)
	assert.Equal(t, "Glacier", p.Name)
	assert.Equal(t, int64(7), p.Seed)
	assert.Equal(t, large.BiomeScale, p.BiomeScale)
	assert.Equal(t, 0.7, p.WaterLevel)
	assert.Equal(t, 0.3, p.VegetationDensity)
	assert.Equal(t, gen.NoisePerlin, p.Noise)

	deep, ok := s.Lookup("DeepGlacier", 7)
	require.True(t, ok)
	assert.Equal(t, int64(99), deep.Seed)
	assert.Equal(t, 1.8, deep.CaveDensity)
	assert.Equal(t, 0.7, deep.WaterLevel)
	assert.Equal(t, gen.NoisePerlin, deep.Noise)
}

func TestParseDefaultsToNormalBase(t *testing.T) {
	s, err := Parse([]byte("profiles:\n  - name: Calm\n    height_multiplier: 0.5\n"))
	require.NoError(t, err)
	p, ok := s.Lookup("Calm", 1)
	require.True(t, ok)
	normal, _ := gen.LookupPreset("Normal", 1)
	assert.Equal(t, 0.5, p.HeightMultiplier)
	assert.Equal(t, normal.CaveDensity, p.CaveDensity)
	assert.Equal(t, normal.Noise, p.Noise)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"missing profiles": "name: Lone\n",
		"empty list":       "profiles: []\n",
		"missing name":     "profiles:\n  - biome_scale: 2\n",
		"unknown field":    "profiles:\n  - name: X\n    lava: true\n",
		"zero biome scale": "profiles:\n  - name: X\n    biome_scale: 0\n",
		"water too high":   "profiles:\n  - name: X\n    water_level: 1.5\n",
		"negative caves":   "profiles:\n  - name: X\n    cave_density: -1\n",
		"bad noise":        "profiles:\n  - name: X\n    noise: worley\n",
		"bad name":         "profiles:\n  - name: \"9lives\"\n",
		"not yaml":         "profiles: [\n",
		"duplicate": `
profiles:
  - name: Twin
  - name: twin
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseUnknownBase(t *testing.T) {
	_, err := Parse([]byte("profiles:\n  - name: X\n    base: Volcanic\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}

func TestResolve(t *testing.T) {
	s, err := Parse([]byte(glacier))
	require.NoError(t, err)

	p, err := Resolve(s, "Glacier", 3)
	require.NoError(t, err)
	assert.Equal(t, "Glacier", p.Name)

	p, err = Resolve(s, "caverns", 3)
	require.NoError(t, err)
	assert.Equal(t, "Caverns", p.Name)
	assert.Equal(t, int64(3), p.Seed)

	p, err = Resolve(nil, "Flat", 3)
	require.NoError(t, err)
	assert.Equal(t, "Flat", p.Name)

	_, err = Resolve(s, "Volcanic", 3)
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestLoadDirectoryMergesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(glacier), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("profiles:\n  - name: Dunes\n    base: Barren\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Glacier", "DeepGlacier", "Dunes"}, s.Names())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("profiles:\n  - name: glacier\n"), 0o644))
	_, err = Load(dir)
	assert.Error(t, err)
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetchLocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "set.yaml")
	require.NoError(t, os.WriteFile(src, []byte(glacier), 0o644))
	dst := filepath.Join(t.TempDir(), "fetched.yaml")

	s, err := Fetch(context.Background(), src, dst)
	require.NoError(t, err)
	_, ok := s.Lookup("DeepGlacier", 0)
	assert.True(t, ok)
}

func TestFetchLocalDirectory(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "set.yaml"), []byte(glacier), 0o644))
	dst := filepath.Join(t.TempDir(), "profiles")

	s, err := Fetch(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Len(t, s.Names(), 2)
}

func TestFetchReplacesOnlyItsDestination(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "set.yaml"), []byte(glacier), 0o644))

	parent := t.TempDir()
	notes := filepath.Join(parent, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep me"), 0o644))
	dst := filepath.Join(parent, "profiles")

	for i := 0; i < 2; i++ {
		s, err := Fetch(context.Background(), src, dst)
		require.NoError(t, err)
		assert.Len(t, s.Names(), 2)
	}

	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"notes.txt", "profiles"}, names)
}

func TestFetchRefusesForeignDestination(t *testing.T) {
	src := filepath.Join(t.TempDir(), "set.yaml")
	require.NoError(t, os.WriteFile(src, []byte(glacier), 0o644))

	dst := t.TempDir()
	notes := filepath.Join(dst, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep me"), 0o644))

	_, err := Fetch(context.Background(), src, dst)
	require.ErrorIs(t, err, ErrForeignDestination)
	_, err = os.Stat(notes)
	assert.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("profiles: [{name: 3}]"), 0o644))
	_, err = Fetch(context.Background(), src, bad)
	require.ErrorIs(t, err, ErrForeignDestination)
	data, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, "profiles: [{name: 3}]", string(data))
}
