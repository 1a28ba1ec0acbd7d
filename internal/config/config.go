package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/storage"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

// Config holds the host configuration.
type Config struct {
	Seed        int64  `yaml:"seed"`
	Profile     string `yaml:"profile"`
	ProfileFile string `yaml:"profile_file"` // optional profile-set file or directory
	Noise       string `yaml:"noise"`        // overrides the profile's backend when set

	RenderDistance int `yaml:"render_distance"`
	KeepDistance   int `yaml:"keep_distance"`
	MaxResident    int `yaml:"max_resident"` // 0 = no cap
	Workers        int `yaml:"workers"`      // 0 = GOMAXPROCS

	DataDir string `yaml:"data_dir"`
	Store   string `yaml:"store"` // memory, file, sqlite or leveldb

	LogLevel string `yaml:"log_level"`

	// Walk drives the headless host: the player starts at StartX and moves
	// Speed columns per step for Steps steps.
	StartX int `yaml:"start_x"`
	Speed  int `yaml:"speed"`
	Steps  int `yaml:"steps"`
	// DigEvery mines the tile under the player every n steps; 0 never digs.
	DigEvery int `yaml:"dig_every"`

	// Preview prints this many columns around the player at the end; 0 disables it.
	Preview int `yaml:"preview"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Seed:           12345,
		Profile:        gen.DefaultPreset,
		RenderDistance: 3,
		KeepDistance:   5,
		DataDir:        "./world",
		Store:          string(storage.BackendFile),
		LogLevel:       "info",
		Speed:          4,
		Steps:          64,
		DigEvery:       8,
		Preview:        64,
	}
}

// Load reads a YAML config file on top of DefaultConfig. found is false
// when the file does not exist, in which case the defaults are returned.
func Load(path string) (cfg *Config, found bool, err error) {
	cfg = DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, true, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.RenderDistance < 0 {
		errs = append(errs, fmt.Errorf("render_distance must be >= 0, got %d", c.RenderDistance))
	}
	if c.KeepDistance < 0 {
		errs = append(errs, fmt.Errorf("keep_distance must be >= 0, got %d", c.KeepDistance))
	}
	if c.MaxResident < 0 {
		errs = append(errs, fmt.Errorf("max_resident must be >= 0, got %d", c.MaxResident))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must be >= 0, got %d", c.Steps))
	}
	if c.DigEvery < 0 {
		errs = append(errs, fmt.Errorf("dig_every must be >= 0, got %d", c.DigEvery))
	}
	if c.Preview < 0 {
		errs = append(errs, fmt.Errorf("preview must be >= 0, got %d", c.Preview))
	}
	if _, err := storage.ParseBackend(c.Store); err != nil {
		errs = append(errs, err)
	}
	if c.Store != string(storage.BackendMemory) && c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required for persistent stores"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["profile"] {
		cfg.Profile = fromFile.Profile
	}
	if !explicitFlags["profile-file"] {
		cfg.ProfileFile = fromFile.ProfileFile
	}
	if !explicitFlags["noise"] {
		cfg.Noise = fromFile.Noise
	}
	if !explicitFlags["render-distance"] {
		cfg.RenderDistance = fromFile.RenderDistance
	}
	if !explicitFlags["keep-distance"] {
		cfg.KeepDistance = fromFile.KeepDistance
	}
	if !explicitFlags["max-resident"] {
		cfg.MaxResident = fromFile.MaxResident
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["store"] {
		cfg.Store = fromFile.Store
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["start-x"] {
		cfg.StartX = fromFile.StartX
	}
	if !explicitFlags["speed"] {
		cfg.Speed = fromFile.Speed
	}
	if !explicitFlags["steps"] {
		cfg.Steps = fromFile.Steps
	}
	if !explicitFlags["dig-every"] {
		cfg.DigEvery = fromFile.DigEvery
	}
	if !explicitFlags["preview"] {
		cfg.Preview = fromFile.Preview
	}
}
