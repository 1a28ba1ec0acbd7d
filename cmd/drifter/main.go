package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/config"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/host"
	"github.com/shifty81/ChroniclesOfADrifter-sub001/pkg/world/gen"
)

func main() {
	cfg := config.DefaultConfig()
	configPath := flag.String("config", "drifter.yaml", "path to YAML config file")
	listPresets := flag.Bool("presets", false, "list built-in presets and exit")

	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.Profile, "profile", cfg.Profile, "generation profile name")
	flag.StringVar(&cfg.ProfileFile, "profile-file", cfg.ProfileFile, "profile-set YAML file or directory")
	flag.StringVar(&cfg.Noise, "noise", cfg.Noise, "noise backend override: opensimplex, perlin or simplex")
	flag.IntVar(&cfg.RenderDistance, "render-distance", cfg.RenderDistance, "chunks kept loaded either side of the player")
	flag.IntVar(&cfg.KeepDistance, "keep-distance", cfg.KeepDistance, "distance in chunks beyond which chunks are evicted")
	flag.IntVar(&cfg.MaxResident, "max-resident", cfg.MaxResident, "cap on resident chunks (0 = none)")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent chunk generations (0 = GOMAXPROCS)")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "world data directory")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "diff store: memory, file, sqlite or leveldb")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flag.IntVar(&cfg.StartX, "start-x", cfg.StartX, "starting world column")
	flag.IntVar(&cfg.Speed, "speed", cfg.Speed, "columns walked per step")
	flag.IntVar(&cfg.Steps, "steps", cfg.Steps, "number of steps to walk")
	flag.IntVar(&cfg.DigEvery, "dig-every", cfg.DigEvery, "dig under the player every n steps (0 = never)")
	flag.IntVar(&cfg.Preview, "preview", cfg.Preview, "columns of ASCII preview to print (0 = none)")
	flag.Parse()

	if *listPresets {
		fmt.Println(strings.Join(gen.PresetNames(), "\n"))
		return
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile, found, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if found {
		config.Merge(cfg, fromFile, explicit)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	if found {
		log.Info("loaded config from file", "path", *configPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h, err := host.New(ctx, cfg, log)
	if err != nil {
		log.Error("open world", "error", err)
		os.Exit(1)
	}
	runErr := h.Run(ctx, os.Stdout)
	if err := h.Close(); err != nil {
		log.Error("close store", "error", err)
	}
	if runErr != nil {
		log.Error("world error", "error", runErr)
		os.Exit(1)
	}
}
