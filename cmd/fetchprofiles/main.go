package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shifty81/ChroniclesOfADrifter-sub001/internal/profiles"
)

func main() {
	var (
		src = flag.String("src", "", "go-getter source of a profile set (path, URL, git::..., s3::...)")
		out = flag.String("o", "./profiles", "output path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *src == "" {
		log.Error("source required")
		os.Exit(2)
	}
	if *out == "" {
		log.Error("output path required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("start downloading profiles", "src", *src, "dst", *out)
	set, err := profiles.Fetch(ctx, *src, *out)
	if err != nil {
		log.Error("fetch profiles", "error", err)
		os.Exit(1)
	}
	log.Info("done downloading profiles", "dst", *out, "profiles", set.Names())
}
