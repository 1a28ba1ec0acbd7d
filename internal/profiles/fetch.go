package profiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// ErrForeignDestination is returned by Fetch when dst already holds
// something other than a profile set.
var ErrForeignDestination = errors.New("destination is not a profile set")

// Fetch downloads a profile file or directory from any go-getter source
// (local path, http, git, s3, ...) and loads it. The download is staged
// next to dst and only swapped in once it loads; an existing dst is
// replaced only when it is itself a profile set.
func Fetch(ctx context.Context, src, dst string) (*Set, error) {
	dst = filepath.Clean(dst)
	if err := replaceable(dst); err != nil {
		return nil, err
	}

	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", parent, err)
	}
	stage, err := os.MkdirTemp(parent, ".profiles-*")
	if err != nil {
		return nil, fmt.Errorf("stage profiles: %w", err)
	}
	defer os.RemoveAll(stage)

	staged := filepath.Join(stage, filepath.Base(dst))
	if err := getter.GetAny(staged, src, getter.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("fetch profiles from %s: %w", src, err)
	}
	set, err := Load(staged)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(dst); err != nil {
		return nil, fmt.Errorf("clear %s: %w", dst, err)
	}
	if err := os.Rename(staged, dst); err != nil {
		return nil, fmt.Errorf("install profiles at %s: %w", dst, err)
	}
	return set, nil
}

// replaceable accepts a missing path, an empty directory, a profile file,
// or a directory holding nothing but profile files.
func replaceable(dst string) error {
	info, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect %s: %w", dst, err)
	}
	if info.IsDir() {
		entries, err := os.ReadDir(dst)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", dst, err)
		}
		if len(entries) == 0 {
			return nil
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				return fmt.Errorf("%w: %s contains %s", ErrForeignDestination, dst, e.Name())
			}
		}
	}
	if _, err := Load(dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrForeignDestination, dst, err)
	}
	return nil
}
