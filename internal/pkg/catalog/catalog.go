package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ougirez/nightlights/internal/domain"
)

// Entry is one raster of a series, known by its capture time before any pixel is read.
type Entry struct {
	ID       string
	Location string
	Captured time.Time
}

type Catalog interface {
	List(ctx context.Context) ([]Entry, error)
	Open(ctx context.Context, entry Entry, band string) (*domain.Grid, error)
}

// Dir is a local directory of monthly *.nc rasters.
type Dir struct {
	Path string
}

func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

func (d *Dir) List(ctx context.Context) ([]Entry, error) {
	paths, err := filepath.Glob(filepath.Join(d.Path, "*.nc"))
	if err != nil {
		return nil, fmt.Errorf("filepath.Glob: %w", err)
	}
	if len(paths) == 0 {
		if _, statErr := os.Stat(d.Path); statErr != nil {
			return nil, fmt.Errorf("raster catalog %s: %w", d.Path, statErr)
		}
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		captured, err := headerTime(p)
		if err != nil {
			return nil, fmt.Errorf("headerTime, file-%s: %w", p, err)
		}

		entries = append(entries, Entry{
			ID:       filepath.Base(p),
			Location: p,
			Captured: captured,
		})
	}

	return entries, nil
}

func (d *Dir) Open(_ context.Context, entry Entry, band string) (*domain.Grid, error) {
	return openGrid(entry.Location, band)
}

func headerTime(path string) (captured time.Time, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer func() {
		if closeErr := fh.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	f, err := cdf.Open(fh)
	if err != nil {
		return time.Time{}, fmt.Errorf("cdf.Open: %w", err)
	}

	return captureTime(f, filepath.Base(path))
}

func openGrid(path string, band string) (grid *domain.Grid, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := fh.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	f, err := cdf.Open(fh)
	if err != nil {
		return nil, fmt.Errorf("cdf.Open: %w", err)
	}

	grid, err = readGrid(f, band)
	if err != nil {
		return nil, fmt.Errorf("readGrid, file-%s: %w", filepath.Base(path), err)
	}

	return grid, nil
}
