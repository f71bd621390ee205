package raster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/catalog"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const defaultReaders = 4

// LoadOpts selects a band and a half-open capture window [Start, End).
type LoadOpts struct {
	Band    string
	Start   time.Time
	End     time.Time
	Readers int
}

type Service struct {
	catalog catalog.Catalog
}

func NewRasterService(c catalog.Catalog) *Service {
	return &Service{catalog: c}
}

func (s *Service) LoadFrames(ctx context.Context, opts LoadOpts) ([]*domain.RasterFrame, error) {
	if opts.Band == "" {
		return nil, fmt.Errorf("empty band: %w", constants.ErrInvalidConfig)
	}
	if !opts.End.After(opts.Start) {
		return nil, fmt.Errorf("window end %s is not after start %s: %w",
			opts.End.Format(time.DateOnly), opts.Start.Format(time.DateOnly), constants.ErrInvalidConfig)
	}
	if opts.Readers <= 0 {
		opts.Readers = defaultReaders
	}

	entries, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog.List: %w", err)
	}

	inWindow := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if InWindow(e.Captured, opts.Start, opts.End) {
			inWindow = append(inWindow, e)
		}
	}
	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].Captured.Before(inWindow[j].Captured)
	})

	logger.Infof(ctx, "raster series: %d of %d frames in window", len(inWindow), len(entries))

	frames := make([]*domain.RasterFrame, len(inWindow))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Readers)

	for i, e := range inWindow {
		eg.Go(func() error {
			grid, err := s.catalog.Open(egCtx, e, opts.Band)
			if err != nil {
				return fmt.Errorf("catalog.Open, frame-%s: %w", e.ID, err)
			}

			frames[i] = NewFrame(e.ID, e.Captured, opts.Band, grid)
			return nil
		})
	}

	if err = eg.Wait(); err != nil {
		return nil, fmt.Errorf("err in goroutine: %w", err)
	}

	return frames, nil
}

// NewFrame tags a grid with the calendar year and month of its capture date.
func NewFrame(id string, captured time.Time, band string, grid *domain.Grid) *domain.RasterFrame {
	utc := captured.UTC()
	return &domain.RasterFrame{
		ID:       id,
		Captured: utc,
		Year:     utc.Year(),
		Month:    int(utc.Month()),
		Band:     band,
		Grid:     grid,
	}
}

func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
