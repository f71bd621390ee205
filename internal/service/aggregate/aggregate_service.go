package aggregate

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const ReducerMean = "mean"

type Opts struct {
	Reducer string
	Scale   float64
	Workers int
}

type Service struct{}

func NewAggregateService() *Service {
	return &Service{}
}

// Aggregate reduces every frame over every region and flattens the result in
// frame order. The table always holds len(frames)*len(regions) records; a pair
// without valid pixels keeps a nil mean.
func (s *Service) Aggregate(
	ctx context.Context,
	frames []*domain.RasterFrame,
	regions []*domain.Region,
	opts Opts,
) (domain.OutputTable, error) {
	if opts.Reducer == "" {
		opts.Reducer = ReducerMean
	}
	if opts.Reducer != ReducerMean {
		return nil, fmt.Errorf("%s: %w", opts.Reducer, constants.ErrUnsupportedReducer)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	coverages, err := s.coverages(ctx, frames, regions, opts)
	if err != nil {
		return nil, err
	}

	perFrame := make([][]domain.AggregateRecord, len(frames))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)

	for i, frame := range frames {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			var weights [][]Weight
			if frame.Grid != nil {
				weights = coverages[SpecOf(frame.Grid)]
			}

			records := make([]domain.AggregateRecord, 0, len(regions))
			for j, region := range regions {
				rec := domain.AggregateRecord{
					Province: region.Province,
					Year:     frame.Year,
					Month:    frame.Month,
				}
				if weights != nil {
					rec.MeanLights = WeightedMean(frame.Grid, weights[j])
				}
				records = append(records, rec)
			}

			perFrame[i] = records
			return nil
		})
	}

	if err = eg.Wait(); err != nil {
		return nil, fmt.Errorf("err in goroutine: %w", err)
	}

	table := make(domain.OutputTable, 0, len(frames)*len(regions))
	for _, records := range perFrame {
		table = append(table, records...)
	}

	logger.Info(ctx, "aggregated raster series",
		zap.Int("frames", len(frames)), zap.Int("regions", len(regions)), zap.Int("records", len(table)))

	return table, nil
}

// coverages computes region weights once per distinct grid georeference.
func (s *Service) coverages(
	ctx context.Context,
	frames []*domain.RasterFrame,
	regions []*domain.Region,
	opts Opts,
) (map[GridSpec][][]Weight, error) {
	out := make(map[GridSpec][][]Weight)
	for _, frame := range frames {
		if frame.Grid == nil {
			continue
		}
		spec := SpecOf(frame.Grid)
		if _, ok := out[spec]; ok {
			continue
		}

		weights := make([][]Weight, len(regions))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(opts.Workers)

		for j, region := range regions {
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				weights[j] = Coverage(spec, region.Geometry, opts.Scale)
				return nil
			})
		}

		if err := eg.Wait(); err != nil {
			return nil, fmt.Errorf("coverage, frame-%s: %w", frame.ID, err)
		}

		logger.Debugf(ctx, "computed coverage for grid %dx%d at scale %.0f", spec.NX, spec.NY, opts.Scale)
		out[spec] = weights
	}

	return out, nil
}
