package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/ougirez/nightlights/internal/service/aggregate"
	"github.com/ougirez/nightlights/internal/service/export"
	"github.com/ougirez/nightlights/internal/service/raster"
	"github.com/ougirez/nightlights/internal/service/region"
	"go.uber.org/zap"
)

type Service struct {
	regions    *region.Service
	rasters    *raster.Service
	aggregator *aggregate.Service
	exporters  map[string]*export.Service
	runs       RunStore

	now func() time.Time
}

// NewPipelineService wires the four stages. exporters is keyed by destination name.
func NewPipelineService(
	regions *region.Service,
	rasters *raster.Service,
	aggregator *aggregate.Service,
	exporters map[string]*export.Service,
	runs RunStore,
) *Service {
	return &Service{
		regions:    regions,
		rasters:    rasters,
		aggregator: aggregator,
		exporters:  exporters,
		runs:       runs,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one extraction synchronously. The returned run is final
// (done or failed); on failure the stage error is returned too.
func (s *Service) Run(ctx context.Context, cfg Config) (*domain.Run, error) {
	run, err := s.define(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return s.execute(ctx, run, cfg)
}

// Submit defines a run and executes it in the background. Progress is only
// observable through GetRun.
func (s *Service) Submit(ctx context.Context, cfg Config) (*domain.Run, error) {
	run, err := s.define(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queued := *run
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.setStatus(bgCtx, run, domain.RunStatusFailed, fmt.Errorf("panic: %v", r))
				logger.Errorf(bgCtx, "run %s panicked: %v", run.ID, r)
			}
		}()

		_, err := s.execute(bgCtx, run, cfg)
		if err != nil {
			logger.Errorf(ctx, "run %s failed: %s", run.ID, err.Error())
		}
	}()

	return &queued, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return s.runs.GetRun(ctx, id)
}

func (s *Service) define(ctx context.Context, cfg Config) (*domain.Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, ok := s.exporters[cfg.Destination]; !ok {
		return nil, fmt.Errorf("destination %s: %w", cfg.Destination, constants.ErrUnknownSource)
	}

	now := s.now()
	run := &domain.Run{
		ID:          uuid.NewString(),
		Description: cfg.Description,
		Status:      domain.RunStatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("runs.CreateRun: %w", err)
	}
	return run, nil
}

func (s *Service) execute(ctx context.Context, run *domain.Run, cfg Config) (*domain.Run, error) {
	ctx = logger.With(ctx, zap.String(constants.CtxKeyRunID, run.ID))

	s.setStatus(ctx, run, domain.RunStatusRunning, nil)

	rows, err := s.stages(ctx, run, cfg)
	if err != nil {
		s.setStatus(ctx, run, domain.RunStatusFailed, err)
		return run, err
	}

	run.Rows = rows
	s.setStatus(ctx, run, domain.RunStatusDone, nil)
	logger.Info(ctx, "run finished", zap.String("description", run.Description), zap.Int("rows", rows))

	return run, nil
}

func (s *Service) stages(ctx context.Context, run *domain.Run, cfg Config) (int, error) {
	regions, err := s.regions.LoadRegions(ctx, region.LoadOpts{
		Country:      cfg.Country,
		CountryField: cfg.CountryField,
		NameField:    cfg.NameField,
		Aliases:      cfg.Aliases,
	})
	if err != nil {
		return 0, fmt.Errorf("regions.LoadRegions: %w", err)
	}

	frames, err := s.rasters.LoadFrames(ctx, raster.LoadOpts{
		Band:  cfg.Band,
		Start: cfg.Start,
		End:   cfg.End,
	})
	if err != nil {
		return 0, fmt.Errorf("rasters.LoadFrames: %w", err)
	}

	table, err := s.aggregator.Aggregate(ctx, frames, regions, aggregate.Opts{
		Reducer: cfg.Reducer,
		Scale:   cfg.Scale,
		Workers: cfg.Workers,
	})
	if err != nil {
		return 0, fmt.Errorf("aggregator.Aggregate: %w", err)
	}

	err = s.exporters[cfg.Destination].Export(ctx, table, export.Opts{
		RunID:       run.ID,
		Description: cfg.Description,
		Format:      cfg.Format,
	})
	if err != nil {
		return 0, fmt.Errorf("exporter.Export: %w", err)
	}

	return len(table), nil
}

// setStatus records the transition; a status write failure is logged and never fails the run.
func (s *Service) setStatus(ctx context.Context, run *domain.Run, status domain.RunStatus, cause error) {
	run.Status = status
	run.UpdatedAt = s.now()
	if cause != nil {
		run.Error = cause.Error()
	}

	if err := s.runs.UpdateRun(ctx, run); err != nil {
		logger.Errorf(ctx, "runs.UpdateRun: %s", err.Error())
	}
}
