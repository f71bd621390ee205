package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/store/xpgx"
)

const exportRunsColumns = "id, description, status, rows, error, created_at, updated_at"

func (s *store) CreateRun(ctx context.Context, run *domain.Run) error {
	query := builder().Insert(tableExportRuns).
		Columns(strings.Split(exportRunsColumns, ", ")...).
		Values(run.ID, run.Description, run.Status, run.Rows, run.Error, run.CreatedAt, run.UpdatedAt)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *store) UpdateRun(ctx context.Context, run *domain.Run) error {
	query := builder().Update(tableExportRuns).
		SetMap(map[string]interface{}{
			"status":     run.Status,
			"rows":       run.Rows,
			"error":      run.Error,
			"updated_at": run.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": run.ID})

	tag, err := s.pool.Execx(ctx, query)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run-%s: %w", run.ID, constants.ErrRunNotFound)
	}
	return nil
}

func (s *store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	query := builder().Select(strings.Split(exportRunsColumns, ", ")...).
		From(tableExportRuns).
		Where(squirrel.Eq{"id": id})

	run, err := xpgx.Getx[domain.Run](ctx, s.pool, query)
	if err != nil {
		err = wrapErr(err)
		if err == constants.ErrDBNotFound {
			return nil, fmt.Errorf("run-%s: %w", id, constants.ErrRunNotFound)
		}
		return nil, fmt.Errorf("select run: %w", err)
	}

	return run, nil
}
