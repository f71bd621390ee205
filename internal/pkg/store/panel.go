package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/store/xpgx"
)

const (
	panelRecordsColumns = "run_id, description, province, year, month, mean_lights"

	insertChunk = 1000
)

// InsertPanelRecords replaces the rows of runID with table.
func (s *store) InsertPanelRecords(ctx context.Context, runID, description string, table domain.OutputTable) error {
	if _, err := s.pool.Execx(ctx, builder().Delete(tablePanelRecords).Where(squirrel.Eq{"run_id": runID})); err != nil {
		return fmt.Errorf("delete panel records: %w", err)
	}

	for _, query := range insertPanelQueries(runID, description, table) {
		if _, err := s.pool.Execx(ctx, query); err != nil {
			return fmt.Errorf("insert panel records: %w", err)
		}
	}

	return nil
}

func insertPanelQueries(runID, description string, table domain.OutputTable) []squirrel.InsertBuilder {
	var queries []squirrel.InsertBuilder
	for start := 0; start < len(table); start += insertChunk {
		end := min(start+insertChunk, len(table))

		query := builder().Insert(tablePanelRecords).Columns(strings.Split(panelRecordsColumns, ", ")...)
		for _, rec := range table[start:end] {
			query = query.Values(runID, description, rec.Province, rec.Year, rec.Month, rec.MeanLights)
		}
		queries = append(queries, query)
	}
	return queries
}

type ListPanelRecordsOpts struct {
	RunID       string
	Description string
	Province    string
	Year        int
	Limit       uint64
	Offset      uint64
}

func listPanelQuery(opts ListPanelRecordsOpts) squirrel.SelectBuilder {
	query := builder().
		Select(strings.Split(panelRecordsColumns, ", ")...).
		From(tablePanelRecords).
		OrderBy("run_id", "year", "month", "province")

	if opts.RunID != "" {
		query = query.Where(squirrel.Eq{"run_id": opts.RunID})
	}
	if opts.Description != "" {
		query = query.Where(squirrel.Eq{"description": opts.Description})
	}
	if opts.Province != "" {
		query = query.Where(squirrel.ILike{"province": opts.Province})
	}
	if opts.Year != 0 {
		query = query.Where(squirrel.Eq{"year": opts.Year})
	}
	if opts.Limit != 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset != 0 {
		query = query.Offset(opts.Offset)
	}

	return query
}

func (s *store) ListPanelRecords(ctx context.Context, opts ListPanelRecordsOpts) ([]*domain.PanelRecord, error) {
	records, err := xpgx.Selectx[domain.PanelRecord](ctx, s.pool, listPanelQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("select panel records: %w", wrapErr(err))
	}

	return records, nil
}
