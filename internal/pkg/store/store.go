package store

import (
	"context"
	"fmt"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	Boundaries(ctx context.Context) ([]*domain.Boundary, error)
	InsertPanelRecords(ctx context.Context, runID, description string, table domain.OutputTable) error
	ListPanelRecords(ctx context.Context, opts ListPanelRecordsOpts) ([]*domain.PanelRecord, error)
	CreateRun(ctx context.Context, run *domain.Run) error
	UpdateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	EnsureSchema(ctx context.Context) error
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}

const schema = `
create table if not exists export_runs (
	id          uuid primary key,
	description text not null,
	status      text not null,
	rows        integer not null default 0,
	error       text not null default '',
	created_at  timestamptz not null default now(),
	updated_at  timestamptz not null default now()
);

create table if not exists panel_records (
	run_id      uuid not null references export_runs (id) on delete cascade,
	description text not null,
	province    text not null,
	year        integer not null,
	month       integer not null check (month between 1 and 12),
	mean_lights double precision
);

create index if not exists panel_records_run_idx on panel_records (run_id, province, year, month);
create index if not exists panel_records_description_idx on panel_records (description, province, year, month);
`

// EnsureSchema creates the run and panel tables. Panel rows are not unique per
// (run, province, month): unnamed regions and aliased names share a label.
// Boundaries are loaded out of band (shp2pgsql, ogr2ogr).
func (s *store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
