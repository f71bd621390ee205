package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
)

// RunStore persists run status. store.Store implements it against Postgres.
type RunStore interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	UpdateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
}

// MemoryRuns keeps runs for the lifetime of the process.
type MemoryRuns struct {
	mu   sync.RWMutex
	runs map[string]domain.Run
}

func NewMemoryRuns() *MemoryRuns {
	return &MemoryRuns{runs: make(map[string]domain.Run)}
}

func (m *MemoryRuns) CreateRun(_ context.Context, run *domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[run.ID] = *run
	return nil
}

func (m *MemoryRuns) UpdateRun(_ context.Context, run *domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run-%s: %w", run.ID, constants.ErrRunNotFound)
	}
	m.runs[run.ID] = *run
	return nil
}

func (m *MemoryRuns) GetRun(_ context.Context, id string) (*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run-%s: %w", id, constants.ErrRunNotFound)
	}
	return &run, nil
}
