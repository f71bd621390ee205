package domain

import "time"

type RunStatus string

const (
	RunStatusQueued  RunStatus = "queued"
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

type Run struct {
	ID          string    `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	Status      RunStatus `json:"status" db:"status"`
	Rows        int       `json:"rows" db:"rows"`
	Error       string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (r *Run) Finished() bool {
	return r.Status == RunStatusDone || r.Status == RunStatusFailed
}
