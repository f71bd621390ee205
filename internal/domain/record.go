package domain

type AggregateRecord struct {
	Province   string   `json:"province" db:"province"`
	Year       Year     `json:"year" db:"year"`
	Month      Month    `json:"month" db:"month"`
	MeanLights *float64 `json:"mean_lights" db:"mean_lights"`
}

type OutputTable = []AggregateRecord

// PanelRecord is an AggregateRecord persisted by a database export.
type PanelRecord struct {
	AggregateRecord
	RunID       string `json:"run_id" db:"run_id"`
	Description string `json:"description" db:"description"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
