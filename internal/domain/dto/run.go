package dto

// SubmitRunRequest overrides parts of the server's default run definition.
// Dates are YYYY-MM-DD; the window is [Start, End).
type SubmitRunRequest struct {
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1,excludesall=/\\"`
	Scale       *float64 `json:"scale,omitempty" validate:"omitempty,gte=0"`
	Start       *string  `json:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End         *string  `json:"end,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Destination *string  `json:"destination,omitempty" validate:"omitempty,oneof=file minio postgres"`
}

type LoginAdminRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type ListPanelRequest struct {
	RunID       string `query:"run_id" validate:"omitempty,uuid"`
	Description string `query:"description"`
	Province    string `query:"province"`
	Year        int    `query:"year" validate:"omitempty,gte=1992,lte=2100"`
	Limit       uint64 `query:"limit" validate:"omitempty,lte=10000"`
	Offset      uint64 `query:"offset"`
}
