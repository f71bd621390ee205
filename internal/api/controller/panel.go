package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/nightlights/internal/domain/dto"
	"github.com/ougirez/nightlights/internal/pkg/store"
)

const defaultPanelLimit = 1000

func (c *Controller) ListPanel(ctx echo.Context) error {
	var req dto.ListPanelRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	opts := store.ListPanelRecordsOpts{
		RunID:       req.RunID,
		Description: req.Description,
		Province:    req.Province,
		Year:        req.Year,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}
	if opts.Limit == 0 {
		opts.Limit = defaultPanelLimit
	}

	records, err := c.panel.ListPanelRecords(ctx.Request().Context(), opts)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, records)
}
