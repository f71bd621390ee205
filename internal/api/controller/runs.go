package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/nightlights/internal/domain/dto"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/service/pipeline"
)

func (c *Controller) SubmitRun(ctx echo.Context) error {
	var req dto.SubmitRunRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	cfg, err := c.runConfig(&req)
	if err != nil {
		return err
	}

	run, err := c.pipeline.Submit(ctx.Request().Context(), cfg)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusAccepted, run)
}

func (c *Controller) GetRun(ctx echo.Context) error {
	id := ctx.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("run-%s: %w", id, constants.ErrRunNotFound)
	}

	run, err := c.pipeline.GetRun(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, run)
}

func (c *Controller) runConfig(req *dto.SubmitRunRequest) (pipeline.Config, error) {
	cfg := c.defaults

	if req.Description != nil {
		cfg.Description = *req.Description
	}
	if req.Scale != nil {
		cfg.Scale = *req.Scale
	}
	if req.Destination != nil {
		cfg.Destination = *req.Destination
	}
	if req.Start != nil {
		t, err := time.Parse(time.DateOnly, *req.Start)
		if err != nil {
			return cfg, fmt.Errorf("start: %w", constants.ErrBadRequest)
		}
		cfg.Start = t
	}
	if req.End != nil {
		t, err := time.Parse(time.DateOnly, *req.End)
		if err != nil {
			return cfg, fmt.Errorf("end: %w", constants.ErrBadRequest)
		}
		cfg.End = t
	}

	return cfg, nil
}
