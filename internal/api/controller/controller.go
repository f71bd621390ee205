package controller

import (
	"context"

	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/store"
	"github.com/ougirez/nightlights/internal/service/auth"
	"github.com/ougirez/nightlights/internal/service/pipeline"
)

type PanelReader interface {
	ListPanelRecords(ctx context.Context, opts store.ListPanelRecordsOpts) ([]*domain.PanelRecord, error)
}

type Controller struct {
	pipeline *pipeline.Service
	auth     *auth.Service
	panel    PanelReader
	defaults pipeline.Config
}

func NewController(pipeline *pipeline.Service, auth *auth.Service, panel PanelReader, defaults pipeline.Config) *Controller {
	return &Controller{pipeline: pipeline, auth: auth, panel: panel, defaults: defaults}
}
