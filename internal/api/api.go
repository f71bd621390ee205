package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/nightlights/internal/api/controller"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/ougirez/nightlights/internal/service/auth"
	"github.com/ougirez/nightlights/internal/service/pipeline"
)

type Opts struct {
	Pipeline *pipeline.Service
	// Defaults is the run definition that submitted overrides apply to.
	Defaults pipeline.Config
	// Panel serves stored panel records; nil disables /panel.
	Panel    controller.PanelReader
	LogLevel string
}

type APIService struct {
	router      *echo.Echo
	authService *auth.Service
}

// Serve blocks until the listener fails or Shutdown is called. Only a listener failure is fatal.
func (svc *APIService) Serve(addr string) {
	if err := svc.serve(addr); err != nil {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) serve(addr string) error {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(opts Opts) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(gommonLevel(opts.LogLevel))
	svc.router.JSONSerializer = sonicSerializer{}
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.Recover())
	svc.router.HTTPErrorHandler = httpErrorHandler

	svc.authService = auth.NewService()

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(opts.Pipeline, svc.authService, opts.Panel, opts.Defaults)

	admin := api.Group("/admin")
	admin.POST("/login", cntrl.LoginAdmin)

	runs := api.Group("/runs")
	runs.POST("", cntrl.SubmitRun, svc.AdminMiddleware)
	runs.GET("/:id", cntrl.GetRun)

	if opts.Panel != nil {
		api.GET("/panel", cntrl.ListPanel)
	}

	return svc, nil
}

func gommonLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
