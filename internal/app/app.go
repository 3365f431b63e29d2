package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shandysiswandi/devlink/internal/pkg/clock"
	"github.com/shandysiswandi/devlink/internal/pkg/config"
	"github.com/shandysiswandi/devlink/internal/pkg/goroutine"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/pkg/router"
	"github.com/shandysiswandi/devlink/internal/pkg/uid"
	"github.com/shandysiswandi/devlink/internal/pkg/validator"
	"github.com/shandysiswandi/devlink/internal/verification/usecase"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// modules
	verification *usecase.Usecase

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

const defaultShutdownTimeout = 10 * time.Second

// ShutdownTimeout is the budget Stop gets to drain sessions and servers.
func (a *App) ShutdownTimeout() time.Duration {
	if d := a.config.GetSecond("app.server.shutdown_timeout_seconds"); d > 0 {
		return d
	}
	return defaultShutdownTimeout
}
