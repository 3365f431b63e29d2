package verification

import (
	"errors"

	"github.com/shandysiswandi/devlink/internal/pkg/clock"
	"github.com/shandysiswandi/devlink/internal/pkg/config"
	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/pkg/goroutine"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/pkg/router"
	"github.com/shandysiswandi/devlink/internal/pkg/uid"
	"github.com/shandysiswandi/devlink/internal/pkg/validator"
	"github.com/shandysiswandi/devlink/internal/verification/inbound"
	"github.com/shandysiswandi/devlink/internal/verification/outbound/api"
	"github.com/shandysiswandi/devlink/internal/verification/usecase"
)

type Dependency struct {
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Router     *router.Router             `validate:"required"`

	// Backend replaces the auth service client built from config.
	Backend usecase.Backend
}

func New(dep Dependency) (*usecase.Usecase, error) {
	if dep.Validator == nil {
		return nil, goerror.NewServer(errors.New("validator is required"))
	}
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	backend := dep.Backend
	if backend == nil {
		baseURL := dep.Config.GetString("backend.base_url")
		if baseURL == "" {
			return nil, goerror.NewServer(errors.New("backend.base_url is required"))
		}

		backend = api.NewClient(api.Config{
			BaseURL:    baseURL,
			VerifyPath: dep.Config.GetString("backend.verify_path"),
			ResendPath: dep.Config.GetString("backend.resend_path"),
			Timeout:    dep.Config.GetSecond("backend.timeout_seconds"),
			MaxRetries: dep.Config.GetUint64("backend.max_retries"),
		}, dep.Instrument)
	}

	uc := usecase.New(usecase.Dependency{
		Backend:    backend,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Goroutine:  dep.Goroutine,
		Instrument: dep.Instrument,
		Validator:  dep.Validator,
		UUID:       dep.UUID,
	})

	limit := router.RateLimit(
		int64(dep.Config.GetInt("app.server.rate_limit.requests")),
		dep.Config.GetSecond("app.server.rate_limit.period_seconds"),
	)
	inbound.RegisterHTTPEndpoint(dep.Router, uc, limit)

	return uc, nil
}
