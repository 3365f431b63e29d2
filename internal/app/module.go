package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/devlink/internal/verification"
)

func (a *App) initModules() {
	uc, err := verification.New(verification.Dependency{
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Clock:      a.clock,
		Goroutine:  a.goroutine,
		Validator:  a.validator,
		Router:     a.router,
	})
	if err != nil {
		slog.Error("failed to init module verification", "error", err)
		os.Exit(1)
	}

	a.verification = uc
}
