package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/shandysiswandi/devlink/internal/pkg/clock"
	"github.com/shandysiswandi/devlink/internal/pkg/config"
	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/pkg/goroutine"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/pkg/uid"
	"github.com/shandysiswandi/devlink/internal/pkg/validator"
	"github.com/shandysiswandi/devlink/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxSessions = 1000
	defaultAuthPath    = "/dashboard"
	defaultReentryPath = "/register"
)

type session struct {
	ctrl *Controller
	view *broadcaster
}

// Usecase is the registry of live verification sessions.
type Usecase struct {
	backend   Backend
	cfg       config.Config
	clock     clock.Clocker
	gm        *goroutine.Manager
	ins       instrument.Instrumentation
	validator validator.Validator
	uuid      uid.StringID

	mu       sync.RWMutex
	sessions map[string]*session
	shutdown bool
}

type Dependency struct {
	Backend    Backend
	Config     config.Config
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Instrument instrument.Instrumentation
	Validator  validator.Validator
	UUID       uid.StringID
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		backend:   dep.Backend,
		cfg:       dep.Config,
		clock:     dep.Clock,
		gm:        dep.Goroutine,
		ins:       dep.Instrument,
		validator: dep.Validator,
		uuid:      dep.UUID,
		sessions:  make(map[string]*session),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

// traceInput records the outcome of an edit or resend on span. Ignored input
// is an error for the trace only; callers still answer 200.
func traceInput(span trace.Span, accepted bool, state entity.Snapshot) {
	span.SetAttributes(
		attribute.Bool("verification.accepted", accepted),
		attribute.Int("verification.filled", state.Digits.Filled()),
		attribute.String("verification.phase", state.Phase.String()),
	)
	if !accepted {
		span.RecordError(entity.ErrInputIgnored)
	}
}

func (s *Usecase) timing() Timing {
	t := DefaultTiming()
	if s.cfg == nil {
		return t
	}

	if v := s.cfg.GetInt("verification.cooldown_seconds"); v > 0 {
		t.CooldownSeconds = v
	}
	if s.cfg.GetString("verification.initial_cooldown_seconds") != "" {
		t.InitialCooldownSeconds = max(s.cfg.GetInt("verification.initial_cooldown_seconds"), 0)
	}
	if v := s.cfg.GetMillisecond("verification.success_delay_ms"); v > 0 {
		t.SuccessDelay = v
	}
	if v := s.cfg.GetMillisecond("verification.shake_ms"); v > 0 {
		t.Shake = v
	}
	return t
}

func (s *Usecase) stringOr(key, fallback string) string {
	if s.cfg == nil {
		return fallback
	}
	if v := strings.TrimSpace(s.cfg.GetString(key)); v != "" {
		return v
	}
	return fallback
}

func (s *Usecase) maxSessions() int {
	if s.cfg == nil {
		return defaultMaxSessions
	}
	if v := s.cfg.GetInt("app.sessions.max"); v > 0 {
		return v
	}
	return defaultMaxSessions
}

func (s *Usecase) newView() *broadcaster {
	return newBroadcaster(
		s.stringOr("verification.navigation.authenticated_path", defaultAuthPath),
		s.stringOr("verification.navigation.reentry_path", defaultReentryPath),
	)
}

func (s *Usecase) get(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, goerror.NewBusiness(entity.MsgSessionNotFound, goerror.CodeNotFound)
	}
	return sess, nil
}

// remove runs on the session's event loop during teardown, so it must never
// wait on that controller.
func (s *Usecase) remove(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.view.close()
	}
}

// Len returns the number of live sessions.
func (s *Usecase) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Shutdown tears down every live session.
func (s *Usecase) Shutdown(ctx context.Context) {
	s.mu.Lock()
	s.shutdown = true
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.ctrl.Close()
	}
	slog.InfoContext(ctx, "verification sessions shut down", "count", len(live))
}
