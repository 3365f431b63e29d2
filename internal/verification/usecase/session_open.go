package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/verification/entity"
)

type OpenInput struct {
	Email      string
	AutoResend bool
}

type OpenOutput struct {
	SessionID  string
	NavigateTo string
	State      *entity.Snapshot
}

// Open mounts a verification screen. A missing or malformed email does not
// create a session; the output carries the re-entry path instead.
func (s *Usecase) Open(ctx context.Context, in OpenInput) (*OpenOutput, error) {
	ctx, span := s.startSpan(ctx, "Open")
	defer span.End()

	params := entity.LaunchParams{
		Identity:            strings.TrimSpace(strings.ToLower(in.Email)),
		AutoResendRequested: in.AutoResend,
	}
	if err := s.validator.Validate(params); err != nil {
		slog.WarnContext(ctx, "verification launch params rejected", "error", err)
		params.Identity = ""
	}

	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil, goerror.NewBusiness("Service is shutting down", goerror.CodeUnavailable)
	}
	if params.Identity != "" && len(s.sessions) >= s.maxSessions() {
		s.mu.Unlock()
		slog.WarnContext(ctx, "verification session limit reached", "max", s.maxSessions())
		return nil, goerror.NewBusiness(entity.MsgTooManySessions, goerror.CodeTooManyRequest)
	}

	id := s.uuid.Generate()
	view := s.newView()

	ctrl, err := NewController(ctx, ControllerDependency{
		SessionID:  id,
		Params:     params,
		Backend:    s.backend,
		View:       view,
		Clock:      s.clock,
		Goroutine:  s.gm,
		Instrument: s.ins,
		Timing:     s.timing(),
		OnClose:    s.remove,
	})
	if err != nil {
		s.mu.Unlock()
		view.close()
		return &OpenOutput{NavigateTo: view.NavigatedTo()}, nil
	}
	s.sessions[id] = &session{ctrl: ctrl, view: view}
	s.mu.Unlock()

	slog.InfoContext(ctx, "verification session opened", "session_id", id, "auto_resend", params.AutoResendRequested)
	ctrl.MaybeAutoResendOnMount()

	state := ctrl.Snapshot()
	return &OpenOutput{SessionID: id, State: &state}, nil
}
