package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/devlink/internal/verification/entity"
)

func (s *Usecase) Get(ctx context.Context, sessionID string) (*entity.Snapshot, error) {
	_, span := s.startSpan(ctx, "Get")
	defer span.End()

	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.ctrl.Snapshot()
	return &state, nil
}

// Close unmounts a session.
func (s *Usecase) Close(ctx context.Context, sessionID string) error {
	ctx, span := s.startSpan(ctx, "Close")
	defer span.End()

	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}

	sess.ctrl.Close()
	slog.InfoContext(ctx, "verification session unmounted", "session_id", sessionID)
	return nil
}

// Stream subscribes to a session's events until ctx is done or the session
// tears down. The first event is always the current state.
func (s *Usecase) Stream(ctx context.Context, sessionID string) (<-chan entity.Event, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.view.subscribe(ctx), nil
}
