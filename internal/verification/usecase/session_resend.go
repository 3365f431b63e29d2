package usecase

import (
	"context"

	"github.com/shandysiswandi/devlink/internal/verification/entity"
)

type ResendOutput struct {
	Started bool
	State   entity.Snapshot
}

// Resend is the explicit, user-initiated resend.
func (s *Usecase) Resend(ctx context.Context, sessionID string) (*ResendOutput, error) {
	_, span := s.startSpan(ctx, "Resend")
	defer span.End()

	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	ok := sess.ctrl.RequestResend(false)
	state := sess.ctrl.Snapshot()
	traceInput(span, ok, state)

	return &ResendOutput{Started: ok, State: state}, nil
}

// Remount re-runs the on-mount hook of a live session, e.g. after the view
// reloads. The automatic resend still fires at most once.
func (s *Usecase) Remount(ctx context.Context, sessionID string) (*ResendOutput, error) {
	_, span := s.startSpan(ctx, "Remount")
	defer span.End()

	sess, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	ok := sess.ctrl.MaybeAutoResendOnMount()
	state := sess.ctrl.Snapshot()
	traceInput(span, ok, state)

	return &ResendOutput{Started: ok, State: state}, nil
}
