package usecase

import (
	"context"

	"github.com/shandysiswandi/devlink/internal/verification/entity"
)

type SetDigitInput struct {
	SessionID string
	Index     int
	Value     string
}

type PasteInput struct {
	SessionID string
	Index     int
	Code      string
}

type BackspaceInput struct {
	SessionID string
	Index     int
}

// InputOutput reports whether an edit was applied. Ignored input is not an
// error; Accepted is false and State is unchanged.
type InputOutput struct {
	Accepted bool
	State    entity.Snapshot
}

func (s *Usecase) SetDigit(ctx context.Context, in SetDigitInput) (*InputOutput, error) {
	_, span := s.startSpan(ctx, "SetDigit")
	defer span.End()

	sess, err := s.get(in.SessionID)
	if err != nil {
		return nil, err
	}

	ok := sess.ctrl.SetDigit(in.Index, in.Value)
	state := sess.ctrl.Snapshot()
	traceInput(span, ok, state)

	return &InputOutput{Accepted: ok, State: state}, nil
}

func (s *Usecase) Backspace(ctx context.Context, in BackspaceInput) (*InputOutput, error) {
	_, span := s.startSpan(ctx, "Backspace")
	defer span.End()

	sess, err := s.get(in.SessionID)
	if err != nil {
		return nil, err
	}

	ok := sess.ctrl.HandleBackspaceAt(in.Index)
	state := sess.ctrl.Snapshot()
	traceInput(span, ok, state)

	return &InputOutput{Accepted: ok, State: state}, nil
}

func (s *Usecase) Paste(ctx context.Context, in PasteInput) (*InputOutput, error) {
	_, span := s.startSpan(ctx, "Paste")
	defer span.End()

	sess, err := s.get(in.SessionID)
	if err != nil {
		return nil, err
	}

	ok := sess.ctrl.Paste(in.Index, in.Code)
	state := sess.ctrl.Snapshot()
	traceInput(span, ok, state)

	return &InputOutput{Accepted: ok, State: state}, nil
}
