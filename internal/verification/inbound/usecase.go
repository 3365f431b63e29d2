package inbound

import (
	"context"

	"github.com/shandysiswandi/devlink/internal/verification/entity"
	"github.com/shandysiswandi/devlink/internal/verification/usecase"
)

type ucStream interface {
	Stream(ctx context.Context, sessionID string) (<-chan entity.Event, error)
}

type uc interface {
	ucStream

	Open(ctx context.Context, in usecase.OpenInput) (*usecase.OpenOutput, error)
	Get(ctx context.Context, sessionID string) (*entity.Snapshot, error)
	SetDigit(ctx context.Context, in usecase.SetDigitInput) (*usecase.InputOutput, error)
	Backspace(ctx context.Context, in usecase.BackspaceInput) (*usecase.InputOutput, error)
	Paste(ctx context.Context, in usecase.PasteInput) (*usecase.InputOutput, error)
	Resend(ctx context.Context, sessionID string) (*usecase.ResendOutput, error)
	Remount(ctx context.Context, sessionID string) (*usecase.ResendOutput, error)
	Close(ctx context.Context, sessionID string) error
}
