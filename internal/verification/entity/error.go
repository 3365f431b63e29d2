package entity

import (
	"errors"

	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
)

var (
	// ErrInputIgnored marks a keystroke, paste or resend that was dropped
	// without changing state. It is never shown to the user.
	ErrInputIgnored = errors.New("verification: input ignored")
	// ErrMissingIdentity marks a session opened without a usable email.
	ErrMissingIdentity = errors.New("verification: missing identity")
)

const (
	MsgVerified        = "Account verified successfully"
	MsgResent          = "OTP resent successfully"
	MsgVerifyFailed    = "OTP verification failed"
	MsgResendFailed    = "Failed to resend OTP"
	MsgUnreachable     = "Unable to reach the server, please try again"
	MsgSessionNotFound = "Verification session not found"
	MsgTooManySessions = "Too many verification sessions"
)

// Operation names the backend call a failure came from.
type Operation int16

const (
	OperationVerify Operation = iota
	OperationResend
)

// Failure is the recoverable error class of a backend call.
type Failure int16

const (
	FailureNone Failure = iota
	FailureVerificationRejected
	FailureResendRejected
	FailureTransport
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureVerificationRejected:
		return "verification_rejected"
	case FailureResendRejected:
		return "resend_rejected"
	case FailureTransport:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Classify maps a backend error to its failure class. Transport failures
// follow the same control flow as rejections; only the message differs.
func Classify(op Operation, err error) Failure {
	if err == nil {
		return FailureNone
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Type() == goerror.TypeTransport {
		return FailureTransport
	}

	if op == OperationResend {
		return FailureResendRejected
	}
	return FailureVerificationRejected
}

// FailureMessage returns the user-facing text for a failed backend call.
func FailureMessage(op Operation, err error) string {
	fallback := MsgVerifyFailed
	if op == OperationResend {
		fallback = MsgResendFailed
	}
	if Classify(op, err) == FailureTransport {
		fallback = MsgUnreachable
	}
	return goerror.Message(err, fallback)
}
