package entity

// Phase is the lifecycle stage of a verification session. Exactly one phase
// is active at a time.
type Phase int16

const (
	PhaseIdle Phase = iota
	PhaseVerifying
	PhaseVerifiedSuccess
	PhaseVerifiedError
	PhaseResending
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseVerifying:
		return "verifying"
	case PhaseVerifiedSuccess:
		return "verified_success"
	case PhaseVerifiedError:
		return "verified_error"
	case PhaseResending:
		return "resending"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// AcceptsInput reports whether digit edits and resend requests are allowed.
func (p Phase) AcceptsInput() bool {
	return p == PhaseIdle || p == PhaseVerifiedError
}
