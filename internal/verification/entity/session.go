package entity

// LaunchParams are the inputs a verification screen is opened with.
type LaunchParams struct {
	Identity            string `validate:"required,email"`
	AutoResendRequested bool
}

// Snapshot is an immutable copy of a session's observable state.
type Snapshot struct {
	SessionID          string `json:"session_id"`
	Identity           string `json:"email"`
	Digits             Digits `json:"digits"`
	Focus              int    `json:"focus_index"`
	Cooldown           int    `json:"cooldown_seconds"`
	Phase              Phase  `json:"phase"`
	CanResend          bool   `json:"can_resend"`
	Shake              bool   `json:"shake"`
	SuccessRing        bool   `json:"success_ring"`
	AutoResendConsumed bool   `json:"auto_resend_consumed"`
	Closed             bool   `json:"closed"`
}
