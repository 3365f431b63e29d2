package inbound

import (
	"net/http"

	"github.com/shandysiswandi/devlink/internal/verification/entity"
)

type OpenRequest struct {
	Email      string `json:"email"`
	AutoResend bool   `json:"auto_resend"`
}

type SetDigitRequest struct {
	Value string `json:"value"`
}

type BackspaceRequest struct {
	Index int `json:"index"`
}

type PasteRequest struct {
	Index int    `json:"index"`
	Code  string `json:"code"`
}

type StateResponse struct {
	SessionID          string   `json:"session_id"`
	Email              string   `json:"email"`
	Digits             []string `json:"digits"`
	FocusIndex         int      `json:"focus_index"`
	CooldownSeconds    int      `json:"cooldown_seconds"`
	Phase              string   `json:"phase"`
	CanResend          bool     `json:"can_resend"`
	Shake              bool     `json:"shake"`
	SuccessRing        bool     `json:"success_ring"`
	AutoResendConsumed bool     `json:"auto_resend_consumed"`
	Closed             bool     `json:"closed"`
}

func toStateResponse(s *entity.Snapshot) *StateResponse {
	if s == nil {
		return nil
	}

	return &StateResponse{
		SessionID:          s.SessionID,
		Email:              s.Identity,
		Digits:             s.Digits[:],
		FocusIndex:         s.Focus,
		CooldownSeconds:    s.Cooldown,
		Phase:              s.Phase.String(),
		CanResend:          s.CanResend,
		Shake:              s.Shake,
		SuccessRing:        s.SuccessRing,
		AutoResendConsumed: s.AutoResendConsumed,
		Closed:             s.Closed,
	}
}

type OpenResponse struct {
	SessionID  string         `json:"session_id,omitempty"`
	NavigateTo string         `json:"navigate_to,omitempty"`
	State      *StateResponse `json:"state,omitempty"`
}

func (r OpenResponse) StatusCode() int {
	if r.SessionID == "" {
		return http.StatusOK
	}
	return http.StatusCreated
}

func (r OpenResponse) Message() string {
	if r.SessionID == "" {
		return "verification requires an email"
	}
	return "verification session opened"
}

type InputResponse struct {
	Accepted bool           `json:"accepted"`
	State    *StateResponse `json:"state"`
}

type ResendResponse struct {
	Started bool           `json:"started"`
	State   *StateResponse `json:"state"`
}
