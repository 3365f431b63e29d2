package inbound

import (
	"github.com/shandysiswandi/devlink/internal/pkg/router"
	"github.com/shandysiswandi/devlink/internal/verification/usecase"
)

type HTTPEndpoint struct {
	uc uc
}

// Open mounts a verification screen for an email.
func (h *HTTPEndpoint) Open(r *router.Request) (any, error) {
	var req OpenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Open(r.Context(), usecase.OpenInput{
		Email:      req.Email,
		AutoResend: req.AutoResend,
	})
	if err != nil {
		return nil, err
	}

	return OpenResponse{
		SessionID:  resp.SessionID,
		NavigateTo: resp.NavigateTo,
		State:      toStateResponse(resp.State),
	}, nil
}

// Get returns the current session state.
func (h *HTTPEndpoint) Get(r *router.Request) (any, error) {
	resp, err := h.uc.Get(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return toStateResponse(resp), nil
}

// SetDigit writes one slot. Rejected keystrokes answer 200 with accepted=false.
func (h *HTTPEndpoint) SetDigit(r *router.Request) (any, error) {
	index, err := r.GetParamInt("index")
	if err != nil {
		return nil, err
	}

	var req SetDigitRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SetDigit(r.Context(), usecase.SetDigitInput{
		SessionID: r.GetParam("id"),
		Index:     index,
		Value:     req.Value,
	})
	if err != nil {
		return nil, err
	}

	return InputResponse{Accepted: resp.Accepted, State: toStateResponse(&resp.State)}, nil
}

// Backspace handles a backspace keystroke on a slot.
func (h *HTTPEndpoint) Backspace(r *router.Request) (any, error) {
	var req BackspaceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Backspace(r.Context(), usecase.BackspaceInput{
		SessionID: r.GetParam("id"),
		Index:     req.Index,
	})
	if err != nil {
		return nil, err
	}

	return InputResponse{Accepted: resp.Accepted, State: toStateResponse(&resp.State)}, nil
}

// Paste writes a run of digits starting at a slot.
func (h *HTTPEndpoint) Paste(r *router.Request) (any, error) {
	var req PasteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Paste(r.Context(), usecase.PasteInput{
		SessionID: r.GetParam("id"),
		Index:     req.Index,
		Code:      req.Code,
	})
	if err != nil {
		return nil, err
	}

	return InputResponse{Accepted: resp.Accepted, State: toStateResponse(&resp.State)}, nil
}

// Resend requests a fresh passcode.
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	resp, err := h.uc.Resend(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return ResendResponse{Started: resp.Started, State: toStateResponse(&resp.State)}, nil
}

// Mount re-runs the on-mount hook after the view reloads.
func (h *HTTPEndpoint) Mount(r *router.Request) (any, error) {
	resp, err := h.uc.Remount(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return ResendResponse{Started: resp.Started, State: toStateResponse(&resp.State)}, nil
}

// Close unmounts the session.
func (h *HTTPEndpoint) Close(r *router.Request) (any, error) {
	return nil, h.uc.Close(r.Context(), r.GetParam("id"))
}
