package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/verification/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func requireBusiness(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeBusiness, gerr.Type())
	assert.Equal(t, code, gerr.Code())
	assert.Equal(t, msg, gerr.Msg())
}

func TestClient_VerifyCode(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/verify-otp", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "cid-42", r.Header.Get(headerCID))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "dev@example.com", "otp": "482019"}, body)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"Email verified successfully"}`))
	})

	c := NewClient(Config{BaseURL: srv.URL + "/", Timeout: time.Second}, instrument.NewNoop())
	ctx := instrument.SetCorrelationID(context.Background(), "cid-42")

	require.NoError(t, c.VerifyCode(ctx, "dev@example.com", "482019"))
}

func TestClient_ResendCode(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/resend", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "dev@example.com"}, body)
		_, _ = w.Write([]byte(`{"message":"OTP resent successfully"}`))
	})

	c := NewClient(Config{BaseURL: srv.URL, ResendPath: "v2/resend", Timeout: time.Second}, instrument.NewNoop())

	require.NoError(t, c.ResendCode(context.Background(), "dev@example.com"))
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   goerror.Code
		msg    string
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"Invalid OTP"}`, code: goerror.CodeInvalidFormat, msg: "Invalid OTP"},
		{name: "message field", status: http.StatusTooManyRequests, body: `{"message":"Slow down"}`, code: goerror.CodeTooManyRequest, msg: "Slow down"},
		{name: "not found", status: http.StatusNotFound, body: `{"error":"User not found"}`, code: goerror.CodeNotFound, msg: "User not found"},
		{name: "empty body", status: http.StatusInternalServerError, body: ``, code: goerror.CodeInternal, msg: msgRequestFailed},
		{name: "html body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, code: goerror.CodeUnavailable, msg: msgRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 3}, instrument.NewNoop())

			err := c.VerifyCode(context.Background(), "dev@example.com", "000000")

			requireBusiness(t, err, tt.code, tt.msg)
			assert.Equal(t, entity.FailureVerificationRejected, entity.Classify(entity.OperationVerify, err))
		})
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_RetriesDialFailures(t *testing.T) {
	var calls atomic.Int32
	hc := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	})}

	c := NewClient(Config{BaseURL: "http://auth.invalid", MaxRetries: 2, HTTPClient: hc}, instrument.NewNoop())

	err := c.ResendCode(context.Background(), "dev@example.com")

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, entity.FailureTransport, entity.Classify(entity.OperationResend, err))
	assert.Equal(t, entity.MsgUnreachable, entity.FailureMessage(entity.OperationResend, err))
}

func TestClient_DoesNotRetryTimeouts(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := newServer(t, func(_ http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	// Runs before srv.Close so the blocked handler can return.
	t.Cleanup(func() { close(release) })

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond, MaxRetries: 3}, instrument.NewNoop())

	err := c.VerifyCode(context.Background(), "dev@example.com", "482019")

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.TypeTransport, gerr.Type())
	assert.Equal(t, goerror.CodeUnavailable, gerr.Code())
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsDialError(t *testing.T) {
	assert.True(t, isDialError(&net.OpError{Op: "dial"}))
	assert.False(t, isDialError(&net.OpError{Op: "read"}))
	assert.False(t, isDialError(errors.New("dial")))
}
