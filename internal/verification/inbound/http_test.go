package inbound

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/devlink/internal/pkg/clock"
	"github.com/shandysiswandi/devlink/internal/pkg/goroutine"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/pkg/router"
	"github.com/shandysiswandi/devlink/internal/pkg/uid"
	"github.com/shandysiswandi/devlink/internal/pkg/validator"
	"github.com/shandysiswandi/devlink/internal/verification/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	mu    sync.Mutex
	codes []string
}

func (b *stubBackend) VerifyCode(_ context.Context, _, code string) error {
	b.mu.Lock()
	b.codes = append(b.codes, code)
	b.mu.Unlock()
	return nil
}

func (b *stubBackend) ResendCode(context.Context, string) error { return nil }

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *clock.Fake) {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	fc := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	uc := usecase.New(usecase.Dependency{
		Backend:    &stubBackend{},
		Clock:      fc,
		Goroutine:  goroutine.NewManager(10),
		Instrument: instrument.NewNoop(),
		Validator:  v,
		UUID:       uid.NewUUID(),
	})
	t.Cleanup(func() { uc.Shutdown(context.Background()) })

	r := router.NewRouter(router.Config{UUID: uid.NewUUID(), Instrument: instrument.NewNoop()})
	RegisterHTTPEndpoint(r, uc, nil)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, fc
}

func call(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func openSession(t *testing.T, base string) OpenResponse {
	t.Helper()

	var open OpenResponse
	status := call(t, http.MethodPost, base+"/api/v1/verification/sessions", `{"email":"dev@example.com"}`, &open)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, open.SessionID)
	return open
}

func TestHTTP_OpenWithoutEmailNavigates(t *testing.T) {
	srv, _ := newTestServer(t)

	var open OpenResponse
	status := call(t, http.MethodPost, srv.URL+"/api/v1/verification/sessions", `{"email":""}`, &open)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, open.SessionID)
	assert.Equal(t, "/register", open.NavigateTo)
}

func TestHTTP_OpenRejectsUnknownFields(t *testing.T) {
	srv, _ := newTestServer(t)

	status := call(t, http.MethodPost, srv.URL+"/api/v1/verification/sessions", `{"email":"a@b.co","otp":"1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHTTP_DigitFlow(t *testing.T) {
	srv, fc := newTestServer(t)
	open := openSession(t, srv.URL)
	base := srv.URL + "/api/v1/verification/sessions/" + open.SessionID

	assert.Equal(t, 60, open.State.CooldownSeconds)
	assert.False(t, open.State.CanResend)

	var in InputResponse
	require.Equal(t, http.StatusOK, call(t, http.MethodPut, base+"/digits/0", `{"value":"x"}`, &in))
	assert.False(t, in.Accepted)

	require.Equal(t, http.StatusOK, call(t, http.MethodPut, base+"/digits/0", `{"value":"4"}`, &in))
	assert.True(t, in.Accepted)
	assert.Equal(t, 1, in.State.FocusIndex)

	require.Equal(t, http.StatusBadRequest, call(t, http.MethodPut, base+"/digits/abc", `{"value":"4"}`, nil))

	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/backspace", `{"index":1}`, &in))
	assert.True(t, in.Accepted)
	assert.Zero(t, in.State.FocusIndex)

	var res ResendResponse
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/resend", "", &res))
	assert.False(t, res.Started, "initial cooldown blocks resend")

	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/paste", `{"index":1,"code":"82019"}`, &in))
	assert.True(t, in.Accepted)

	require.Eventually(t, func() bool {
		var st StateResponse
		return call(t, http.MethodGet, base, "", &st) == http.StatusOK && st.Phase == "verified_success"
	}, time.Second, 5*time.Millisecond)

	fc.Advance(time.Second)
	assert.Equal(t, http.StatusNotFound, call(t, http.MethodGet, base, "", nil))
}

func TestHTTP_MountAndClose(t *testing.T) {
	srv, _ := newTestServer(t)
	open := openSession(t, srv.URL)
	base := srv.URL + "/api/v1/verification/sessions/" + open.SessionID

	var res ResendResponse
	require.Equal(t, http.StatusOK, call(t, http.MethodPost, base+"/mount", "", &res))
	assert.False(t, res.Started)

	assert.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, base, "", nil))
	assert.Equal(t, http.StatusNotFound, call(t, http.MethodDelete, base, "", nil))
}

func TestHTTP_Stream(t *testing.T) {
	srv, _ := newTestServer(t)
	open := openSession(t, srv.URL)
	base := srv.URL + "/api/v1/verification/sessions/" + open.SessionID

	resp, err := http.Get(base + "/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	require.Equal(t, ": connected", <-lines)
	<-lines
	require.Equal(t, "event: state", <-lines)
	require.True(t, strings.HasPrefix(<-lines, "data: "))

	assert.Equal(t, http.StatusNoContent, call(t, http.MethodDelete, base, "", nil))

	var rest []string
	for l := range lines {
		rest = append(rest, l)
	}
	assert.Contains(t, rest, "event: state", "final closed state is pushed before the stream ends")
}

func TestHTTP_StreamUnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/verification/sessions/nope/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
