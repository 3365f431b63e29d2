package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/verification/entity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxResponseBytes = 64 * 1024
	headerCID        = "X-Correlation-ID"
	msgRequestFailed = "Request failed"
)

// Config configures the auth service client.
type Config struct {
	BaseURL    string
	VerifyPath string
	ResendPath string
	Timeout    time.Duration
	// MaxRetries bounds extra attempts after a failed dial.
	MaxRetries uint64
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client calls the auth service's passcode endpoints.
type Client struct {
	hc  *http.Client
	cfg Config
	ins instrument.Instrumentation
}

func NewClient(cfg Config, ins instrument.Instrumentation) *Client {
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = "/auth/verify-otp"
	}
	if cfg.ResendPath == "" {
		cfg.ResendPath = "/auth/resend-otp"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{hc: hc, cfg: cfg, ins: ins}
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) VerifyCode(ctx context.Context, identity, code string) error {
	return c.callEndpoint(ctx, c.cfg.VerifyPath, verifyRequest{Email: identity, OTP: code})
}

func (c *Client) ResendCode(ctx context.Context, identity string) error {
	return c.callEndpoint(ctx, c.cfg.ResendPath, resendRequest{Email: identity})
}

func (c *Client) startSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return c.ins.Tracer("verification.outbound.api").Start(ctx, http.MethodPost+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.route", path)),
	)
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// callEndpoint POSTs body as JSON. Any non-2xx answer becomes a business error
// carrying the server's message; failing to get an answer at all becomes a
// transport error.
func (c *Client) callEndpoint(ctx context.Context, path string, body any) (err error) {
	ctx, span := c.startSpan(ctx, path)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return goerror.NewServer(err)
	}

	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(100*time.Millisecond))
	attempt := 0

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		status, err := c.post(ctx, path, payload)
		if err != nil {
			if isDialError(err) {
				slog.WarnContext(ctx, "auth service dial failed", "path", path, "attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		return nil
	})
	if err == nil {
		return nil
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		slog.WarnContext(ctx, "auth service rejected request", "path", path, "error_code", gerr.Code().String(), "message", gerr.Msg())
		return err
	}

	slog.ErrorContext(ctx, "failed to reach auth service", "path", path, "attempts", attempt, "error", err)
	return goerror.NewTransport(err, entity.MsgUnreachable)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cid := instrument.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(headerCID, cid)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp.StatusCode, nil
	}

	return resp.StatusCode, decodeError(resp.StatusCode, data)
}

func decodeError(status int, data []byte) error {
	msg := msgRequestFailed

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case strings.TrimSpace(body.Error) != "":
			msg = strings.TrimSpace(body.Error)
		case strings.TrimSpace(body.Message) != "":
			msg = strings.TrimSpace(body.Message)
		}
	}

	return goerror.NewBusiness(msg, goerror.CodeFromStatus(status))
}

// isDialError reports whether the request never reached the server, which is
// the only case safe to retry.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
