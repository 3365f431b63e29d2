package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/devlink/internal/pkg/clock"
	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/shandysiswandi/devlink/internal/pkg/goroutine"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
)

var (
	errNotScheduled = errors.New("verification: backend call not scheduled")
	errBackendPanic = errors.New("verification: backend call panicked")
)

// Backend performs the passcode calls against the auth service.
type Backend interface {
	VerifyCode(ctx context.Context, identity, code string) error
	ResendCode(ctx context.Context, identity string) error
}

// View receives every observable change of a session.
type View interface {
	Render(ctx context.Context, s entity.Snapshot)
	Notify(ctx context.Context, kind entity.NoticeKind, message string)
	NavigateToAuthenticatedArea(ctx context.Context)
	NavigateToReEntry(ctx context.Context)
}

// Timing holds the controller's durations.
type Timing struct {
	// CooldownSeconds is the wait imposed after every successful resend.
	CooldownSeconds int
	// InitialCooldownSeconds applies when the session opens without auto-resend.
	InitialCooldownSeconds int
	// SuccessDelay is how long the success state shows before hand-off.
	SuccessDelay time.Duration
	// Shake is how long the error shake signal stays set.
	Shake time.Duration
}

// DefaultTiming returns the production timings.
func DefaultTiming() Timing {
	return Timing{
		CooldownSeconds:        60,
		InitialCooldownSeconds: 60,
		SuccessDelay:           800 * time.Millisecond,
		Shake:                  500 * time.Millisecond,
	}
}

type ControllerDependency struct {
	SessionID  string
	Params     entity.LaunchParams
	Backend    Backend
	View       View
	Clock      clock.Clocker
	Goroutine  *goroutine.Manager
	Instrument instrument.Instrumentation
	Timing     Timing
	// OnClose runs on the event loop once the session has torn down.
	OnClose func(sessionID string)
}

// Controller drives one verification session. All state is owned by a single
// event-loop goroutine; public methods hand work to it and wait for the result.
type Controller struct {
	id       string
	identity string
	auto     bool
	timing   Timing
	ctx      context.Context

	backend Backend
	view    View
	clock   clock.Clocker
	gm      *goroutine.Manager
	onClose func(string)

	tracer         trace.Tracer
	verifyAttempts metric.Int64Counter
	resendRequests metric.Int64Counter

	events chan func()
	done   chan struct{}
	last   atomic.Pointer[entity.Snapshot]

	// loop-owned
	digits             entity.Digits
	focus              int
	cooldown           int
	phase              entity.Phase
	shake              bool
	successRing        bool
	autoResendConsumed bool
	closed             bool

	verifySeq  uint64
	resendSeq  uint64
	tickGen    uint64
	shakeGen   uint64
	tickTimer  clock.Timer
	shakeTimer clock.Timer
	handoff    clock.Timer
}

// NewController opens a session for dep.Params. A blank identity sends the
// view to re-entry and returns entity.ErrMissingIdentity.
func NewController(ctx context.Context, dep ControllerDependency) (*Controller, error) {
	ctx = context.WithoutCancel(ctx)

	identity := strings.TrimSpace(dep.Params.Identity)
	if identity == "" {
		slog.WarnContext(ctx, "verification opened without identity", "session_id", dep.SessionID)
		dep.View.NavigateToReEntry(ctx)
		return nil, entity.ErrMissingIdentity
	}

	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}
	meter := ins.Meter("verification.usecase")

	c := &Controller{
		id:       dep.SessionID,
		identity: identity,
		auto:     dep.Params.AutoResendRequested,
		timing:   dep.Timing,
		ctx:      ctx,
		backend:  dep.Backend,
		view:     dep.View,
		clock:    dep.Clock,
		gm:       dep.Goroutine,
		onClose:  dep.OnClose,
		tracer:   ins.Tracer("verification.usecase"),
		events:   make(chan func()),
		done:     make(chan struct{}),
	}

	var err error
	c.verifyAttempts, err = meter.Int64Counter("verification.verify.attempts",
		metric.WithDescription("Number of passcode verification attempts by outcome"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create verify attempts counter", "error", err)
	}
	c.resendRequests, err = meter.Int64Counter("verification.resend.requests",
		metric.WithDescription("Number of passcode resend requests by outcome"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to create resend requests counter", "error", err)
	}

	if !c.auto {
		c.cooldown = max(dep.Timing.InitialCooldownSeconds, 0)
	}
	if c.cooldown > 0 {
		c.armTick()
	}
	c.render()

	go c.run()

	return c, nil
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Done is closed once the session has torn down.
func (c *Controller) Done() <-chan struct{} { return c.done }

// SetDigit stores raw in slot index. It reports false when the input was
// ignored: a bad index, anything other than "" or one digit, or a phase that
// does not accept input.
func (c *Controller) SetDigit(index int, raw string) bool {
	var ok bool
	c.do(func() { ok = c.setDigit(index, raw) })
	return ok
}

// HandleBackspaceAt moves focus back from an empty slot.
func (c *Controller) HandleBackspaceAt(index int) bool {
	var ok bool
	c.do(func() { ok = c.backspace(index) })
	return ok
}

// Paste writes 1..6 digits into consecutive slots starting at index.
func (c *Controller) Paste(index int, text string) bool {
	var ok bool
	c.do(func() { ok = c.paste(index, text) })
	return ok
}

// RequestResend asks the backend for a fresh code. It reports whether a call
// was started; it is a no-op while cooling down or while a resend is in flight.
func (c *Controller) RequestResend(silent bool) bool {
	var ok bool
	c.do(func() { ok = c.requestResend(silent) })
	return ok
}

// MaybeAutoResendOnMount fires the launch-requested resend at most once per
// session, however often it is called.
func (c *Controller) MaybeAutoResendOnMount() bool {
	var ok bool
	c.do(func() { ok = c.autoResend() })
	return ok
}

// Snapshot returns the current state, or the final state once torn down.
func (c *Controller) Snapshot() entity.Snapshot {
	var s entity.Snapshot
	if c.do(func() { s = c.snapshot() }) {
		return s
	}
	return *c.last.Load()
}

// Close tears the session down: timers stop and late backend results are
// discarded.
func (c *Controller) Close() {
	c.do(c.teardown)
}

func (c *Controller) run() {
	for fn := range c.events {
		fn()
		if c.closed {
			close(c.done)
			return
		}
	}
}

func (c *Controller) post(fn func()) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- fn:
		return true
	case <-c.done:
		return false
	}
}

func (c *Controller) do(fn func()) bool {
	ack := make(chan struct{})
	if !c.post(func() { fn(); close(ack) }) {
		return false
	}

	select {
	case <-ack:
		return true
	case <-c.done:
		select {
		case <-ack:
			return true
		default:
			return false
		}
	}
}

func (c *Controller) snapshot() entity.Snapshot {
	return entity.Snapshot{
		SessionID:          c.id,
		Identity:           c.identity,
		Digits:             c.digits,
		Focus:              c.focus,
		Cooldown:           c.cooldown,
		Phase:              c.phase,
		CanResend:          c.cooldown == 0 && c.phase.AcceptsInput(),
		Shake:              c.shake,
		SuccessRing:        c.successRing,
		AutoResendConsumed: c.autoResendConsumed,
		Closed:             c.closed,
	}
}

func (c *Controller) render() {
	s := c.snapshot()
	c.last.Store(&s)
	c.view.Render(c.ctx, s)
}

func (c *Controller) setDigit(index int, raw string) bool {
	if !c.phase.AcceptsInput() || !entity.ValidIndex(index) || !entity.IsDigitValue(raw) {
		return false
	}

	c.digits[index] = raw
	c.focus = index
	if raw != "" && index < entity.CodeLength-1 {
		c.focus = index + 1
	}

	c.completeOrRender()
	return true
}

func (c *Controller) backspace(index int) bool {
	if !c.phase.AcceptsInput() || !entity.ValidIndex(index) {
		return false
	}
	if c.digits[index] != "" || index == 0 {
		return false
	}

	c.focus = index - 1
	c.render()
	return true
}

func (c *Controller) paste(index int, text string) bool {
	if !c.phase.AcceptsInput() || !entity.ValidIndex(index) || !entity.IsCode(text) {
		return false
	}

	pos := index
	for _, r := range text {
		if pos >= entity.CodeLength {
			break
		}
		c.digits[pos] = string(r)
		pos++
	}
	c.focus = min(pos, entity.CodeLength-1)

	c.completeOrRender()
	return true
}

func (c *Controller) completeOrRender() {
	if c.digits.Complete() && c.phase != entity.PhaseVerifying {
		c.requestVerification()
		return
	}
	c.render()
}

func (c *Controller) requestVerification() {
	c.phase = entity.PhaseVerifying
	c.verifySeq++
	seq, code := c.verifySeq, c.digits.Code()
	c.render()

	c.runBackend(
		func(ctx context.Context) error { return c.callVerify(ctx, code) },
		func(err error) { c.onVerifyResult(seq, err) },
	)
}

// runBackend calls the backend off the loop and applies the result on it. A
// call that cannot be scheduled or that panics is applied as a transport
// failure so the phase never stays in flight.
func (c *Controller) runBackend(call func(context.Context) error, apply func(error)) {
	started := c.gm.Go(c.ctx, func(ctx context.Context) error {
		err := goerror.NewTransport(errBackendPanic, entity.MsgUnreachable)
		defer func() { c.post(func() { apply(err) }) }()

		err = call(ctx)
		return nil
	})
	if !started {
		apply(goerror.NewTransport(errNotScheduled, entity.MsgUnreachable))
	}
}

func (c *Controller) callVerify(ctx context.Context, code string) error {
	ctx, span := c.tracer.Start(ctx, "VerifyCode", trace.WithAttributes(attribute.String("session_id", c.id)))
	defer span.End()

	err := c.backend.VerifyCode(ctx, c.identity, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Controller) onVerifyResult(seq uint64, err error) {
	if c.closed || seq != c.verifySeq || c.phase != entity.PhaseVerifying {
		return
	}

	failure := entity.Classify(entity.OperationVerify, err)
	c.count(c.verifyAttempts, failure)

	if err == nil {
		slog.InfoContext(c.ctx, "verification succeeded", "session_id", c.id)
		c.phase = entity.PhaseVerifiedSuccess
		c.successRing = true
		c.shake = false
		c.stopTick()
		c.stopShake()
		c.view.Notify(c.ctx, entity.NoticeInfo, entity.MsgVerified)
		c.render()
		c.handoff = c.clock.AfterFunc(c.timing.SuccessDelay, func() { c.do(c.handOff) })
		return
	}

	slog.WarnContext(c.ctx, "verification failed", "session_id", c.id, "failure", failure.String(), "error", err)
	c.phase = entity.PhaseVerifiedError
	c.digits.Clear()
	c.focus = 0
	c.armShake()
	c.view.Notify(c.ctx, entity.NoticeError, entity.FailureMessage(entity.OperationVerify, err))
	c.render()
}

func (c *Controller) handOff() {
	if c.closed {
		return
	}
	c.view.NavigateToAuthenticatedArea(c.ctx)
	c.teardown()
}

func (c *Controller) autoResend() bool {
	if !c.auto || c.autoResendConsumed {
		return false
	}
	c.autoResendConsumed = true
	if !c.requestResend(true) {
		c.render()
		return false
	}
	return true
}

func (c *Controller) requestResend(silent bool) bool {
	if c.cooldown > 0 || !c.phase.AcceptsInput() {
		return false
	}

	c.phase = entity.PhaseResending
	c.resendSeq++
	seq := c.resendSeq
	c.render()

	c.runBackend(
		c.callResend,
		func(err error) { c.onResendResult(seq, silent, err) },
	)
	return true
}

func (c *Controller) callResend(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "ResendCode", trace.WithAttributes(attribute.String("session_id", c.id)))
	defer span.End()

	err := c.backend.ResendCode(ctx, c.identity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Controller) onResendResult(seq uint64, silent bool, err error) {
	if c.closed || seq != c.resendSeq || c.phase != entity.PhaseResending {
		return
	}

	failure := entity.Classify(entity.OperationResend, err)
	c.count(c.resendRequests, failure)
	c.phase = entity.PhaseIdle

	if err != nil {
		slog.WarnContext(c.ctx, "resend failed", "session_id", c.id, "silent", silent, "failure", failure.String(), "error", err)
		c.view.Notify(c.ctx, entity.NoticeError, entity.FailureMessage(entity.OperationResend, err))
		c.render()
		return
	}

	slog.InfoContext(c.ctx, "passcode resent", "session_id", c.id, "silent", silent)
	c.cooldown = max(c.timing.CooldownSeconds, 0)
	c.stopTick()
	if c.cooldown > 0 {
		c.armTick()
	}
	if !silent {
		c.view.Notify(c.ctx, entity.NoticeInfo, entity.MsgResent)
	}
	c.render()
}

func (c *Controller) armTick() {
	c.tickGen++
	gen := c.tickGen
	c.tickTimer = c.clock.AfterFunc(time.Second, func() {
		c.do(func() { c.tickCooldown(gen) })
	})
}

func (c *Controller) stopTick() {
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
	c.tickGen++
}

func (c *Controller) tickCooldown(gen uint64) {
	if c.closed || gen != c.tickGen {
		return
	}

	c.tickTimer = nil
	if c.cooldown > 0 {
		c.cooldown--
	}
	if c.cooldown > 0 {
		c.armTick()
	}
	c.render()
}

func (c *Controller) armShake() {
	c.stopShake()
	c.shake = true
	gen := c.shakeGen
	c.shakeTimer = c.clock.AfterFunc(c.timing.Shake, func() {
		c.do(func() { c.clearShake(gen) })
	})
}

func (c *Controller) stopShake() {
	if c.shakeTimer != nil {
		c.shakeTimer.Stop()
		c.shakeTimer = nil
	}
	c.shakeGen++
}

func (c *Controller) clearShake(gen uint64) {
	if c.closed || gen != c.shakeGen {
		return
	}

	c.shakeTimer = nil
	c.shake = false
	if c.phase == entity.PhaseVerifiedError {
		c.phase = entity.PhaseIdle
	}
	c.render()
}

func (c *Controller) teardown() {
	if c.closed {
		return
	}

	c.stopTick()
	c.stopShake()
	if c.handoff != nil {
		c.handoff.Stop()
		c.handoff = nil
	}

	c.closed = true
	c.render()
	slog.InfoContext(c.ctx, "verification session closed", "session_id", c.id, "phase", c.phase.String())

	if c.onClose != nil {
		c.onClose(c.id)
	}
}

func (c *Controller) count(counter metric.Int64Counter, failure entity.Failure) {
	if counter == nil {
		return
	}

	outcome := "success"
	if failure != entity.FailureNone {
		outcome = failure.String()
	}
	counter.Add(c.ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
