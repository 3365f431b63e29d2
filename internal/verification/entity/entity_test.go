package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shandysiswandi/devlink/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDigitValue(t *testing.T) {
	for _, ok := range []string{"", "0", "5", "9"} {
		assert.True(t, IsDigitValue(ok), ok)
	}
	for _, bad := range []string{"a", "12", " ", "-", "٣", "1 "} {
		assert.False(t, IsDigitValue(bad), bad)
	}
}

func TestIsCode(t *testing.T) {
	for _, ok := range []string{"1", "482019", "000"} {
		assert.True(t, IsCode(ok), ok)
	}
	for _, bad := range []string{"", "1234567", "12a4", " 123"} {
		assert.False(t, IsCode(bad), bad)
	}
}

func TestDigits(t *testing.T) {
	d := Digits{"4", "8", "", "0", "", ""}
	assert.False(t, d.Complete())
	assert.Equal(t, 3, d.Filled())
	assert.Equal(t, "480", d.Code())

	d = Digits{"4", "8", "2", "0", "1", "9"}
	assert.True(t, d.Complete())
	assert.Equal(t, "482019", d.Code())

	d.Clear()
	assert.Equal(t, Digits{}, d)
	assert.Zero(t, d.Filled())
}

func TestValidIndex(t *testing.T) {
	assert.True(t, ValidIndex(0))
	assert.True(t, ValidIndex(5))
	assert.False(t, ValidIndex(-1))
	assert.False(t, ValidIndex(6))
}

func TestPhase(t *testing.T) {
	assert.True(t, PhaseIdle.AcceptsInput())
	assert.True(t, PhaseVerifiedError.AcceptsInput())
	assert.False(t, PhaseVerifying.AcceptsInput())
	assert.False(t, PhaseResending.AcceptsInput())
	assert.False(t, PhaseVerifiedSuccess.AcceptsInput())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestSnapshot_JSON(t *testing.T) {
	b, err := json.Marshal(Snapshot{Phase: PhaseVerifiedError, Digits: Digits{"1"}})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "verified_error", out["phase"])
	assert.Equal(t, []any{"1", "", "", "", "", ""}, out["digits"])
}

func TestNotice_JSON(t *testing.T) {
	b, err := json.Marshal(Event{Type: EventNotice, Notice: &Notice{Kind: NoticeError, Message: "Invalid OTP"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notice","notice":{"kind":"error","message":"Invalid OTP"}}`, string(b))
}

func TestClassify(t *testing.T) {
	transport := goerror.NewTransport(errors.New("dial tcp"), MsgUnreachable)
	rejected := goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidFormat)

	assert.Equal(t, FailureNone, Classify(OperationVerify, nil))
	assert.Equal(t, FailureTransport, Classify(OperationVerify, transport))
	assert.Equal(t, FailureTransport, Classify(OperationResend, transport))
	assert.Equal(t, FailureVerificationRejected, Classify(OperationVerify, rejected))
	assert.Equal(t, FailureResendRejected, Classify(OperationResend, rejected))
	assert.Equal(t, FailureResendRejected, Classify(OperationResend, errors.New("plain")))
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "Invalid OTP", FailureMessage(OperationVerify, goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidFormat)))
	assert.Equal(t, MsgVerifyFailed, FailureMessage(OperationVerify, errors.New("plain")))
	assert.Equal(t, MsgResendFailed, FailureMessage(OperationResend, errors.New("plain")))
	assert.Equal(t, MsgUnreachable, FailureMessage(OperationResend, goerror.NewTransport(errors.New("x"), "")))
}
