package errors_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	f := errors.New()

	assert.Equal(t, "Telemetry unavailable", f.New(errors.ErrTelemetryUnavailable).Error())
	assert.Equal(t, "custom", f.WithMessage(errors.ErrInternal, "custom").Error())
	assert.Equal(t, "Invalid configuration: curve", f.WithData(errors.ErrInvalidConfig, "curve").Error())

	wrapped := f.Wrap(errors.ErrActuatorCommandFailed, fmt.Errorf("exit status 1"))
	assert.Equal(t, "Fan control command failed: exit status 1", wrapped.Error())
	assert.Equal(t, "unknown_code", errors.GetErrorMessage("unknown_code"))
}

func TestWithMessageKeepsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := errors.New().Wrap(errors.ErrInternal, cause).WithMessage("context")

	assert.Equal(t, errors.ErrInternal, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "context: boom", err.Error())
}

func TestHasCode(t *testing.T) {
	f := errors.New()
	inner := f.New(errors.ErrTelemetryUnavailable)
	outer := f.Wrap(errors.ErrUnexpected, fmt.Errorf("read: %w", inner))

	assert.True(t, errors.HasCode(outer, errors.ErrUnexpected))
	assert.True(t, errors.HasCode(outer, errors.ErrTelemetryUnavailable))
	assert.False(t, errors.HasCode(outer, errors.ErrActuatorCommandFailed))
	assert.False(t, errors.HasCode(fmt.Errorf("plain"), errors.ErrInternal))
	assert.False(t, errors.HasCode(nil, errors.ErrInternal))
}

func TestCodeOf(t *testing.T) {
	f := errors.New()

	assert.Equal(t, errors.ErrActuatorCommandFailed,
		errors.CodeOf(fmt.Errorf("apply: %w", f.New(errors.ErrActuatorCommandFailed))))
	assert.Equal(t, errors.ErrUnexpected, errors.CodeOf(fmt.Errorf("plain")))
}
