package telemetry_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubExecutor struct {
	out   string
	err   error
	calls [][]string
}

func (s *stubExecutor) Run(_ context.Context, args ...string) ([]byte, error) {
	s.calls = append(s.calls, args)
	return []byte(s.out), s.err
}

func TestReaderRead(t *testing.T) {
	exec := &stubExecutor{out: r730Report}
	reader := telemetry.NewReader(exec, logger.Nop())

	snap, err := reader.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"sensor"}}, exec.calls)
	assert.Equal(t, telemetry.Some(44), snap.MaxCPU())
	assert.False(t, snap.Timestamp.IsZero())
}

func TestReaderCommandFailure(t *testing.T) {
	reader := telemetry.NewReader(&stubExecutor{err: fmt.Errorf("exit status 1")}, logger.Nop())

	_, err := reader.Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrTelemetryUnavailable, errors.CodeOf(err))
	assert.True(t, errors.HasCode(err, telemetry.ErrQueryFailed))
}

func TestReaderMalformedOutput(t *testing.T) {
	reader := telemetry.NewReader(&stubExecutor{out: "garbage without separators\n"}, logger.Nop())

	_, err := reader.Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrTelemetryUnavailable, errors.CodeOf(err))
}

func TestReadingEncoding(t *testing.T) {
	snap := telemetry.Snapshot{Exhaust: telemetry.Some(30)}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["inlet_temp"])
	assert.EqualValues(t, 30, decoded["exhaust_temp"])

	out, err := yaml.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(out), "exhaust_temp: 30")
	assert.Contains(t, string(out), "inlet_temp: null")

	v, err := telemetry.Reading{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	v, err = telemetry.Some(7).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}
