package telemetry

import (
	"bytes"
	"context"
	"time"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
)

// queryCommand is the ipmitool subcommand listing every sensor.
const queryCommand = "sensor"

// Reader queries the BMC for a sensor snapshot.
type Reader struct {
	exec   Executor
	logger logger.Logger
	now    func() time.Time
}

func NewReader(exec Executor, log logger.Logger) *Reader {
	return &Reader{
		exec:   exec,
		logger: log,
		now:    time.Now,
	}
}

// Read runs the sensor query and parses its output. Any command or format
// failure is reported as telemetry_unavailable.
func (r *Reader) Read(ctx context.Context) (*Snapshot, error) {
	errFactory := errors.New()

	out, err := r.exec.Run(ctx, queryCommand)
	if err != nil {
		return nil, errFactory.Wrap(ErrTelemetryUnavailable, errFactory.Wrap(ErrQueryFailed, err))
	}

	snapshot, err := Parse(bytes.NewReader(out))
	if err != nil {
		return nil, errFactory.Wrap(ErrTelemetryUnavailable, err)
	}
	snapshot.Timestamp = r.now()

	r.logger.Debug().
		Int("bytes", len(out)).
		Time("timestamp", snapshot.Timestamp).
		Msg("Sensor report parsed")

	return snapshot, nil
}
