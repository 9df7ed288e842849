package telemetry

import "codeberg.org/mutker/r730fanctl/internal/errors"

const (
	ErrTelemetryUnavailable = errors.ErrTelemetryUnavailable
	ErrMalformedLine        = errors.ErrorCode("telemetry_malformed_line")
	ErrQueryFailed          = errors.ErrorCode("telemetry_query_failed")
)
