package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnexpected      ErrorCode = "unexpected_failure"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"
	ErrInvalidCurve    ErrorCode = "invalid_duty_cycle_curve"

	// Lifecycle errors
	ErrAlreadyRunning ErrorCode = "already_running"

	// Control errors
	ErrTelemetryUnavailable  ErrorCode = "telemetry_unavailable"
	ErrInsufficientTelemetry ErrorCode = "insufficient_telemetry"
	ErrActuatorCommandFailed ErrorCode = "actuator_command_failed"
	ErrEnableAutoFan         ErrorCode = "enable_auto_fan_failed"

	// Operation errors
	ErrTimeout ErrorCode = "operation_timeout"

	// Metrics errors
	ErrInitMetrics   ErrorCode = "init_metrics_failed"
	ErrRecordMetrics ErrorCode = "record_metrics_failed"
	ErrCloseMetrics  ErrorCode = "close_metrics_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:              "Internal error occurred",
	ErrInvalidArgument:       "Invalid argument provided",
	ErrUnexpected:            "Unexpected failure",
	ErrInvalidConfig:         "Invalid configuration",
	ErrReadConfig:            "Failed to read config file",
	ErrBindFlags:             "Failed to bind flags",
	ErrInvalidLogLevel:       "Invalid log level",
	ErrInvalidCurve:          "Invalid duty cycle curve",
	ErrAlreadyRunning:        "Another instance is already running",
	ErrTelemetryUnavailable:  "Telemetry unavailable",
	ErrInsufficientTelemetry: "Insufficient telemetry",
	ErrActuatorCommandFailed: "Fan control command failed",
	ErrEnableAutoFan:         "Failed to enable auto fan control",
	ErrTimeout:               "Operation timed out",
	ErrInitMetrics:           "Failed to initialize metrics",
	ErrRecordMetrics:         "Failed to record metrics",
	ErrCloseMetrics:          "Failed to close metrics connection",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
