package bmc

import "codeberg.org/mutker/r730fanctl/internal/errors"

const (
	// Command Errors
	ErrCommandFailed    = errors.ErrorCode("bmc_command_failed")
	ErrInvalidDutyCycle = errors.ErrorCode("bmc_invalid_duty_cycle")

	// Fan Control Errors
	ErrEnableAutoFan         = errors.ErrEnableAutoFan
	ErrDisableAutoFan        = errors.ErrorCode("bmc_disable_auto_fan_failed")
	ErrSetDutyCycle          = errors.ErrorCode("bmc_set_duty_cycle_failed")
	ErrActuatorCommandFailed = errors.ErrActuatorCommandFailed
)
