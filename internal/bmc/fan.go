package bmc

import (
	"context"
	"fmt"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/policy"
)

// Dell raw OEM commands for the PowerEdge fan controller.
const (
	oemNetFn       = "0x30"
	oemFanCommand  = "0x30"
	selectAutoMode = "0x01"
	selectDuty     = "0x02"
	autoOn         = "0x01"
	autoOff        = "0x00"
	allFans        = "0xff"

	minDutyCycle = 0
	maxDutyCycle = 100
)

type fanController struct {
	exec   Executor
	logger logger.Logger
}

func NewFanController(exec Executor, log logger.Logger) FanController {
	return &fanController{
		exec:   exec,
		logger: log,
	}
}

func (fc *fanController) EnableAuto(ctx context.Context) error {
	if err := fc.raw(ctx, selectAutoMode, autoOn); err != nil {
		return errors.New().Wrap(ErrEnableAutoFan, err)
	}
	fc.logger.Debug().Msg("Auto fan control: enabled")

	return nil
}

func (fc *fanController) DisableAuto(ctx context.Context) error {
	if err := fc.raw(ctx, selectAutoMode, autoOff); err != nil {
		return errors.New().Wrap(ErrDisableAutoFan, err)
	}
	fc.logger.Debug().Msg("Auto fan control: disabled")

	return nil
}

func (fc *fanController) SetDutyCycle(ctx context.Context, percent int) error {
	errFactory := errors.New()

	if err := validateDutyCycle(percent); err != nil {
		return err
	}

	if err := fc.raw(ctx, selectDuty, allFans, fmt.Sprintf("0x%02x", percent)); err != nil {
		return errFactory.Wrap(ErrSetDutyCycle, err)
	}
	fc.logger.Debug().Msgf("Set fan duty cycle: %d%%", percent)

	return nil
}

// Apply enables automatic control, or disables it and then sets the duty
// cycle. The controller ignores a duty cycle while automatic control is
// on, so the order is fixed. Any failure leaves the fan state unknown.
func (fc *fanController) Apply(ctx context.Context, decision policy.Decision) error {
	errFactory := errors.New()

	if decision.IsAutomatic() {
		if err := fc.EnableAuto(ctx); err != nil {
			return errFactory.Wrap(ErrActuatorCommandFailed, err)
		}
		return nil
	}

	if err := validateDutyCycle(decision.DutyCycle); err != nil {
		return errFactory.Wrap(ErrActuatorCommandFailed, err)
	}
	if err := fc.DisableAuto(ctx); err != nil {
		return errFactory.Wrap(ErrActuatorCommandFailed, err)
	}
	if err := fc.SetDutyCycle(ctx, decision.DutyCycle); err != nil {
		return errFactory.Wrap(ErrActuatorCommandFailed, err)
	}

	return nil
}

func (fc *fanController) raw(ctx context.Context, args ...string) error {
	full := append([]string{"raw", oemNetFn, oemFanCommand}, args...)
	_, err := fc.exec.Run(ctx, full...)
	return err
}

func validateDutyCycle(percent int) error {
	if percent < minDutyCycle || percent > maxDutyCycle {
		return errors.New().WithData(ErrInvalidDutyCycle, percent)
	}
	return nil
}
