package policy

import (
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

// Config holds the thresholds and curve the policy decides against.
type Config struct {
	MaxExhaustTemp int
	Curve          Curve
	// FanControlEngagedRPM is the fan1 speed above which vendor automatic
	// control is assumed to be running. It only affects log levels.
	FanControlEngagedRPM int
}

// MaxCPUTemp is the CPU safety ceiling.
func (c Config) MaxCPUTemp() int {
	return c.Curve.MaxTemperature()
}

type Mode int

const (
	ModeAutomatic Mode = iota
	ModeManual
)

func (m Mode) String() string {
	if m == ModeManual {
		return "manual"
	}
	return "automatic"
}

// Reason names why a decision was taken.
type Reason string

const (
	ReasonExhaustExceeded       Reason = "exhaust_temp_exceeded"
	ReasonCPU1Exceeded          Reason = "cpu1_temp_exceeded"
	ReasonCPU2Exceeded          Reason = "cpu2_temp_exceeded"
	ReasonInsufficientTelemetry Reason = "insufficient_telemetry"
	ReasonCurve                 Reason = "curve"
	ReasonCurveLowest           Reason = "curve_lowest"
)

// Decision is either automatic control or a manual duty cycle.
type Decision struct {
	Mode      Mode
	DutyCycle int
	Reason    Reason
	// CPUTemp is the hottest CPU reading the decision was based on.
	CPUTemp telemetry.Reading
	// Err is set when the decision degraded because telemetry was missing.
	Err error
}

// Automatic hands control back to the BMC.
func Automatic(reason Reason) Decision {
	return Decision{Mode: ModeAutomatic, Reason: reason}
}

// Manual fixes the fans at dutyCycle percent.
func Manual(dutyCycle int, reason Reason) Decision {
	return Decision{Mode: ModeManual, DutyCycle: dutyCycle, Reason: reason}
}

func (d Decision) IsAutomatic() bool {
	return d.Mode == ModeAutomatic
}

// Diagnostic is a log line produced while deciding.
type Diagnostic struct {
	Level   logger.LogLevel
	Message string
}
