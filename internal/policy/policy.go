package policy

import (
	"fmt"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

// FanControlLikelyActive reports whether fan1 spins fast enough that the
// BMC is probably already running its own curve.
func FanControlLikelyActive(snap *telemetry.Snapshot, cfg Config) bool {
	fan1 := snap.Fan1()
	return fan1.Valid && fan1.Int > cfg.FanControlEngagedRPM
}

// Decide picks automatic or manual control for one snapshot. It performs
// no I/O. Thresholds trigger on strictly greater temperatures only.
func Decide(snap *telemetry.Snapshot, cfg Config) (Decision, []Diagnostic) {
	d := &diagnostics{}
	decision := decide(snap, cfg, d)
	decision.CPUTemp = snap.MaxCPU()
	return decision, d.items
}

func decide(snap *telemetry.Snapshot, cfg Config, d *diagnostics) Decision {
	engaged := FanControlLikelyActive(snap, cfg)

	if reason, tripped := checkSafety(snap, cfg, d); tripped {
		return engageAutomatic(Automatic(reason), engaged, d)
	}

	hottest := snap.MaxCPU()
	if !hottest.Valid {
		d.add(logger.WarnLevel, "  No CPU temperature available, cannot compute a duty cycle")
		decision := Automatic(ReasonInsufficientTelemetry)
		decision.Err = errors.New().New(errors.ErrInsufficientTelemetry)
		return engageAutomatic(decision, engaged, d)
	}

	if duty, ok := cfg.Curve.Lookup(hottest.Int); ok {
		d.add(logger.InfoLevel, fmt.Sprintf("  Max CPU temp is %d. Setting fan speed to %d%%", hottest.Int, duty))
		return Manual(duty, ReasonCurve)
	}

	duty := cfg.Curve.Lowest()
	d.add(logger.InfoLevel, fmt.Sprintf("  Max CPU temp is %d. Setting fan speed to lowest setting %d%%", hottest.Int, duty))
	return Manual(duty, ReasonCurveLowest)
}

// checkSafety evaluates exhaust, CPU1 and CPU2 in that order and stops at
// the first reading above its ceiling.
func checkSafety(snap *telemetry.Snapshot, cfg Config, d *diagnostics) (Reason, bool) {
	if !snap.Exhaust.Valid {
		d.add(logger.WarnLevel, "  Exhaust temp unavailable, skipping exhaust check")
	} else if exceeds(snap.Exhaust, cfg.MaxExhaustTemp, "Exhaust", d) {
		return ReasonExhaustExceeded, true
	}

	cpuReasons := [telemetry.CPUSockets]Reason{ReasonCPU1Exceeded, ReasonCPU2Exceeded}
	for i, temp := range snap.CPU {
		if exceeds(temp, cfg.MaxCPUTemp(), fmt.Sprintf("CPU%d", i+1), d) {
			return cpuReasons[i], true
		}
	}

	return "", false
}

func exceeds(temp telemetry.Reading, limit int, name string, d *diagnostics) bool {
	if !temp.Valid || temp.Int <= limit {
		return false
	}
	d.add(logger.InfoLevel, fmt.Sprintf("  %s temp %d exceeded %d", name, temp.Int, limit))
	return true
}

// engageAutomatic logs quietly when the fans already run under vendor control.
func engageAutomatic(decision Decision, engaged bool, d *diagnostics) Decision {
	level := logger.InfoLevel
	if engaged {
		level = logger.DebugLevel
	}
	d.add(level, "  Turning on fan control")
	return decision
}

type diagnostics struct {
	items []Diagnostic
}

func (d *diagnostics) add(level logger.LogLevel, msg string) {
	d.items = append(d.items, Diagnostic{Level: level, Message: msg})
}
