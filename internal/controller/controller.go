package controller

import (
	"context"
	"time"

	"codeberg.org/mutker/r730fanctl/internal/bmc"
	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/metrics"
	"codeberg.org/mutker/r730fanctl/internal/policy"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

// SensorReader produces one telemetry snapshot per call.
type SensorReader interface {
	Read(ctx context.Context) (*telemetry.Snapshot, error)
}

type Options struct {
	Reader   SensorReader
	Fans     bmc.FanController
	Recorder metrics.Recorder
	Logger   logger.Logger
	Policy   policy.Config
	// SettleDelay is how long the fans get to respond before the
	// verification read.
	SettleDelay time.Duration
	// Monitor reads and decides but never changes fan control.
	Monitor bool
}

// Controller runs one decide-and-act cycle per RunOnce. It keeps no state
// between cycles; the external scheduler owns the control period.
type Controller struct {
	reader      SensorReader
	fans        bmc.FanController
	recorder    metrics.Recorder
	logger      logger.Logger
	policy      policy.Config
	settleDelay time.Duration
	monitor     bool
	now         func() time.Time
}

// New builds a Controller. A nil Recorder drops records and a nil Logger
// writes to stdout.
func New(opts Options) *Controller {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.Noop()
	}
	log := opts.Logger
	if log == nil {
		log, _ = logger.New(logger.Config{Level: logger.InfoLevel})
	}

	return &Controller{
		reader:      opts.Reader,
		fans:        opts.Fans,
		recorder:    recorder,
		logger:      log,
		policy:      opts.Policy,
		settleDelay: opts.SettleDelay,
		monitor:     opts.Monitor,
		now:         time.Now,
	}
}

// RunOnce reads the sensors, decides, applies the decision, waits for the
// fans to settle and reads again for the log. The second read never feeds
// back into the decision.
func (c *Controller) RunOnce(ctx context.Context) (policy.Decision, error) {
	c.logger.Info().Msg("Reading sensors:")
	snap, err := c.reader.Read(ctx)
	if err != nil {
		return policy.Decision{}, err
	}
	c.logSensors(ctx, snap)

	decision, diags := policy.Decide(snap, c.policy)
	for _, d := range diags {
		c.logger.WithLevel(d.Level).Msg(d.Message)
	}
	var degraded errors.Error
	if errors.As(decision.Err, &degraded) {
		c.logger.ErrorWithCode(degraded).Msg("  Falling back to automatic fan control")
	}

	if c.monitor {
		c.logger.Info().
			Str("mode", decision.Mode.String()).
			Int("duty_cycle", decision.DutyCycle).
			Msg("  Monitor mode, fan control unchanged")
	} else {
		if err := c.fans.Apply(ctx, decision); err != nil {
			return decision, err
		}
		c.recordDecision(ctx, decision)
	}

	if err := c.settle(ctx); err != nil {
		return decision, err
	}

	snap, err = c.reader.Read(ctx)
	if err != nil {
		return decision, err
	}
	c.logSensors(ctx, snap)

	return decision, nil
}

// Failsafe logs cause and hands fan control back to the BMC. Pass a
// context that is not already cancelled, or the command is never sent.
func (c *Controller) Failsafe(ctx context.Context, cause error) error {
	if cause != nil {
		c.logger.Error().
			Str("error_code", string(errors.CodeOf(cause))).
			Err(cause).
			Msg("Unexpected error")
	}

	c.logger.Warn().Msg("Turning on auto fan control")
	if err := c.fans.EnableAuto(ctx); err != nil {
		return errors.New().Wrap(errors.ErrEnableAutoFan, err)
	}

	return nil
}

func (c *Controller) settle(ctx context.Context) error {
	if c.settleDelay <= 0 {
		return nil
	}

	timer := time.NewTimer(c.settleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.New().Wrap(errors.ErrTimeout, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// logSensors logs a snapshot and records it. A recording failure is logged
// and does not stop the cycle.
func (c *Controller) logSensors(ctx context.Context, snap *telemetry.Snapshot) {
	c.logger.Info().Msgf("  Sensors: %s", snap)

	if err := c.recorder.RecordSensors(ctx, snap); err != nil {
		c.logger.Error().Err(err).Msg("Failed to record sensors")
	}
}

func (c *Controller) recordDecision(ctx context.Context, decision policy.Decision) {
	if err := c.recorder.RecordDecision(ctx, metrics.NewDecisionRecord(c.now(), decision)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to record fan control decision")
	}
}
