package main

import (
	"github.com/spf13/cobra"

	"codeberg.org/mutker/r730fanctl/internal/bmc"
	"codeberg.org/mutker/r730fanctl/internal/config"
	"codeberg.org/mutker/r730fanctl/internal/controller"
	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/metrics"
	"codeberg.org/mutker/r730fanctl/internal/telemetry"
)

// app holds everything one invocation opens.
type app struct {
	cfg      *config.Config
	logger   logger.Logger
	exec     bmc.Executor
	reader   *telemetry.Reader
	fans     bmc.FanController
	recorder metrics.Recorder
	closeLog func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, closeLog := logger.New(logger.Config{
		Level:     cfg.Level(),
		File:      cfg.LogFile,
		IsService: logger.IsService(),
	})
	log.Debug().Msg("Config loaded")

	exec := bmc.NewExecutor(cfg.IPMI, log)
	a := &app{
		cfg:      cfg,
		logger:   log,
		exec:     exec,
		reader:   telemetry.NewReader(exec, log),
		fans:     bmc.NewFanController(exec, log),
		recorder: metrics.Noop(),
		closeLog: closeLog,
	}

	return a, nil
}

// openRecorder opens the sensor database when one is configured.
func (a *app) openRecorder() error {
	recorder, err := metrics.NewService(metrics.Config{DBPath: a.cfg.Database}, a.logger)
	if err != nil {
		return err
	}
	a.recorder = recorder

	return nil
}

func (a *app) controller() (*controller.Controller, error) {
	policyCfg, err := a.cfg.Policy()
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Int("max_exhaust_temp", policyCfg.MaxExhaustTemp).
		Int("max_cpu_temp", policyCfg.MaxCPUTemp()).
		Interface("curve", policyCfg.Curve.Points()).
		Msg("Thermal policy loaded")

	return controller.New(controller.Options{
		Reader:      a.reader,
		Fans:        a.fans,
		Recorder:    a.recorder,
		Logger:      a.logger,
		Policy:      policyCfg,
		SettleDelay: a.cfg.SettleDelay,
		Monitor:     a.cfg.Monitor,
	}), nil
}

func (a *app) close() {
	if err := a.recorder.Close(); err != nil {
		a.logger.ErrorWithCode(errors.New().Wrap(errors.ErrCloseMetrics, err)).Send()
	}
	_ = a.closeLog()
}
