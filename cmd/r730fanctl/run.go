package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/mutker/r730fanctl/internal/bmc"
	"codeberg.org/mutker/r730fanctl/internal/controller"
	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/pid"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one fan control cycle (the default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCycle(cmd)
		},
	}
}

// runCycle performs one decide-and-act cycle. Any failure or panic forces
// automatic fan control before the process exits, unless monitor mode is on
// or another instance holds the PID file.
func runCycle(cmd *cobra.Command) (err error) {
	a, err := newApp(cmd)
	if err != nil {
		failsafe(nil, err)
		return err
	}
	defer a.close()

	defer func() {
		if r := recover(); r != nil {
			failsafe(a, errors.New().WithData(errors.ErrUnexpected, r))
			panic(r)
		}
		if err != nil && !a.cfg.Monitor && !errors.HasCode(err, errors.ErrAlreadyRunning) {
			failsafe(a, err)
		}
	}()

	if err = pid.Write(a.cfg.PIDFile); err != nil {
		return err
	}
	defer func() {
		if rmErr := pid.Remove(a.cfg.PIDFile); rmErr != nil {
			a.logger.Error().Err(rmErr).Msg("Failed to remove PID file")
		}
	}()

	if err = a.openRecorder(); err != nil {
		return err
	}

	ctrl, err := a.controller()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Monitor {
		a.logger.Info().Msg("Monitor mode activated, fan control is left unchanged")
	}

	_, err = ctrl.RunOnce(ctx)
	return err
}

// failsafe hands fan control back to the BMC. It runs on a fresh context
// so that a signal which cancelled the cycle does not also cancel the
// recovery command. With no app, the local BMC is addressed with defaults.
func failsafe(a *app, cause error) {
	var (
		log  logger.Logger
		fans bmc.FanController
	)
	if a != nil {
		log, fans = a.logger, a.fans
	} else {
		var closeLog func() error
		log, closeLog = logger.New(logger.Config{Level: logger.InfoLevel, IsService: logger.IsService()})
		defer closeLog()
		fans = bmc.NewFanController(bmc.NewExecutor(bmc.IPMIConfig{}, log), log)
	}

	ctrl := controller.New(controller.Options{Fans: fans, Logger: log})
	if err := ctrl.Failsafe(context.Background(), cause); err != nil {
		log.Error().Err(err).Msg("Failed to turn on auto fan control")
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
