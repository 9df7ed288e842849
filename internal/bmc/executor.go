package bmc

import (
	"context"
	"os/exec"
	"strings"

	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
)

const (
	defaultIPMIToolPath = "ipmitool"
	redacted            = "****"
)

type ipmiTool struct {
	path   string
	prefix []string
	shown  []string
	logger logger.Logger
}

// NewExecutor returns an Executor running ipmitool. There is no timeout:
// a hung ipmitool blocks until ctx is cancelled, and the scheduler invoking
// this process is expected to enforce the outer deadline.
func NewExecutor(cfg IPMIConfig, log logger.Logger) Executor {
	path := cfg.Path
	if path == "" {
		path = defaultIPMIToolPath
	}

	var prefix, shown []string
	add := func(flag, value string, secret bool) {
		if value == "" {
			return
		}
		prefix = append(prefix, flag, value)
		if secret {
			value = redacted
		}
		shown = append(shown, flag, value)
	}
	add("-I", cfg.Interface, false)
	add("-H", cfg.Host, false)
	add("-U", cfg.Username, false)
	add("-P", cfg.Password, true)

	return &ipmiTool{
		path:   path,
		prefix: prefix,
		shown:  shown,
		logger: log,
	}
}

func (t *ipmiTool) Run(ctx context.Context, args ...string) ([]byte, error) {
	errFactory := errors.New()

	full := make([]string, 0, len(t.prefix)+len(args))
	full = append(full, t.prefix...)
	full = append(full, args...)

	command := t.commandLine(args)
	t.logger.Debug().Msgf("  %s", command)

	out, err := exec.CommandContext(ctx, t.path, full...).Output()
	if err != nil {
		var stderr string
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, errFactory.Wrap(ErrCommandFailed, err).WithData(struct {
			Command string
			Error   string
			Stderr  string
		}{
			Command: command,
			Error:   err.Error(),
			Stderr:  stderr,
		})
	}

	return out, nil
}

func (t *ipmiTool) commandLine(args []string) string {
	parts := make([]string, 0, 1+len(t.shown)+len(args))
	parts = append(parts, t.path)
	parts = append(parts, t.shown...)
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}
