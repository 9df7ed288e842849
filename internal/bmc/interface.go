package bmc

import (
	"context"

	"codeberg.org/mutker/r730fanctl/internal/policy"
)

// Executor runs one ipmitool invocation and returns its standard output.
type Executor interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// FanController issues fan control commands to the BMC.
type FanController interface {
	// EnableAuto hands fan control back to the vendor curve.
	EnableAuto(ctx context.Context) error
	// DisableAuto stops the vendor curve so a duty cycle can be set.
	DisableAuto(ctx context.Context) error
	// SetDutyCycle fixes every fan at percent of maximum speed.
	SetDutyCycle(ctx context.Context, percent int) error
	// Apply carries out a policy decision.
	Apply(ctx context.Context, decision policy.Decision) error
}

// IPMIConfig locates ipmitool and, for remote BMCs, the LAN session.
type IPMIConfig struct {
	Path      string `mapstructure:"path"`
	Interface string `mapstructure:"interface"`
	Host      string `mapstructure:"host"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}
