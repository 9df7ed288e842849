package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/r730fanctl/internal/config"
	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/policy"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "r730fanctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log = "/var/log/r730fanctl.log"
database = "/var/lib/r730fanctl/sensors.db"
log_level = "debug"
monitor = true
settle_delay = "5s"
max_exhaust_temp = 38
fan_control_rpm = 5500

[ipmi]
interface = "lanplus"
host = "10.0.0.5"
username = "root"
password = "calvin"

[[curve]]
temperature = 40
duty_cycle = 15

[[curve]]
temperature = 41
duty_cycle = 25
`)
	t.Setenv("R730FANCTL_CONFIG", path)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/r730fanctl.log", cfg.LogFile)
	assert.Equal(t, "/var/lib/r730fanctl/sensors.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Monitor)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	assert.Equal(t, 38, cfg.MaxExhaustTemp)
	assert.Equal(t, 5500, cfg.FanControlRPM)
	assert.Equal(t, []policy.Point{{Temperature: 40, DutyCycle: 15}, {Temperature: 41, DutyCycle: 25}}, cfg.Curve)
	assert.Equal(t, "lanplus", cfg.IPMI.Interface)
	assert.Equal(t, "10.0.0.5", cfg.IPMI.Host)
	assert.Equal(t, "root", cfg.IPMI.Username)
	assert.Equal(t, "calvin", cfg.IPMI.Password)
	assert.Equal(t, config.DefaultIPMIToolCommand, cfg.IPMI.Path)

	pc, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, 41, pc.MaxCPUTemp())
	assert.Equal(t, 38, pc.MaxExhaustTemp)
	assert.Equal(t, 5500, pc.FanControlEngagedRPM)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", "")

	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, "", cfg.LogFile)
	assert.Equal(t, "", cfg.Database)
	assert.False(t, cfg.Monitor)
	assert.Equal(t, config.DefaultSettleDelay, cfg.SettleDelay)
	assert.Equal(t, config.DefaultMaxExhaustTemp, cfg.MaxExhaustTemp)
	assert.Equal(t, config.DefaultFanControlRPM, cfg.FanControlRPM)
	assert.Equal(t, config.DefaultCurve(), cfg.Curve)
	assert.Equal(t, logger.InfoLevel, cfg.Level())

	pc, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, 48, pc.MaxCPUTemp())
	assert.Equal(t, 20, pc.Curve.Lowest())
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", writeConfig(t, `
This is not a valid TOML file
`))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", writeConfig(t, `
log_level = "invalid"
`))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
	assert.Contains(t, err.Error(), "log_level")
}

func TestInvalidCurve(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", writeConfig(t, `
[[curve]]
temperature = 40
duty_cycle = 50

[[curve]]
temperature = 41
duty_cycle = 30
`))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
	assert.True(t, errors.HasCode(err, errors.ErrInvalidCurve))
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			MaxExhaustTemp: 35,
			SettleDelay:    time.Second,
			Curve:          config.DefaultCurve(),
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*config.Config){
		"exhaust":  func(c *config.Config) { c.MaxExhaustTemp = 0 },
		"delay":    func(c *config.Config) { c.SettleDelay = -time.Second },
		"rpm":      func(c *config.Config) { c.FanControlRPM = -1 },
		"curve":    func(c *config.Config) { c.Curve = nil },
		"loglevel": func(c *config.Config) { c.LogLevel = "verbose" },
	}
	for name, mutate := range tests {
		cfg := valid()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", writeConfig(t, `
log_level = "warning"
database = "/from/file.db"
`))
	t.Setenv("R730FANCTL_DATABASE", "/from/env.db")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.DefineFlags(fs)
	require.NoError(t, fs.Parse([]string{"--log-level", "debug", "--monitor", "--settle-delay", "0s"}))

	cfg, err := config.Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/from/env.db", cfg.Database)
	assert.True(t, cfg.Monitor)
	assert.Equal(t, time.Duration(0), cfg.SettleDelay)
}

func TestConfigFlagSelectsFile(t *testing.T) {
	t.Setenv("R730FANCTL_CONFIG", "")
	path := writeConfig(t, `max_exhaust_temp = 40`)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.DefineFlags(fs)
	require.NoError(t, fs.Parse([]string{"-c", path}))

	cfg, err := config.Load(fs)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MaxExhaustTemp)
}

func TestLevelDefaultsToDebugForLogFile(t *testing.T) {
	assert.Equal(t, logger.DebugLevel, (&config.Config{LogFile: "/tmp/x.log"}).Level())
	assert.Equal(t, logger.WarnLevel, (&config.Config{LogFile: "/tmp/x.log", LogLevel: "warning"}).Level())
	assert.Equal(t, logger.InfoLevel, (&config.Config{}).Level())
}
