package config

import (
	"os"
	"strings"
	"time"

	"codeberg.org/mutker/r730fanctl/internal/bmc"
	"codeberg.org/mutker/r730fanctl/internal/errors"
	"codeberg.org/mutker/r730fanctl/internal/logger"
	"codeberg.org/mutker/r730fanctl/internal/policy"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "R730FANCTL"
	envConfigFile     = envPrefix + "_CONFIG"
	defaultConfigName = "r730fanctl"
	defaultConfigDir  = "/etc"

	DefaultLogLevel        = LogLevelInfo
	DefaultSettleDelay     = 10 * time.Second
	DefaultMaxExhaustTemp  = 35
	DefaultFanControlRPM   = 6000
	DefaultPIDFile         = "/run/r730fanctl.pid"
	DefaultIPMIToolCommand = "ipmitool"
)

// DefaultCurve is the duty cycle curve tuned for a PowerEdge R730xd.
func DefaultCurve() []policy.Point {
	return []policy.Point{
		{Temperature: 42, DutyCycle: 20},
		{Temperature: 43, DutyCycle: 25},
		{Temperature: 44, DutyCycle: 30},
		{Temperature: 45, DutyCycle: 35},
		{Temperature: 46, DutyCycle: 40},
		{Temperature: 47, DutyCycle: 45},
		{Temperature: 48, DutyCycle: 50},
	}
}

type Config struct {
	LogFile        string         `mapstructure:"log"`
	Database       string         `mapstructure:"database"`
	LogLevel       string         `mapstructure:"log_level"`
	Monitor        bool           `mapstructure:"monitor"`
	SettleDelay    time.Duration  `mapstructure:"settle_delay"`
	PIDFile        string         `mapstructure:"pid_file"`
	MaxExhaustTemp int            `mapstructure:"max_exhaust_temp"`
	FanControlRPM  int            `mapstructure:"fan_control_rpm"`
	Curve          []policy.Point `mapstructure:"curve"`
	IPMI           bmc.IPMIConfig `mapstructure:"ipmi"`
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"log":          "log",
	"database":     "database",
	"log-level":    "log_level",
	"monitor":      "monitor",
	"settle-delay": "settle_delay",
	"pid-file":     "pid_file",
}

// DefineFlags registers the command-line flags Load understands.
func DefineFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Path to the configuration file")
	fs.StringP("log", "l", "", "Write logs to this file, rotated at 5MB")
	fs.StringP("database", "d", "", "Record sensor readings and decisions in this sqlite database")
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.Bool("monitor", false, "Only read sensors and log decisions, never change fan control")
	fs.Duration("settle-delay", DefaultSettleDelay, "Wait before the verification read")
	fs.String("pid-file", DefaultPIDFile, "PID file guarding against concurrent runs")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "")
	v.SetDefault("monitor", false)
	v.SetDefault("settle_delay", DefaultSettleDelay)
	v.SetDefault("pid_file", DefaultPIDFile)
	v.SetDefault("max_exhaust_temp", DefaultMaxExhaustTemp)
	v.SetDefault("fan_control_rpm", DefaultFanControlRPM)
	v.SetDefault("curve", DefaultCurve())
	v.SetDefault("ipmi.path", DefaultIPMIToolCommand)
	v.SetDefault("ipmi.interface", "")
	v.SetDefault("ipmi.host", "")
	v.SetDefault("ipmi.username", "")
	v.SetDefault("ipmi.password", "")
}

// Load reads configuration from defaults, the TOML file, R730FANCTL_*
// environment variables and fs, in increasing precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := os.Getenv(envConfigFile)
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			configFile = f.Value.String()
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath(defaultConfigDir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field and reports the first invalid one.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, ValidationError{
			Field:  "log_level",
			Value:  c.LogLevel,
			Reason: "must be one of debug, info, warning, error",
		})
	}

	if c.MaxExhaustTemp <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, ValidationError{
			Field:  "max_exhaust_temp",
			Value:  c.MaxExhaustTemp,
			Reason: "must be positive",
		})
	}

	if c.SettleDelay < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, ValidationError{
			Field:  "settle_delay",
			Value:  c.SettleDelay,
			Reason: "must not be negative",
		})
	}

	if c.FanControlRPM < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, ValidationError{
			Field:  "fan_control_rpm",
			Value:  c.FanControlRPM,
			Reason: "must not be negative",
		})
	}

	if _, err := policy.NewCurve(c.Curve); err != nil {
		return errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	return nil
}

// Policy derives the thermal policy configuration.
func (c *Config) Policy() (policy.Config, error) {
	curve, err := policy.NewCurve(c.Curve)
	if err != nil {
		return policy.Config{}, errors.New().Wrap(errors.ErrInvalidConfig, err)
	}

	return policy.Config{
		MaxExhaustTemp:       c.MaxExhaustTemp,
		Curve:                curve,
		FanControlEngagedRPM: c.FanControlRPM,
	}, nil
}

// Level returns the log level, defaulting to debug when logging to a file.
func (c *Config) Level() logger.LogLevel {
	if c.LogLevel == "" && c.LogFile != "" {
		return logger.DebugLevel
	}
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.InfoLevel
	}
	return level
}
