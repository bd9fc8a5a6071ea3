// Package config handles configuration management using Viper.
//
// displaywake reads no configuration file: values come from command line
// flags bound to viper keys, and from DISPLAYWAKE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bnema/displaywake/internal/display"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable
const EnvPrefix = "DISPLAYWAKE"

// Keys of the viper registry
const (
	KeyAllModes       = "all_modes"
	KeyNoConsole      = "no_console"
	KeyBackend        = "backend"
	KeyX11Display     = "x11_display"
	KeySpecialOutputs = "special_outputs"
	KeyCallTimeout    = "call_timeout"
	KeyExitAfterWake  = "exit_after_wake"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
)

// Config represents the application configuration
type Config struct {
	// AllModes queries every mode instead of the preferred resolution subset (--min)
	AllModes bool `mapstructure:"all_modes"`

	// NoConsole sends diagnostics to LogFile instead of the terminal
	NoConsole bool `mapstructure:"no_console"`

	Backend    string `mapstructure:"backend"`
	X11Display string `mapstructure:"x11_display"`

	// SpecialOutputs are glob patterns of output names treated as special-purpose
	SpecialOutputs []string `mapstructure:"special_outputs"`

	// CallTimeout bounds every platform call, zero means no bound
	CallTimeout time.Duration `mapstructure:"call_timeout"`

	ExitAfterWake bool `mapstructure:"exit_after_wake"`

	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
	LogFile  string `mapstructure:"log_file"`
}

// PreferredOnly reports whether mode queries are limited to the preferred resolution
func (c *Config) PreferredOnly() bool {
	return !c.AllModes
}

// DefaultConfig provides sensible defaults
var DefaultConfig = Config{
	AllModes:       false,
	NoConsole:      false,
	Backend:        display.BackendAuto,
	X11Display:     "",
	SpecialOutputs: []string{},
	CallTimeout:    0,
	ExitAfterWake:  false,
	LogLevel:       "",
	LogFile:        "",
}

// SetDefaults registers defaults and environment binding on v
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAllModes, DefaultConfig.AllModes)
	v.SetDefault(KeyNoConsole, DefaultConfig.NoConsole)
	v.SetDefault(KeyBackend, DefaultConfig.Backend)
	v.SetDefault(KeyX11Display, os.Getenv("DISPLAY"))
	v.SetDefault(KeySpecialOutputs, DefaultConfig.SpecialOutputs)
	v.SetDefault(KeyCallTimeout, DefaultConfig.CallTimeout)
	v.SetDefault(KeyExitAfterWake, DefaultConfig.ExitAfterWake)
	v.SetDefault(KeyLogLevel, DefaultConfig.LogLevel)
	v.SetDefault(KeyLogFile, DefaultConfig.LogFile)
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// Environment values arrive as one comma separated string
	cfg.SpecialOutputs = splitList(strings.Join(cfg.SpecialOutputs, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	switch c.Backend {
	case display.BackendAuto, display.BackendX11, display.BackendWlrRandr:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, display.BackendAuto, display.BackendX11, display.BackendWlrRandr)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("call timeout must not be negative, got %s", c.CallTimeout)
	}
	for _, pattern := range c.SpecialOutputs {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("empty special output pattern")
		}
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
