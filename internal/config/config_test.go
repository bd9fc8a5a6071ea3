package config

import (
	"testing"
	"time"

	"github.com/bnema/displaywake/internal/display"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is set", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		cfg, err := Load(v)
		require.NoError(t, err)

		assert.False(t, cfg.AllModes)
		assert.True(t, cfg.PreferredOnly())
		assert.Equal(t, display.BackendAuto, cfg.Backend)
		assert.Zero(t, cfg.CallTimeout)
		assert.Empty(t, cfg.SpecialOutputs)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("DISPLAYWAKE_ALL_MODES", "true")
		t.Setenv("DISPLAYWAKE_BACKEND", "x11")
		t.Setenv("DISPLAYWAKE_CALL_TIMEOUT", "3s")
		t.Setenv("DISPLAYWAKE_SPECIAL_OUTPUTS", "HDMI-A-2, DP-*")

		v := viper.New()
		SetDefaults(v)

		cfg, err := Load(v)
		require.NoError(t, err)

		assert.True(t, cfg.AllModes)
		assert.False(t, cfg.PreferredOnly())
		assert.Equal(t, display.BackendX11, cfg.Backend)
		assert.Equal(t, 3*time.Second, cfg.CallTimeout)
		assert.Equal(t, []string{"HDMI-A-2", "DP-*"}, cfg.SpecialOutputs)
	})

	t.Run("explicit values win over environment", func(t *testing.T) {
		t.Setenv("DISPLAYWAKE_BACKEND", "x11")

		v := viper.New()
		SetDefaults(v)
		v.Set(KeyBackend, display.BackendWlrRandr)

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, display.BackendWlrRandr, cfg.Backend)
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set(KeyBackend, "gdi")

		_, err := Load(v)
		assert.ErrorContains(t, err, "unknown backend")
		for _, name := range []string{display.BackendAuto, display.BackendX11, display.BackendWlrRandr} {
			assert.ErrorContains(t, err, name)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "negative timeout", modify: func(c *Config) { c.CallTimeout = -time.Second }, wantErr: true},
		{name: "blank pattern", modify: func(c *Config) { c.SpecialOutputs = []string{" "} }, wantErr: true},
		{name: "x11 backend", modify: func(c *Config) { c.Backend = display.BackendX11 }},
		{name: "wlr-randr backend", modify: func(c *Config) { c.Backend = display.BackendWlrRandr }},
		{name: "auto backend", modify: func(c *Config) { c.Backend = display.BackendAuto }},
		{name: "unknown backend", modify: func(c *Config) { c.Backend = "gdi" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
