package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	conf, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, 10000, conf.InteractionConfig.TimeoutPerFrameMs)
	assert.Equal(t, 5*time.Second, conf.InteractionConfig.FrameWaitTimeout())
	assert.Equal(t, 500*time.Millisecond, conf.InteractionConfig.FramePollInterval())
	assert.Equal(t, 100, conf.InteractionConfig.ElementListLimit)
	assert.InDelta(t, 0.5, conf.SecurityConfig.ConfidenceThreshold, 1e-9)
	assert.Equal(t, ConfirmModePrompt, conf.SecurityConfig.ConfirmMode)
}

func TestGetConfig_FromEnv(t *testing.T) {
	t.Setenv("INTERACTION_TIMEOUT_PER_FRAME_MS", "2500")
	t.Setenv("SECURITY_CONFIRM_MODE", "deny")

	conf, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, 2500*time.Millisecond, conf.InteractionConfig.TimeoutPerFrame())
	assert.Equal(t, ConfirmModeDeny, conf.SecurityConfig.ConfirmMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero per-frame timeout",
			mutate:  func(c *Config) { c.InteractionConfig.TimeoutPerFrameMs = 0 },
			wantErr: "INTERACTION_TIMEOUT_PER_FRAME_MS",
		},
		{
			name:    "negative poll interval",
			mutate:  func(c *Config) { c.InteractionConfig.FramePollIntervalMs = -1 },
			wantErr: "FRAME_POLL_INTERVAL_MS",
		},
		{
			name:    "zero element list limit",
			mutate:  func(c *Config) { c.InteractionConfig.ElementListLimit = 0 },
			wantErr: "ELEMENT_LIST_LIMIT",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.SecurityConfig.ConfidenceThreshold = 1.5 },
			wantErr: "SECURITY_CONFIDENCE_THRESHOLD",
		},
		{
			name:    "unknown confirm mode",
			mutate:  func(c *Config) { c.SecurityConfig.ConfirmMode = "allow" },
			wantErr: "SECURITY_CONFIRM_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Default()
			tt.mutate(conf)

			err := conf.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
