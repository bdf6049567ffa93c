package bootstrap

import (
	"browser-agent/internal/config"
	"browser-agent/internal/console"
	"browser-agent/internal/server"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"
)

func TestGraphs(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		err := fx.ValidateApp(
			core(),
			fx.Provide(console.NewInterface),
			fx.Invoke(runConsole),
		)
		require.NoError(t, err)
	})

	t.Run("mcp", func(t *testing.T) {
		err := fx.ValidateApp(
			core(),
			fx.Provide(server.NewServer),
			fx.Invoke(runMCP),
		)
		require.NoError(t, err)
	})
}

func TestApplyServerOverrides(t *testing.T) {
	tests := []struct {
		name          string
		overrides     ServerOverrides
		wantTransport string
		wantPort      int
		wantMode      string
	}{
		{
			name:          "stdio forces deny",
			wantTransport: server.TransportStdio,
			wantPort:      8931,
			wantMode:      config.ConfirmModeDeny,
		},
		{
			name:          "http keeps prompt",
			overrides:     ServerOverrides{Transport: server.TransportHTTP, Port: 9000},
			wantTransport: server.TransportHTTP,
			wantPort:      9000,
			wantMode:      config.ConfirmModePrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := applyServerOverrides(config.Default(), tt.overrides)

			assert.Equal(t, tt.wantTransport, conf.ServerConfig.Transport)
			assert.Equal(t, tt.wantPort, conf.ServerConfig.Port)
			assert.Equal(t, tt.wantMode, conf.SecurityConfig.ConfirmMode)
		})
	}
}

func TestNewLogger(t *testing.T) {
	conf := config.Default()
	conf.AppConfig.LogLevel = "warn"
	conf.AppConfig.LogFile = filepath.Join(t.TempDir(), "agent.log")

	logger, err := newLogger(conf)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger.Warn("written to the rotating file")
	assert.FileExists(t, conf.AppConfig.LogFile)
}
