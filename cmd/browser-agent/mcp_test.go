package main

import (
	"browser-agent/internal/bootstrap"
	"browser-agent/internal/server"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMCPFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "mcp"}
	cmd.Flags().String("transport", "", "")
	cmd.Flags().Int("port", 0, "")
	require.NoError(t, cmd.Flags().Parse(args))

	return cmd
}

func TestServerOverrides(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    bootstrap.ServerOverrides
		wantErr string
	}{
		{
			name: "defaults",
			want: bootstrap.ServerOverrides{},
		},
		{
			name: "http with port",
			args: []string{"--transport", "http", "--port", "9000"},
			want: bootstrap.ServerOverrides{Transport: server.TransportHTTP, Port: 9000},
		},
		{
			name:    "unknown transport",
			args:    []string{"--transport", "sse"},
			wantErr: `unknown transport "sse"`,
		},
		{
			name:    "port out of range",
			args:    []string{"--port", "70000"},
			wantErr: "invalid port 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := serverOverrides(newMCPFlags(t, tt.args...))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandTree(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"mcp"})
	require.NoError(t, err)
	assert.Equal(t, mcpCmd, cmd)
	assert.NotNil(t, mcpCmd.Flags().Lookup("transport"))
	assert.NotNil(t, mcpCmd.Flags().Lookup("port"))
}
