package main

import (
	"browser-agent/internal/bootstrap"
	"browser-agent/internal/server"
	"fmt"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the interaction tools over the Model Context Protocol",
	Long: `Start a Model Context Protocol (MCP) server exposing navigate, click,
type_text, hover, list_frames, get_frame_content and check_action.

Supported transports:
  stdio   Standard I/O (default). Sensitive actions are denied because
          stdin belongs to the protocol.
  http    Streamable HTTP transport. Confirmation prompts use the terminal.

Examples:
  browser-agent mcp
  browser-agent mcp --transport http --port 8931`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "", "Transport: stdio, http (default from MCP_TRANSPORT)")
	mcpCmd.Flags().Int("port", 0, "HTTP port for the http transport (default from MCP_PORT)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	overrides, err := serverOverrides(cmd)
	if err != nil {
		return err
	}

	bootstrap.NewMCPApp(overrides).Run()

	return nil
}

func serverOverrides(cmd *cobra.Command) (bootstrap.ServerOverrides, error) {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	switch transport {
	case "", server.TransportStdio, server.TransportHTTP:
	default:
		return bootstrap.ServerOverrides{}, fmt.Errorf("unknown transport %q (use %s or %s)", transport, server.TransportStdio, server.TransportHTTP)
	}

	if port < 0 || port > 65535 {
		return bootstrap.ServerOverrides{}, fmt.Errorf("invalid port %d", port)
	}

	return bootstrap.ServerOverrides{
		Transport: transport,
		Port:      port,
	}, nil
}
