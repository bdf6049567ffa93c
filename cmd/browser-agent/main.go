package main

import (
	"browser-agent/internal/bootstrap"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "browser-agent",
	Short: "Frame-aware browser interactions behind a security gate",
	Long: "Runs natural-language click, type and hover actions against a live browser page, " +
		"searching iframes and falling back to coordinate clicks. Sensitive actions require confirmation.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		bootstrap.NewConsoleApp().Run()

		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
