package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskdesk/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "riskdesk",
	Short: "Operational risk event desk with a conversational assistant",
	Long: `RiskDesk stores operational risk events and serves Yoyo, an assistant that
answers questions about them grounded in the event base. It exposes a REST
API, a live chat dashboard and MCP tools for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
