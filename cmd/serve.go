package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/ziadkadry99/riskdesk/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing event lookup, search, statistics and status tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Status changes never reach the model, so no generator is needed.
		svc, err := a.newService(nil)
		if err != nil {
			return err
		}

		stats, err := a.events.Statistics(context.Background())
		if err != nil {
			return fmt.Errorf("reading event base: %w", err)
		}
		if stats.Total == 0 {
			fmt.Fprintf(os.Stderr, "Warning: the event base at %s is empty. Run `riskdesk seed` first.\n", a.cfg.DatabasePath)
		}

		mcpserver.Version = Version
		a.logger.Info("MCP server started on stdio",
			zap.String("database", a.cfg.DatabasePath),
			zap.Int("events", stats.Total),
		)

		srv := mcpserver.NewServer(a.events, svc, a.logger)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
