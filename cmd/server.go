package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
	"github.com/ziadkadry99/riskdesk/internal/dashboard"
	"github.com/ziadkadry99/riskdesk/internal/events"
	"github.com/ziadkadry99/riskdesk/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server with the REST API and chat dashboard",
	Long:  `Starts the riskdesk server: event REST API, Yoyo chat endpoints, audit trail, websocket chat and the dashboard page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		generator, err := a.createGenerator(ctx)
		if err != nil {
			return err
		}
		svc, err := a.newService(generator)
		if err != nil {
			return err
		}

		port := a.cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.Server.AllowAllOrigins,
		}, a.database, a.logger)

		registerAllRoutes(srv, a, svc)

		go func() {
			<-ctx.Done()
			a.logger.Info("shutting down server")
			if err := srv.Shutdown(context.Background()); err != nil {
				a.logger.Warn("shutdown failed", zap.Error(err))
			}
		}()

		a.logger.Info("riskdesk server starting",
			zap.String("version", Version),
			zap.Int("port", port),
			zap.String("database", a.cfg.DatabasePath),
			zap.String("provider", string(a.cfg.LLM.Provider)),
			zap.String("model", a.cfg.LLM.Model),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

// registerAllRoutes wires up every feature's routes.
func registerAllRoutes(srv *server.Server, a *app, svc *chat.Service) {
	r := srv.Router()

	// Events
	events.RegisterRoutes(r, a.events)

	// Audit Trail
	audit.RegisterRoutes(r, a.audit)

	// Yoyo chat and status changes
	chat.RegisterRoutes(r, svc)

	// Dashboard (page, stats, websocket chat)
	dash := dashboard.New(svc, a.events, a.audit, a.logger)
	dash.RegisterRoutes(r)
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
