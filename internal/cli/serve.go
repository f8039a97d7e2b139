package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"eatopia/internal/config"
	"eatopia/internal/database"
	"eatopia/internal/logger"
	"eatopia/internal/messaging"
	"eatopia/internal/services/order"
	"eatopia/internal/services/tracking"
	"eatopia/internal/session"
	"eatopia/internal/webhook"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Host string
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fulfillment webhook",
		Long: `Run the HTTP fulfillment webhook.

Applies pending migrations, then serves POST / for the agent, GET /health
and GET /orders/{id}/status until SIGINT or SIGTERM.

Example:
  eatopia serve --config config.yaml
  eatopia serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = opts.Host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.Port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, opts.newLogger("webhook"))
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "0.0.0.0", "listen host")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 8000, "listen port")

	return cmd
}

// runServe runs the webhook until ctx is canceled
func runServe(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	intents, err := webhook.NewIntentTable(cfg.Intents)
	if err != nil {
		return errorf("invalid intents config", err)
	}
	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		return errorf("invalid locale", err)
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return errorf("failed to initialize database", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to database", requestID, map[string]interface{}{
		"dialect": db.Dialect().Name,
	})

	if err := db.RunMigrations(ctx); err != nil {
		return errorf("failed to run migrations", err)
	}

	sessions := session.NewMemoryStore(cfg.Session.Shards)
	orderOpts := []order.Option{
		order.WithLocale(locale),
		order.WithRetainOnFailure(cfg.Session.RetainOnFailure),
	}

	if cfg.RabbitMQ.Enabled {
		mqLog := log.With("messaging")
		conn, err := messaging.New(ctx, cfg, mqLog)
		if err != nil {
			return errorf("failed to initialize messaging", err)
		}
		defer conn.Close()
		orderOpts = append(orderOpts, order.WithPublisher(messaging.NewPublisher(conn, mqLog)))
	}

	connector := webhook.DBConnector(db)
	trackLog := log.With("tracking-service")
	tracker := tracking.NewService(trackLog)
	orders := order.NewService(sessions, log.With("order-service"), orderOpts...)
	dispatcher := webhook.NewDispatcher(intents, orders, tracker, connector, log)

	statusHandler := tracking.NewHandler(tracker, func(ctx context.Context) (tracking.StatusGateway, error) {
		return connector.Acquire(ctx)
	}, trackLog)
	handler := webhook.NewHandler(dispatcher, db, sessions, log)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.SetupRoutes(statusHandler.RegisterRoutes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Webhook started on %s", cfg.Addr()), requestID, map[string]interface{}{
			"addr":      cfg.Addr(),
			"messaging": cfg.RabbitMQ.Enabled,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case err := <-serverErr:
		return errorf("HTTP server failed", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errorf("graceful shutdown failed", err)
	}
	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
	return nil
}
