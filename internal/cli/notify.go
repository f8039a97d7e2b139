package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"eatopia/internal/messaging"
	"eatopia/internal/services/notification"
)

// NotifyOptions holds flags for the notify command.
type NotifyOptions struct {
	*RootOptions
	Prefetch int
}

// NewNotifyCommand creates the notify command.
func NewNotifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NotifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Print placed orders from the message broker",
		Long: `Subscribe to order.placed events on the orders exchange and print
one line per order. Requires rabbitmq.enabled in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.RabbitMQ.Enabled {
				return fmt.Errorf("rabbitmq is disabled in %s", opts.ConfigPath)
			}
			locale, err := language.Parse(cfg.Locale)
			if err != nil {
				return errorf("invalid locale", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := opts.newLogger("notification-subscriber")
			conn, err := messaging.New(ctx, cfg, log)
			if err != nil {
				return errorf("failed to initialize messaging", err)
			}
			defer conn.Close()

			consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "eatopia-notify", opts.Prefetch)
			return notification.NewSubscriber(consumer, cmd.OutOrStdout(), locale, log).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&opts.Prefetch, "prefetch", 1, "RabbitMQ prefetch count")

	return cmd
}
