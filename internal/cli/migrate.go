package cli

import (
	"github.com/spf13/cobra"

	"eatopia/internal/database"
	"eatopia/internal/logger"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Create the schema, seed the menu and, on postgres, install the
insert_order_item procedure and get_total_order_price function.

Already applied migrations are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig(cmd)
			if err != nil {
				return err
			}
			log := rootOpts.newLogger("migrate")

			db, err := database.New(cmd.Context(), cfg, log)
			if err != nil {
				return errorf("failed to initialize database", err)
			}
			defer db.Close()

			if err := db.RunMigrations(cmd.Context()); err != nil {
				return errorf("failed to run migrations", err)
			}

			log.Info("migrations_complete", "Database is up to date", logger.GenerateRequestID(), map[string]interface{}{
				"driver": cfg.Database.Driver,
			})
			return nil
		},
	}
}
