package cli

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/accessly-backend/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := app.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		pg, err := app.OpenDB(log, cfg)
		if err != nil {
			return err
		}
		log.Info("Schema up to date", "driver", pg.Driver())
		return pg.Close()
	},
}
