package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/accessly-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := app.NewLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, log, cfg)
		if err != nil {
			log.Error("Failed to start", "error", err)
			log.Sync()
			return err
		}
		defer a.Close()

		if err := a.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Server stopped", "error", err)
			return err
		}
		log.Info("Server shut down")
		return nil
	},
}
