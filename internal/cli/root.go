package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/accessly-backend/internal/app"
)

const (
	ExitOK           = 0
	ExitViolations   = 1
	ExitRuntimeError = 3
)

var (
	cfg        app.Config
	configFile string
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "accessly",
	Short: "Accessly - web accessibility scanning backend",
	Long: `Accessly audits web pages for accessibility violations with axe-core in
headless Chrome, stores the results per user, and serves them over HTTP.

Commands:
  accessly serve             run the HTTP API
  accessly migrate           create or update the database schema
  accessly scan <url>        audit one page and print the result`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = app.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Otel.Version = version
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./accessly.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, scanCmd)
}

func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command and exits with the command's code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := exitCode(err); ok {
			os.Exit(code)
		}
		os.Exit(ExitRuntimeError)
	}
}

// exitError carries a non-runtime exit status through cobra.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitCode(err error) (int, bool) {
	if e, ok := err.(*exitError); ok {
		return e.code, true
	}
	return 0, false
}
