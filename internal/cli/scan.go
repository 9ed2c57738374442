package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/accessly-backend/internal/app"
	"github.com/yungbote/accessly-backend/internal/domain/scan"
	"github.com/yungbote/accessly-backend/internal/report"
	"github.com/yungbote/accessly-backend/internal/scanner"
)

var (
	scanFormat  string
	scanChart   string
	scanFailOn  bool
	scanTimeout time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Audit one page and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(scanFormat)
		if err != nil {
			return err
		}
		url := args[0]
		if err := scan.ValidateURL(url); err != nil {
			return err
		}

		log, err := app.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if scanTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, scanTimeout)
			defer cancel()
		}

		rep, err := scanner.New(log, cfg.Scanner).Run(ctx, url)
		if err != nil {
			return err
		}
		sr := scan.NewScanResult(uuid.Nil, rep, time.Now())

		if err := writeResult(cmd.OutOrStdout(), format, sr); err != nil {
			return err
		}
		if scanChart != "" {
			if err := writeChart(scanChart, sr); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
		}
		if scanFailOn && sr.TotalViolations > 0 {
			return &exitError{code: ExitViolations}
		}
		return nil
	},
}

func writeChart(path string, sr *scan.ScanResult) error {
	png, err := report.RenderImpactChart(sr.URL, sr.IssuesByImpact)
	if err != nil {
		return err
	}
	return writeFile(path, png)
}

func init() {
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", string(FormatText), "output format: text, json or yaml")
	scanCmd.Flags().StringVar(&scanChart, "chart", "", "also write the impact chart PNG to this path")
	scanCmd.Flags().BoolVar(&scanFailOn, "fail-on-violations", false, "exit 1 when any violation is found")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "overall deadline for the scan")
}
