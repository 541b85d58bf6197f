package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/mail-insight/internal/di"
	"github.com/mikey/mail-insight/internal/factory"
	"github.com/mikey/mail-insight/internal/ports"
	"github.com/mikey/mail-insight/internal/report"
)

var analyzeFlagKeys = map[string]string{
	"provider":    "llm.provider",
	"models":      "llm.models",
	"email":       "mail.address",
	"imap-server": "mail.imap_server",
	"folders":     "analysis.folders",
	"days-back":   "analysis.days_back",
	"batch-size":  "analysis.batch_size",
	"max-retries": "analysis.max_retries",
	"batch-delay": "analysis.batch_delay",
}

func newAnalyzeCmd(opts *di.Options) *cobra.Command {
	var (
		formatName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze recent mail once and print the insight report",
		Long: "Fetches the emails of the last days from the configured folders, analyzes them in batches and prints " +
			"the categorized report. An interrupted run prints what was analyzed so far.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			container, err := di.BuildCLIContainer(*opts)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			if err := bindFlags(container, cmd, analyzeFlagKeys); err != nil {
				return err
			}

			return container.Invoke(func(engine *factory.Engine, runner ports.AnalysisRunner, logger *zap.Logger) error {
				defer logger.Sync()
				defer engine.Close()

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				result, runErr := runner.RunAnalysis(ctx, ports.AnalysisRequest{})
				if result == nil {
					return runErr
				}

				w, closeOutput, err := openOutput(cmd, output)
				if err != nil {
					return errors.Join(runErr, err)
				}
				if err := report.Render(w, format, result); err != nil {
					return errors.Join(runErr, fmt.Errorf("rendering report: %w", err))
				}
				if err := closeOutput(); err != nil {
					return errors.Join(runErr, err)
				}
				if runErr != nil {
					return fmt.Errorf("analysis incomplete: %w", runErr)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.String("provider", "", "LLM provider (gemini, vertex, openai, bedrock)")
	flags.StringSlice("models", nil, "Candidate models in fallback order")
	flags.String("email", "", "Mailbox address")
	flags.String("imap-server", "", "IMAP server host")
	flags.StringSlice("folders", nil, "Folders to analyze")
	flags.Int("days-back", 0, "Number of days to analyze (1-90)")
	flags.Int("batch-size", 0, "Emails per model request (1-50)")
	flags.Int("max-retries", 0, "Attempts per model for transient failures (1-10)")
	flags.Duration("batch-delay", 0, "Pause between batches")
	flags.StringVarP(&formatName, "format", "f", string(report.FormatText), "Report format (text, json, yaml)")
	flags.StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}
