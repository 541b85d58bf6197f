package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/di"
	"github.com/mikey/mail-insight/internal/factory"
	"github.com/mikey/mail-insight/internal/report"
	"github.com/mikey/mail-insight/internal/urgency"
)

func newClassifyCmd(opts *di.Options) *cobra.Command {
	var (
		formatName string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label recent mail urgent or not urgent by keyword",
		Long: "Fetches recent mail and labels each email urgent when one of the configured keywords appears " +
			"as a whole word in its subject or the start of its body. No LLM is involved.",
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
			if err := bindFlags(container, cmd, map[string]string{
				"folders":   "analysis.folders",
				"days-back": "analysis.days_back",
				"keywords":  "urgency.keywords",
			}); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var rep urgency.Report
			if err := container.Invoke(func(
				cfg *config.Config,
				sources *factory.SourceFactory,
				classifier *urgency.Classifier,
				logger *zap.Logger,
			) error {
				defer logger.Sync()
				rep, err = classify(ctx, cfg, sources, classifier)
				return err
			}); err != nil {
				return err
			}

			w, closeOutput, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := report.RenderUrgency(w, format, rep); err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}
			return closeOutput()
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("folders", nil, "Folders to classify")
	flags.Int("days-back", 0, "Number of days to classify (1-90)")
	flags.StringSlice("keywords", nil, "Urgency keywords replacing the defaults")
	flags.StringVarP(&formatName, "format", "f", string(report.FormatText), "Report format (text, json, yaml)")
	flags.StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func classify(ctx context.Context, cfg *config.Config, sources *factory.SourceFactory, classifier *urgency.Classifier) (urgency.Report, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return urgency.Report{}, err
	}
	if err := settings.Validate(); err != nil {
		return urgency.Report{}, err
	}

	source, err := sources.CreateMailSource("", "", "")
	if err != nil {
		return urgency.Report{}, err
	}
	emails, err := source.Fetch(ctx, settings.Folders, settings.DaysBack)
	if err != nil {
		return urgency.Report{}, err
	}
	return classifier.ClassifyAll(emails), nil
}
