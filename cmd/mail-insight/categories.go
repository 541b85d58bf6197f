package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/di"
	"github.com/mikey/mail-insight/internal/factory"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the insight categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range core.Categories() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-21s %s\n", c.String(), c.Description())
			}
			return nil
		},
	}
}

func newFoldersCmd(opts *di.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List the folders of the configured mailbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := di.BuildCLIContainer(*opts)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return container.Invoke(func(sources *factory.SourceFactory, logger *zap.Logger) error {
				defer logger.Sync()

				source, err := sources.CreateMailSource("", "", "")
				if err != nil {
					return err
				}
				folders, err := source.ListFolders(ctx)
				if err != nil {
					return err
				}
				for _, folder := range folders {
					fmt.Fprintln(cmd.OutOrStdout(), folder)
				}
				return nil
			})
		},
	}
}
