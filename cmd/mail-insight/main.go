package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/di"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &di.Options{}

	root := &cobra.Command{
		Use:           "mail-insight",
		Short:         "Email insight engine",
		Long:          "Fetches recent mail over IMAP, analyzes it with an LLM and files every email into insight categories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "Path to config file (default: search /etc/mail-insight, $HOME/.mail-insight, ./configs, .)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&opts.JSONLog, "json-log", false, "Output logs in JSON format")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newServeCmd(opts),
		newClassifyCmd(opts),
		newCategoriesCmd(),
		newFoldersCmd(opts),
		newCredentialsCmd(opts),
	)
	return root
}

// bindFlags binds command flags onto configuration keys, so flags given on the command line
// take precedence over the config file and environment
func bindFlags(container *dig.Container, cmd *cobra.Command, keys map[string]string) error {
	return container.Invoke(func(cfg *config.Config) error {
		for name, key := range keys {
			if err := cfg.GetViper().BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
		return nil
	})
}

// openOutput returns stdout when path is empty, otherwise the created file
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}
