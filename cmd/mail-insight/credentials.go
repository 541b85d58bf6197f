package main

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikey/mail-insight/internal/credential"
	"github.com/mikey/mail-insight/internal/di"
)

func newCredentialsCmd(opts *di.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage secrets stored in the system keyring",
		Long: "Stores secrets in the system keyring. They are used when secrets.keyring is enabled and the " +
			"configuration leaves the key empty. Keys: " + strings.Join(credential.SecretKeys, ", "),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret read from the first line of stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkSecretKey(key); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Value for %s: ", key)
			value, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			value = strings.TrimRight(value, "\r\n")
			if value == "" {
				if err != nil {
					return fmt.Errorf("reading value: %w", err)
				}
				return fmt.Errorf("empty value for %s", key)
			}

			return withStore(opts, func(store *credential.Store) error {
				if err := store.Set(key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", key)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkSecretKey(key); err != nil {
				return err
			}
			return withStore(opts, func(store *credential.Store) error {
				if err := store.Delete(key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
				return nil
			})
		},
	})

	return cmd
}

func checkSecretKey(key string) error {
	if !slices.Contains(credential.SecretKeys, key) {
		return fmt.Errorf("unknown secret %q (want one of %s)", key, strings.Join(credential.SecretKeys, ", "))
	}
	return nil
}

func withStore(opts *di.Options, fn func(*credential.Store) error) error {
	container, err := di.BuildCLIContainer(*opts)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(fn)
}
