package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	keyvault "github.com/dep2p/go-keyvault"
	"github.com/dep2p/go-keyvault/pkg/lib/seal"
)

func putCmd(g *globalFlags) *cobra.Command {
	var (
		value string
		in    string
	)

	cmd := &cobra.Command{
		Use:   "put <key-id>",
		Short: "Encrypt and store a secret (value from --value, --in or stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret []byte
			if cmd.Flags().Changed("value") {
				secret = []byte(value)
			} else {
				var err error
				if secret, err = readInput(cmd, in); err != nil {
					return err
				}
			}
			defer seal.Wipe(secret)

			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				return v.Put(ctx, args[0], secret)
			})
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "secret value")
	cmd.Flags().StringVarP(&in, "in", "i", "", "secret file (default stdin)")
	return cmd
}

func getCmd(g *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <key-id>",
		Short: "Decrypt and print a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				secret, err := v.Get(ctx, args[0])
				if err != nil {
					return err
				}
				defer seal.Wipe(secret)
				return writeOutput(cmd, out, secret)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func deleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				return v.Delete(ctx, args[0])
			})
		},
	}
}

func listCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored key ids",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withVault(cmd, func(ctx context.Context, v *keyvault.Vault) error {
				it, err := v.List(ctx)
				if err != nil {
					return err
				}
				defer it.Close()

				for it.Next() {
					fmt.Fprintln(cmd.OutOrStdout(), it.KeyID())
				}
				return it.Err()
			})
		},
	}
}
