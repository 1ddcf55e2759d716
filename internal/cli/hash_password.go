package cli

import (
	"fmt"

	"github.com/ruralpay/invoices/internal/config"
	"github.com/ruralpay/invoices/internal/services"
	"github.com/spf13/cobra"
)

func NewHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print an argon2id hash for the users table",
		Long: `Hash a password with the server's argon2 settings (ARGON2_* environment
variables) so a user row can be seeded by hand.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults()
			cfg := config.FromViper()

			hashed, err := services.HashPassword(args[0], cfg.Argon2)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashed)
			return nil
		},
	}
}
