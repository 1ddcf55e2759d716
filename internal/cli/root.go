// Package cli implements dashctl, a terminal client for the invoice
// dashboard.
package cli

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/ruralpay/invoices/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	BaseURL string
	Token   string
	Format  string // "json" | "text"
	EnvFile string
	Timeout time.Duration

	client *config.ClientConfig
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Invoice dashboard client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.EnvFile != "" {
				if err := godotenv.Overload(opts.EnvFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			}

			opts.client = config.LoadClientConfig()
			flags := cmd.Flags()
			if !flags.Changed("url") {
				opts.BaseURL = opts.client.BaseURL
			}
			if !flags.Changed("token") {
				opts.Token = opts.client.Token
			}
			if !flags.Changed("timeout") {
				opts.Timeout = opts.client.RequestTimeout
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.BaseURL, "url", "", "dashboard base URL (DASHCTL_BASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "session token (DASHCTL_TOKEN)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "read DASHCTL_* settings from this file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "HTTP request timeout (DASHCTL_TIMEOUT_SECONDS)")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
