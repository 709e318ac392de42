package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sidecar/internal/apperr"
)

// SecretResult is the payload of secret set and secret delete.
type SecretResult struct {
	Provider string `json:"provider"`
}

// SecretGetResult is the payload of secret get. Secret is always present,
// so a stored empty secret shows as "".
type SecretGetResult struct {
	Provider string `json:"provider"`
	Secret   string `json:"secret"`
}

// NewSecretCommand creates the secret command group.
func NewSecretCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage provider credentials in the OS secret store",
		Long: `Manage provider credentials in the OS secret store (macOS Keychain,
Secret Service on Linux, Windows Credential Manager). Entries live under
the "sidecar-app" service, one per provider.

Examples:
  sidecar secret set github
  echo -n "$TOKEN" | sidecar secret set github
  sidecar secret get github
  sidecar secret delete github`,
	}

	cmd.AddCommand(newSecretSetCommand(rootOpts))
	cmd.AddCommand(newSecretGetCommand(rootOpts))
	cmd.AddCommand(newSecretDeleteCommand(rootOpts))

	return cmd
}

func newSecretSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "set <provider> [secret]",
		Short:         "Store a provider's secret (prompted or piped when omitted)",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			provider := args[0]

			var secret string
			if len(args) == 2 {
				secret = args[1]
			} else {
				s, err := readSecret(cmd, "Enter secret value: ")
				if err != nil {
					return formatter.Fail(ExitCommandError, err)
				}
				secret = s
			}

			if err := opts.newState().StoreCredentials(provider, secret); err != nil {
				return formatter.Fail(ExitFailure, err)
			}

			if opts.Format == "json" {
				return formatter.Success(SecretResult{Provider: provider})
			}
			return formatter.Success(fmt.Sprintf("credentials stored for %q", provider))
		},
	}
}

func newSecretGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <provider>",
		Short:         "Print a provider's secret",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			provider := args[0]

			secret, ok, err := opts.newState().GetCredentials(provider)
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			if !ok {
				return formatter.Fail(ExitFailure,
					apperr.Newf(apperr.CodeNotFound, "no credentials stored for %q", provider))
			}

			if opts.Format == "json" {
				return formatter.Success(SecretGetResult{Provider: provider, Secret: secret})
			}
			return formatter.Success(secret)
		},
	}
}

func newSecretDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <provider>",
		Short:         "Remove a provider's secret (succeeds when absent)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			provider := args[0]

			if err := opts.newState().DeleteCredentials(provider); err != nil {
				return formatter.Fail(ExitFailure, err)
			}

			if opts.Format == "json" {
				return formatter.Success(SecretResult{Provider: provider})
			}
			return formatter.Success(fmt.Sprintf("credentials deleted for %q", provider))
		},
	}
}
