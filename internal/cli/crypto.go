package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sidecar/internal/app"
)

// CryptoOptions holds flags for the crypto commands.
type CryptoOptions struct {
	*RootOptions
	PassphraseEnv string
}

// EncryptResult is the payload of crypto encrypt.
type EncryptResult struct {
	Ciphertext string `json:"ciphertext"`
}

// DecryptResult is the payload of crypto decrypt.
type DecryptResult struct {
	Plaintext string `json:"plaintext"`
}

// NewCryptoCommand creates the crypto command group.
func NewCryptoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CryptoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "crypto",
		Short: "Encrypt and decrypt fields with a passphrase-derived key",
		Long: `Encrypt and decrypt text with AES-256-GCM under a key derived from a
passphrase. Output of encrypt is base64(nonce || ciphertext || tag).

The passphrase is read from the environment variable named by
--passphrase-env, or prompted for on the terminal, or read from stdin.

Examples:
  SIDECAR_PASSPHRASE=... sidecar crypto encrypt --passphrase-env SIDECAR_PASSPHRASE "hello"
  sidecar crypto decrypt "<envelope>"`,
	}

	cmd.PersistentFlags().StringVar(&opts.PassphraseEnv, "passphrase-env", "", "read the passphrase from this environment variable")

	cmd.AddCommand(newEncryptCommand(opts))
	cmd.AddCommand(newDecryptCommand(opts))

	return cmd
}

func newEncryptCommand(opts *CryptoOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "encrypt <plaintext>",
		Short:         "Encrypt text and print the envelope",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			st, err := opts.keyedState(cmd)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}

			sealed, err := st.Encrypt(args[0])
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}

			if opts.Format == "json" {
				return formatter.Success(EncryptResult{Ciphertext: sealed})
			}
			return formatter.Success(sealed)
		},
	}
}

func newDecryptCommand(opts *CryptoOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "decrypt <envelope>",
		Short:         "Decrypt an envelope and print the text",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			st, err := opts.keyedState(cmd)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}

			plaintext, err := st.Decrypt(args[0])
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}

			if opts.Format == "json" {
				return formatter.Success(DecryptResult{Plaintext: plaintext})
			}
			return formatter.Success(plaintext)
		},
	}
}

// keyedState builds a State with the encryption key installed.
func (o *CryptoOptions) keyedState(cmd *cobra.Command) (*app.State, error) {
	passphrase, err := o.passphrase(cmd)
	if err != nil {
		return nil, err
	}
	st := o.newState()
	st.InitEncryption(passphrase)
	return st, nil
}

func (o *CryptoOptions) passphrase(cmd *cobra.Command) (string, error) {
	if o.PassphraseEnv != "" {
		v, ok := os.LookupEnv(o.PassphraseEnv)
		if !ok {
			return "", fmt.Errorf("environment variable %q is not set", o.PassphraseEnv)
		}
		return v, nil
	}
	return readSecret(cmd, "Passphrase: ")
}
