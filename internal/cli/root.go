package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/sidecar/internal/app"
	"github.com/roach88/sidecar/internal/config"
	"github.com/roach88/sidecar/internal/keychain"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded by the root command before any subcommand runs.
	Config *config.Config

	// Vault overrides the OS credential store (for testing).
	Vault *keychain.Vault
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sidecar CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidecar",
		Short: "Local data and secret layer for the desktop assistant",
		Long: `sidecar manages the assistant's local SQLite store, encrypts fields
with a passphrase-derived key, and keeps provider credentials in the OS
secret store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				err := fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				return opts.formatter(cmd).Fail(ExitCommandError, err)
			}

			path := opts.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return opts.formatter(cmd).Fail(ExitCommandError, err)
			}
			opts.Config = cfg

			setupLogging(cmd.ErrOrStderr(), opts)
			slog.Debug("config loaded", "path", path)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default: user config dir)")

	// Add subcommands
	cmd.AddCommand(NewDBCommand(opts))
	cmd.AddCommand(NewCryptoCommand(opts))
	cmd.AddCommand(NewSecretCommand(opts))
	cmd.AddCommand(NewUtilCommand(opts))

	return cmd
}

// setupLogging installs the default slog logger. --verbose forces debug;
// otherwise the configured level applies.
func setupLogging(w io.Writer, opts *RootOptions) {
	logLevel := opts.config().SlogLevel()
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// config returns the loaded config, or defaults when none was loaded.
func (o *RootOptions) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// newState builds a process state container from the loaded config.
func (o *RootOptions) newState() *app.State {
	stateOpts := []app.Option{app.WithStateLength(o.config().StateLength)}
	if o.Vault != nil {
		stateOpts = append(stateOpts, app.WithVault(o.Vault))
	}
	return app.New(stateOpts...)
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
