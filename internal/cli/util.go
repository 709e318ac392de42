package cli

import (
	"fmt"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/roach88/sidecar/internal/apperr"
	"github.com/roach88/sidecar/internal/config"
	"github.com/roach88/sidecar/internal/randutil"
)

// openURL launches the system browser. Tests replace it.
var openURL = browser.OpenURL

// NewUtilCommand creates the util command group.
func NewUtilCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "util",
		Short: "Random tokens, identifiers, data directory and browser launch",
	}

	cmd.AddCommand(newRandomStringCommand(rootOpts))
	cmd.AddCommand(newUUIDCommand(rootOpts))
	cmd.AddCommand(newDataDirCommand(rootOpts))
	cmd.AddCommand(newOpenCommand(rootOpts))

	return cmd
}

func newRandomStringCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "random-string <length>",
		Short:         "Print a random [a-zA-Z0-9] string",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return formatter.Fail(ExitCommandError, fmt.Errorf("invalid length %q: %w", args[0], err))
			}
			s, err := randutil.RandomString(n)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			return formatter.Success(s)
		},
	}
}

func newUUIDCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "uuid",
		Short:         "Print a random UUID",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.formatter(cmd).Success(randutil.SecureID())
		},
	}
}

func newDataDirCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "data-dir",
		Short:         "Print the local data directory, creating it if absent",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			dir, err := config.DataDir()
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			return formatter.Success(dir)
		},
	}
}

func newOpenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "open <url>",
		Short:         "Open a URL in the system browser",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			if err := openURL(args[0]); err != nil {
				return formatter.Fail(ExitFailure, apperr.Wrap(apperr.CodeInvalidState, err))
			}
			formatter.VerboseLog("opened %s", args[0])
			return nil
		},
	}
}
