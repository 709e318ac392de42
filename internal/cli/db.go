package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/sidecar/internal/app"
	"github.com/roach88/sidecar/internal/apperr"
	"github.com/roach88/sidecar/internal/value"
)

// DBOptions holds flags for the db commands.
type DBOptions struct {
	*RootOptions
	Database string
	Params   []string
}

// ExecResult is the payload of db exec.
type ExecResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

// InitResult is the payload of db init.
type InitResult struct {
	Path string `json:"path"`
}

// NewDBCommand creates the db command group.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DBOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Run statements against the local SQLite store",
		Long: `Run parameterized statements against the local SQLite store.

The database is --db when given, then the config "database" entry, then
sidecar.db in the user data directory (created if absent).

Parameters are a JSON array bound positionally to ? placeholders:
null, booleans, integers, floats and strings bind natively; arrays and
objects bind as their JSON text. Each --param is one more JSON value,
bound after the array's elements.

Examples:
  sidecar db init
  sidecar db exec "INSERT INTO notes (body, pinned) VALUES (?, ?)" '["hi", true]'
  sidecar db query "SELECT * FROM notes WHERE id = ?" '[1]' --format json
  sidecar db query "SELECT * FROM notes WHERE body = ?" --param '"hi"'`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: config, then data dir)")

	cmd.AddCommand(newDBInitCommand(opts))
	cmd.AddCommand(newDBExecCommand(opts))
	cmd.AddCommand(newDBQueryCommand(opts))

	return cmd
}

func newDBInitCommand(opts *DBOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Create or open the database and print its path",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			st, err := opts.openState()
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			defer closeState(st)

			path, _ := st.DatabasePath()
			if opts.Format == "json" {
				return formatter.Success(InitResult{Path: path})
			}
			return formatter.Success(path)
		},
	}
}

func newDBExecCommand(opts *DBOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "exec <sql> [params-json]",
		Short:         "Execute a mutating statement and print rows affected",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			params, err := opts.parseParams(args)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}

			st, err := opts.openState()
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			defer closeState(st)

			affected, err := st.Execute(cmd.Context(), args[0], params)
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			formatter.VerboseLog("%d parameter(s) bound", len(params))

			if opts.Format == "json" {
				return formatter.Success(ExecResult{RowsAffected: affected})
			}
			return formatter.Success(fmt.Sprintf("%d rows affected", affected))
		},
	}
	addParamFlag(cmd, opts)
	return cmd
}

func newDBQueryCommand(opts *DBOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <sql> [params-json]",
		Short: "Run a read statement and print every row",
		Long: `Run a read statement and print every row.

In text mode each row is printed as one JSON object per line, with keys in
column order. In JSON mode the rows are the "data" array of the response.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			params, err := opts.parseParams(args)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}

			st, err := opts.openState()
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			defer closeState(st)

			rows, err := st.Query(cmd.Context(), args[0], params)
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			formatter.VerboseLog("%d row(s) returned", len(rows))

			if opts.Format == "json" {
				return formatter.Success(rows)
			}
			for _, row := range rows {
				line, err := json.Marshal(row)
				if err != nil {
					return formatter.Fail(ExitFailure, apperr.Wrap(apperr.CodeSerialization, err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}
			return nil
		},
	}
	addParamFlag(cmd, opts)
	return cmd
}

func addParamFlag(cmd *cobra.Command, opts *DBOptions) {
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "one JSON parameter value, bound after params-json (repeatable)")
}

// databasePath resolves --db, then the config entry. Empty means the
// default data location.
func (o *DBOptions) databasePath() string {
	if o.Database != "" {
		return o.Database
	}
	return o.config().Database
}

// openState builds a State with its database initialized.
func (o *DBOptions) openState() (*app.State, error) {
	st := o.newState()
	if err := st.InitDatabase(o.databasePath()); err != nil {
		return nil, err
	}
	return st, nil
}

// parseParams decodes the optional second argument as a JSON array, then
// appends each --param value in order.
func (o *DBOptions) parseParams(args []string) ([]value.Value, error) {
	var params []value.Value
	if len(args) == 2 {
		decoded, err := value.DecodeParams([]byte(args[1]))
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeSerialization, err)
		}
		params = decoded
	}
	for _, raw := range o.Params {
		v, err := value.Decode([]byte(raw))
		if err != nil {
			return nil, apperr.Newf(apperr.CodeSerialization, "--param %s: %v", raw, err)
		}
		params = append(params, v)
	}
	return params, nil
}

func closeState(st *app.State) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
