package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sidecar/internal/apperr"
	"github.com/roach88/sidecar/internal/value"
)

// Execute runs a mutating statement with positional parameters and returns
// the number of rows affected. Errors are not retried.
func (s *Store) Execute(ctx context.Context, query string, params []value.Value) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, value.Params(params)...)
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeDatabase, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeDatabase, err)
	}
	return affected, nil
}

// Query runs a read statement with positional parameters and returns every
// row. The whole result set is built before returning; an empty result is an
// empty, non-nil slice.
//
// Each cell is decoded from its stored SQLite class with value.FromColumn.
// The column's declared type plays no part: text in a DATETIME column stays
// the stored text, and an integer in a BOOLEAN column stays an integer.
// Duplicate column names in the result overwrite left-to-right.
func (s *Store) Query(ctx context.Context, query string, params []value.Value) ([]value.Row, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDatabase, err)
	}
	defer conn.Close()

	var results []value.Row
	err = conn.Raw(func(driverConn any) error {
		results, err = queryRaw(ctx, driverConn, query, params)
		return err
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDatabase, err)
	}
	return results, nil
}

// queryRaw runs query on the driver connection directly. database/sql gives
// no way to stop go-sqlite3 from rewriting cells by declared type
// (DATE/DATETIME/TIMESTAMP to time.Time, BOOLEAN to bool), so the rows are
// read at the driver level with the declared types cleared first.
func queryRaw(ctx context.Context, driverConn any, query string, params []value.Value) ([]value.Row, error) {
	queryer, ok := driverConn.(driver.QueryerContext)
	if !ok {
		return nil, fmt.Errorf("driver connection %T cannot run queries", driverConn)
	}

	rows, err := queryer.QueryContext(ctx, query, namedParams(params))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if sr, ok := rows.(*sqlite3.SQLiteRows); ok {
		clearDeclTypes(sr)
	}

	columns := rows.Columns()
	dest := make([]driver.Value, len(columns))

	results := []value.Row{}
	for {
		err := rows.Next(dest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := value.NewRow(len(columns))
		for i, name := range columns {
			row.Set(name, value.FromColumn(dest[i]))
		}
		results = append(results, row)
	}
	return results, nil
}

// clearDeclTypes blanks the declared column types the driver consults on
// every Next. DeclTypes returns the driver's own cached slice, and a blank
// entry selects the stored-class branch for that column.
func clearDeclTypes(rows *sqlite3.SQLiteRows) {
	decl := rows.DeclTypes()
	for i := range decl {
		decl[i] = ""
	}
}

// namedParams converts an ordered Value list into 1-based driver arguments.
func namedParams(params []value.Value) []driver.NamedValue {
	args := value.Params(params)
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: arg}
	}
	return named
}
