package output

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vegasq/munge/dataset"
	"github.com/vegasq/munge/reader"
)

// DefaultTable is the sqlite table written when no table name is given.
const DefaultTable = reader.DefaultTable

// writeSQLite creates path as a new database holding ds in one TEXT column
// per field. Values are stored as their text form and null as NULL. header
// names the columns when ds has no rows.
func writeSQLite(ctx context.Context, path, table string, ds dataset.Dataset, header []string) error {
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	columns := columnsOf(ds, header)
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = reader.QuoteIdent(col) + " TEXT"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(columns) == 0 {
		// sqlite rejects tables without columns; keep the table name usable.
		defs = []string{`"_empty" TEXT`}
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", reader.QuoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %q: %w", table, err)
	}

	if len(columns) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", reader.QuoteIdent(table), placeholders))
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		args := make([]any, len(columns))
		for i, row := range ds {
			for c, col := range columns {
				v := cell(row, col)
				if v.IsNull() {
					args[c] = nil
				} else {
					args[c] = v.Text()
				}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
