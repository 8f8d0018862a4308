package reader

import (
	"database/sql"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vegasq/munge"
	"github.com/vegasq/munge/dataset"
)

// SQLiteReader reads every row of one table of a sqlite database file.
type SQLiteReader struct {
	opts Options
}

func (r *SQLiteReader) Read(path string) (dataset.Dataset, error) {
	ds, _, err := r.ReadHeader(path)
	return ds, err
}

// ReadHeader reads the table and also returns its columns in result order.
func (r *SQLiteReader) ReadHeader(path string) (dataset.Dataset, []string, error) {
	if path == Stdin {
		return nil, nil, munge.FormatErr("sqlite input cannot be read from stdin", nil)
	}
	// The driver creates missing databases on open.
	if _, err := os.Stat(path); err != nil {
		return nil, nil, openErr(path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, nil, openErr(path, err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	var n int
	err = db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?`,
		r.opts.Table,
	).Scan(&n)
	if err != nil {
		return nil, nil, munge.ParseErr("cannot read sqlite catalog", map[string]any{
			"path":  path,
			"error": err,
		})
	}
	if n == 0 {
		return nil, nil, munge.KeyErr("table not found", map[string]any{
			"path":  path,
			"table": r.opts.Table,
		})
	}

	rows, err := db.Query("SELECT * FROM " + QuoteIdent(r.opts.Table))
	if err != nil {
		return nil, nil, munge.ParseErr("cannot query table", map[string]any{
			"table": r.opts.Table,
			"error": err,
		})
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, munge.ParseErr("cannot read result columns", map[string]any{"error": err})
	}

	ds := dataset.Dataset{}
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, munge.ParseErr("cannot scan row", map[string]any{
				"row":   len(ds),
				"error": err,
			})
		}

		row := dataset.NewRow()
		for i, col := range columns {
			row.Set(col, dataset.FromAny(cells[i]))
		}
		ds = append(ds, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, munge.ParseErr("cannot read rows", map[string]any{"error": err})
	}

	return ds, columns, nil
}

// QuoteIdent quotes a sqlite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
