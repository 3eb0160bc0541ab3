package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
	"github.com/tordrt/schemascript/internal/statement"
	"github.com/tordrt/schemascript/internal/types"
)

// selectRows returns the statement that reads a table's rows, limited to
// maxRows when positive
func selectRows(d dialect.Dialect, t *schema.Table, maxRows int) (statement.Statement, error) {
	b, err := statement.New(d, statement.Options{IncludeSchema: true})
	if err != nil {
		return statement.Statement{}, err
	}
	if maxRows > 0 {
		return b.SelectPage(t, statement.Page{Size: maxRows}), nil
	}
	return b.SelectAll(t), nil
}

// querySQLRows reads rows through database/sql
func querySQLRows(ctx context.Context, db *sql.DB, d dialect.Dialect, t *schema.Table, maxRows int) ([]schema.Row, error) {
	stmt, err := selectRows(d, t, maxRows)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows of %s: %w", t.Name, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []schema.Row
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", t.Name, err)
		}
		result = append(result, toRow(t, names, values))
	}
	return result, rows.Err()
}

func toRow(t *schema.Table, names []string, values []any) schema.Row {
	row := make(schema.Row, len(names))
	for i, name := range names {
		row[name] = normalizeValue(t.FindColumn(name), values[i])
	}
	return row
}

// normalizeValue turns driver values into the types literal rendering knows:
// decimal.Decimal for exact numerics, uuid.UUID for GUIDs, strings for text
// that drivers hand over as bytes. col may be nil for unknown result columns.
func normalizeValue(col *schema.Column, v any) any {
	info := types.Classify(col)

	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeBytes(info, x)
	case [16]byte:
		if info.Family == types.GUID {
			return uuid.UUID(x)
		}
		return x[:]
	case string:
		return normalizeString(info, x)
	case driver.Valuer:
		// pgtype values such as Numeric
		inner, err := x.Value()
		if err != nil {
			return v
		}
		if _, again := inner.(driver.Valuer); again {
			return inner
		}
		return normalizeValue(col, inner)
	}
	return v
}

func normalizeBytes(info types.Info, b []byte) any {
	switch {
	case info.Family == types.GUID:
		if u, err := uuid.ParseBytes(b); err == nil {
			return u
		}
		if u, err := uuid.FromBytes(b); err == nil {
			return u
		}
		return append([]byte(nil), b...)
	case info.Family.IsBinary():
		return append([]byte(nil), b...)
	}
	return normalizeString(info, string(b))
}

func normalizeString(info types.Info, s string) any {
	switch {
	case info.Family == types.GUID:
		if u, err := uuid.Parse(s); err == nil {
			return u
		}
	case isExact(info):
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	case info.Family.IsInteger():
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case info.Family == types.Float || info.Family == types.Real:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case info.Family == types.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}

func isExact(info types.Info) bool {
	switch info.Family {
	case types.Decimal, types.Number, types.Money, types.SmallMoney:
		return true
	}
	return false
}
