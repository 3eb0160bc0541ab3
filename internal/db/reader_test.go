package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		dialect dialect.Dialect
		conn    string
		err     error
	}{
		{"postgres://u:p@localhost/db", dialect.PostgreSQL, "postgres://u:p@localhost/db", nil},
		{"postgresql://localhost/db", dialect.PostgreSQL, "postgresql://localhost/db", nil},
		{"mysql://root:pw@tcp(localhost:3306)/shop", dialect.MySQL, "root:pw@tcp(localhost:3306)/shop", nil},
		{"sqlite://./data/app.db", dialect.SQLite, "./data/app.db", nil},
		{"", "", "", ErrEmptyURL},
		{"oracle://scott@tiger", "", "", ErrUnsupportedURL},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseURL(tt.url)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, got.Dialect)
			assert.Equal(t, tt.conn, got.Conn)
		})
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	_, err := Open(context.Background(), "redis://localhost", "")
	assert.ErrorIs(t, err, ErrUnsupportedURL)

	_, err = Open(context.Background(), "mysql://root@tcp(localhost:3306)/", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to determine database name")
}

func TestNormalizeRule(t *testing.T) {
	assert.Equal(t, "", normalizeRule("NO ACTION"))
	assert.Equal(t, "", normalizeRule(""))
	assert.Equal(t, "CASCADE", normalizeRule("cascade"))
	assert.Equal(t, "SET NULL", normalizeRule("SET_NULL"))
	assert.Equal(t, "RESTRICT", normalizeRule("RESTRICT"))
}

func TestPostgresHelpers(t *testing.T) {
	assert.Equal(t, "CHARACTER VARYING", postgresTypeName("character varying", "varchar"))
	assert.Equal(t, "INT4[]", postgresTypeName("ARRAY", "_int4"))
	assert.Equal(t, "CITEXT", postgresTypeName("USER-DEFINED", "citext"))

	assert.Equal(t, "'active'", postgresCast.ReplaceAllString("'active'::character varying", ""))
	assert.Equal(t, "now()", postgresCast.ReplaceAllString("now()", ""))
	assert.Equal(t, "'{}'", postgresCast.ReplaceAllString("'{}'::text[]", ""))
}

func TestNormalizeValue(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	guid := &schema.Column{Name: "Key", DbDataType: "UUID"}
	money := &schema.Column{Name: "Total", DbDataType: "DECIMAL"}

	var numeric pgtype.Numeric
	require.NoError(t, numeric.Scan("19.99"))

	tests := []struct {
		name string
		col  *schema.Column
		in   any
		want any
	}{
		{"nil", money, nil, nil},
		{"text bytes", &schema.Column{DbDataType: "VARCHAR"}, []byte("hello"), "hello"},
		{"unknown column", nil, []byte("raw"), "raw"},
		{"binary stays bytes", &schema.Column{DbDataType: "BLOB"}, []byte{0x01, 0x02}, []byte{0x01, 0x02}},
		{"decimal bytes", money, []byte("10.50"), decimal.RequireFromString("10.50")},
		{"integer bytes", &schema.Column{DbDataType: "BIGINT"}, []byte("42"), int64(42)},
		{"float bytes", &schema.Column{DbDataType: "DOUBLE"}, []byte("1.5"), 1.5},
		{"bool text", &schema.Column{DbDataType: "BOOLEAN"}, "1", true},
		{"guid text", guid, id.String(), id},
		{"guid array", guid, [16]byte(id), id},
		{"guid raw bytes", guid, id[:], id},
		{"pg numeric", money, numeric, decimal.RequireFromString("19.99")},
		{"passthrough", money, int64(3), int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeValue(tt.col, tt.in)
			if want, ok := tt.want.(decimal.Decimal); ok {
				require.IsType(t, decimal.Decimal{}, got)
				assert.True(t, want.Equal(got.(decimal.Decimal)), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToRowUsesTableColumns(t *testing.T) {
	table := &schema.Table{Columns: []*schema.Column{{Name: "Amount", DbDataType: "NUMERIC"}}}
	row := toRow(table, []string{"amount", "extra"}, []any{[]byte("1.25"), []byte("x")})

	assert.IsType(t, decimal.Decimal{}, row["amount"], "column lookup ignores case")
	assert.Equal(t, "x", row["extra"])
}
