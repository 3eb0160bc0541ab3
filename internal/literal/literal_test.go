package literal

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/dialect"
)

func TestToLiteralNulls(t *testing.T) {
	var nilString *string
	var nilTime *time.Time

	values := []any{
		nil,
		nilString,
		nilTime,
		sql.NullString{},
		sql.NullInt64{},
		sql.NullTime{},
		decimal.NullDecimal{},
		uuid.NullUUID{},
		[]byte(nil),
	}
	for _, d := range dialect.All {
		for _, v := range values {
			assert.Equal(t, Null, ToLiteral(d, v, ""), "%s %T", d, v)
		}
	}
}

func TestToLiteralStrings(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		value   any
		hint    string
		want    string
	}{
		{"plain", dialect.SQLServer, "abc", "VARCHAR", "'abc'"},
		{"embedded quote", dialect.MySQL, "O'Brien", "VARCHAR", "'O''Brien'"},
		{"mysql backslash", dialect.MySQL, `C:\temp`, "VARCHAR", `'C:\\temp'`},
		{"mysql trailing backslash", dialect.MySQL, `ends with \`, "VARCHAR", `'ends with \\'`},
		{"mysql escaped quote stays inside", dialect.MySQL, `a\'; DROP TABLE x; -- `, "VARCHAR", `'a\\''; DROP TABLE x; -- '`},
		{"backslash kept on sqlserver", dialect.SQLServer, `C:\temp`, "VARCHAR", `'C:\temp'`},
		{"backslash kept on postgres", dialect.PostgreSQL, `a\'b`, "VARCHAR", `'a\''b'`},
		{"national sqlserver", dialect.SQLServer, "Zoë", "NVARCHAR", "N'Zoë'"},
		{"national oracle", dialect.Oracle, "x", "NVARCHAR2(10)", "N'x'"},
		{"national ignored on postgres", dialect.PostgreSQL, "x", "NVARCHAR", "'x'"},
		{"national ignored on sqlite", dialect.SQLite, "x", "NCHAR", "'x'"},
		{"pointer deref", dialect.SQLite, ptr("p"), "", "'p'"},
		{"valid null string", dialect.SQLServer, sql.NullString{String: "v", Valid: true}, "", "'v'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLiteral(tt.dialect, tt.value, tt.hint))
		})
	}
}

func TestUnquoteRoundTrip(t *testing.T) {
	inputs := []string{"", "plain", "it's", "''", "a''b'c", "new\nline", "Zoë", "'",
		`C:\temp`, `ends with \`, `a\'; DROP TABLE x; -- `, `\\`, `\n`}
	for _, d := range dialect.All {
		for _, s := range inputs {
			lit := ToLiteral(d, s, "NVARCHAR")
			got, ok := Unquote(d, lit)
			require.True(t, ok, "%s %q -> %s", d, s, lit)
			assert.Equal(t, s, got)
		}
	}

	_, ok := Unquote(dialect.SQLServer, "'unbalanced ' quote'")
	assert.False(t, ok)
	_, ok = Unquote(dialect.SQLServer, "42")
	assert.False(t, ok)
	_, ok = Unquote(dialect.MySQL, `'ends with \'`)
	assert.False(t, ok, "an escaped closing quote leaves the literal open")

	got, ok := Unquote(dialect.MySQL, `'tab\there\'s'`)
	require.True(t, ok)
	assert.Equal(t, "tab\there's", got)
	got, ok = Unquote(dialect.PostgreSQL, `'C:\temp'`)
	require.True(t, ok)
	assert.Equal(t, `C:\temp`, got)
}

func TestToLiteralBinary(t *testing.T) {
	b := []byte{0xDE, 0xAD, 0x01}
	want := map[dialect.Dialect]string{
		dialect.SQLServer:  "0xDEAD01",
		dialect.MySQL:      "0xDEAD01",
		dialect.SQLite:     "x'DEAD01'",
		dialect.Firebird:   "x'DEAD01'",
		dialect.Oracle:     "HEXTORAW('DEAD01')",
		dialect.PostgreSQL: `'\xdead01'::bytea`,
	}
	for d, w := range want {
		assert.Equal(t, w, ToLiteral(d, b, "VARBINARY"), string(d))
	}
	assert.Equal(t, "X''", ToLiteral(dialect.MySQL, []byte{}, ""))
}

func TestToLiteralNumbers(t *testing.T) {
	type status int8

	assert.Equal(t, "42", ToLiteral(dialect.SQLServer, 42, ""))
	assert.Equal(t, "-7", ToLiteral(dialect.SQLServer, int64(-7), ""))
	assert.Equal(t, "3", ToLiteral(dialect.SQLServer, status(3), ""))
	assert.Equal(t, "18446744073709551615", ToLiteral(dialect.MySQL, uint64(18446744073709551615), ""))
	assert.Equal(t, "1.5", ToLiteral(dialect.Oracle, 1.5, ""))
	assert.Equal(t, "0.1", ToLiteral(dialect.Oracle, float32(0.1), ""))
	assert.Equal(t, "1000000", ToLiteral(dialect.Oracle, 1e6, ""))
	assert.Equal(t, "12345.6789", ToLiteral(dialect.PostgreSQL, decimal.RequireFromString("12345.6789"), ""))
	assert.Equal(t, "12.5", ToLiteral(dialect.PostgreSQL, json.Number("12.50"), ""))
	assert.Equal(t, "99", ToLiteral(dialect.SQLite, sql.NullInt64{Int64: 99, Valid: true}, ""))
}

func TestToLiteralBool(t *testing.T) {
	assert.Equal(t, "1", ToLiteral(dialect.SQLServer, true, "BIT"))
	assert.Equal(t, "0", ToLiteral(dialect.Oracle, false, ""))
	assert.Equal(t, "TRUE", ToLiteral(dialect.PostgreSQL, true, "BOOLEAN"))
	assert.Equal(t, "FALSE", ToLiteral(dialect.PostgreSQL, false, ""))
}

func TestToLiteralGUID(t *testing.T) {
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'", ToLiteral(dialect.SQLServer, u, "UNIQUEIDENTIFIER"))
	assert.Equal(t, "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'", ToLiteral(dialect.PostgreSQL, u, "UUID"))
	assert.Equal(t, "HEXTORAW('6BA7B8109DAD11D180B400C04FD430C8')", ToLiteral(dialect.Oracle, u, "RAW(16)"))
}

func TestToLiteralDateTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, time.UTC)
	offset := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("", 2*3600))

	tests := []struct {
		name    string
		dialect dialect.Dialect
		value   time.Time
		hint    string
		want    string
	}{
		{"sqlserver datetime2", dialect.SQLServer, ts, "DATETIME2", "'2024-01-02T03:04:05.6780000'"},
		{"sqlserver default", dialect.SQLServer, ts, "", "'2024-01-02T03:04:05.6780000'"},
		{"sqlserver datetime", dialect.SQLServer, ts, "DATETIME", "'2024-01-02T03:04:05.678'"},
		{"sqlserver date", dialect.SQLServer, ts, "DATE", "'2024-01-02'"},
		{"sqlserver offset", dialect.SQLServer, offset, "DATETIMEOFFSET", "'2024-01-02T03:04:05.0000000+02:00'"},
		{"oracle date", dialect.Oracle, ts, "DATE", "TO_DATE('2024-01-02 03:04:05', 'YYYY-MM-DD HH24:MI:SS')"},
		{"oracle timestamp", dialect.Oracle, ts, "TIMESTAMP", "TO_TIMESTAMP('2024-01-02 03:04:05.678000', 'YYYY-MM-DD HH24:MI:SS.FF6')"},
		{"postgres date", dialect.PostgreSQL, ts, "DATE", "to_date('2024-01-02', 'YYYY-MM-DD')"},
		{"postgres timestamp", dialect.PostgreSQL, ts, "TIMESTAMP", "to_timestamp('2024-01-02 03:04:05.678000', 'YYYY-MM-DD HH24:MI:SS.US')::timestamp"},
		{"mysql datetime", dialect.MySQL, ts, "DATETIME", "'2024-01-02 03:04:05'"},
		{"mysql time", dialect.MySQL, ts, "TIME", "'03:04:05'"},
		{"sqlite default", dialect.SQLite, ts, "", "'2024-01-02 03:04:05.678'"},
		{"firebird timestamp", dialect.Firebird, ts, "TIMESTAMP", "'2024-01-02 03:04:05.6780'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLiteral(tt.dialect, tt.value, tt.hint))
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
