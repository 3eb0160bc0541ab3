// Package literal renders Go values as SQL literals for a target dialect.
package literal

import (
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/types"
)

// Null is the SQL null literal
const Null = "NULL"

// ToLiteral renders value as a literal of the dialect.
// typeHint is the target column's type name ("NVARCHAR", "DATETIME2", ...) and may be empty.
func ToLiteral(d dialect.Dialect, value any, typeHint string) string {
	return convert(d, value, types.ClassifyName(typeHint))
}

func convert(d dialect.Dialect, value any, hint types.Info) string {
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Null
		}
		return convert(d, rv.Elem().Interface(), hint)
	}

	switch v := value.(type) {
	case nil:
		return Null
	case string:
		return quoteString(d, v, hint)
	case []byte:
		if v == nil {
			return Null
		}
		return binary(d, v)
	case bool:
		return boolean(d, v)
	case time.Time:
		return dateTime(d, v, hint)
	case uuid.UUID:
		return guid(d, v)
	case uuid.NullUUID:
		if !v.Valid {
			return Null
		}
		return guid(d, v.UUID)
	case decimal.Decimal:
		return v.String()
	case decimal.NullDecimal:
		if !v.Valid {
			return Null
		}
		return v.Decimal.String()
	case json.Number:
		if n, err := decimal.NewFromString(v.String()); err == nil {
			return n.String()
		}
		return quoteString(d, v.String(), hint)
	case float64:
		return float(v, 64)
	case float32:
		return float(float64(v), 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case driver.Valuer:
		// sql.NullString, sql.NullTime, ... report validity through Value
		inner, err := v.Value()
		if err != nil || inner == nil {
			return Null
		}
		return convert(d, inner, hint)
	case fmt.Stringer:
		return quoteString(d, v.String(), hint)
	}
	return reflected(d, value, hint)
}

// reflected handles named scalar kinds (type Status int8)
func reflected(d dialect.Dialect, value any, hint types.Info) string {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return float(rv.Float(), 32)
	case reflect.Float64:
		return float(rv.Float(), 64)
	case reflect.Bool:
		return boolean(d, rv.Bool())
	case reflect.String:
		return quoteString(d, rv.String(), hint)
	case reflect.Slice:
		if rv.IsNil() {
			return Null
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return binary(d, rv.Bytes())
		}
	}
	return quoteString(d, fmt.Sprint(value), hint)
}

// quoteString single-quotes s, doubling embedded quotes. MySQL also reads
// backslash escapes inside literals, so backslashes are doubled there first.
// National types get the N prefix on dialects that distinguish them.
func quoteString(d dialect.Dialect, s string, hint types.Info) string {
	if d == dialect.MySQL {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	quoted := "'" + strings.ReplaceAll(s, "'", "''") + "'"
	if hint.Family.IsNational() {
		switch d {
		case dialect.SQLServer, dialect.Oracle, dialect.MySQL:
			return "N" + quoted
		}
	}
	return quoted
}

// mysqlEscapes maps the character after a backslash in a MySQL literal
var mysqlEscapes = map[byte]byte{
	'0': 0, 'b': '\b', 'n': '\n', 'r': '\r', 't': '\t', 'Z': 0x1A,
}

// Unquote reverses string quoting for the dialect, accepting an optional N prefix.
// ok is false when lit is not a quoted string literal.
func Unquote(d dialect.Dialect, lit string) (string, bool) {
	if strings.HasPrefix(lit, "N'") {
		lit = lit[1:]
	}
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return "", false
	}
	body := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '\\' && d == dialect.MySQL:
			i++
			if i >= len(body) {
				return "", false
			}
			if c, ok := mysqlEscapes[body[i]]; ok {
				b.WriteByte(c)
				continue
			}
		case body[i] == '\'':
			if i+1 >= len(body) || body[i+1] != '\'' {
				return "", false
			}
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String(), true
}

func binary(d dialect.Dialect, b []byte) string {
	h := strings.ToUpper(hex.EncodeToString(b))
	switch d {
	case dialect.SQLServer:
		return "0x" + h
	case dialect.MySQL:
		if len(b) == 0 {
			return "X''"
		}
		return "0x" + h
	case dialect.Oracle:
		return "HEXTORAW('" + h + "')"
	case dialect.PostgreSQL:
		return `'\x` + strings.ToLower(h) + "'::bytea"
	default:
		return "x'" + h + "'"
	}
}

func boolean(d dialect.Dialect, b bool) string {
	if d == dialect.PostgreSQL {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	if b {
		return "1"
	}
	return "0"
}

// float renders culture-invariant shortest form. NaN and infinities have no
// portable literal and become NULL.
func float(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// guid renders a UUID; Oracle stores them as RAW(16)
func guid(d dialect.Dialect, u uuid.UUID) string {
	if d == dialect.Oracle {
		return "HEXTORAW('" + strings.ToUpper(hex.EncodeToString(u[:])) + "')"
	}
	return "'" + u.String() + "'"
}
