package types

import (
	"strconv"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

// renderer turns a classified type into one dialect's spelling.
// It returns "" when the family is unknown to it.
type renderer func(Info) string

var renderers = map[dialect.Dialect]renderer{
	dialect.SQLServer:  sqlServerType,
	dialect.Oracle:     oracleType,
	dialect.MySQL:      mySQLType,
	dialect.SQLite:     sqliteType,
	dialect.Firebird:   firebirdType,
	dialect.PostgreSQL: postgresType,
}

// MapType renders the column's type for the target dialect.
// An empty source type yields "". Unknown types pass through with their sizes.
func MapType(d dialect.Dialect, col *schema.Column) string {
	if col == nil {
		return ""
	}
	return Render(d, Classify(col))
}

// MapTypeName renders a bare type name such as "NVARCHAR(50)"
func MapTypeName(d dialect.Dialect, typeName string) string {
	return Render(d, ClassifyName(typeName))
}

// Render spells an already classified type for the dialect
func Render(d dialect.Dialect, info Info) string {
	if info.Original == "" {
		return ""
	}
	if info.Family == Number || info.Family == Decimal {
		if f, ok := IntegerBucket(info); ok && d != dialect.Oracle {
			info.Family = f
		}
	}
	if info.Family != Unknown {
		if render, ok := renderers[d]; ok {
			if out := render(info); out != "" {
				return out
			}
		}
	}
	return passthrough(info)
}

func passthrough(info Info) string {
	name := info.Name
	switch {
	case info.HasPrecision && info.HasScale:
		return withPrecision(name, info.Precision, info.Scale)
	case info.HasLength && info.Length > 0:
		return withLength(name, info.Length)
	case info.HasPrecision && info.Precision > 0:
		return withLength(name, info.Precision)
	}
	return name
}

func withLength(name string, n int) string {
	return name + "(" + strconv.Itoa(n) + ")"
}

func withPrecision(name string, p, s int) string {
	return name + "(" + strconv.Itoa(p) + "," + strconv.Itoa(s) + ")"
}

// decimal renders NAME(p,s), defaulting a missing precision to 18 and scale to 0
func decimal(name string, info Info) string {
	p, s := 18, 0
	if info.HasPrecision && info.Precision > 0 {
		p = info.Precision
	}
	if info.HasScale {
		s = info.Scale
	}
	return withPrecision(name, p, s)
}

// sized renders NAME(n), falling back to def when no length is known
func sized(name string, info Info, def int) string {
	if info.HasLength && info.Length > 0 {
		return withLength(name, info.Length)
	}
	return withLength(name, def)
}

// unconstrained reports whether a NUMBER/DECIMAL carries no precision at all
func unconstrained(info Info) bool {
	return !info.HasPrecision || info.Precision <= 0
}
