// Package dialect names the supported SQL dialects and implements their
// identifier quoting and name-length rules.
package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDialect is returned when a dialect name cannot be resolved
var ErrUnknownDialect = errors.New("unknown SQL dialect")

// Dialect identifies a SQL vendor's syntax and type system
type Dialect string

const (
	SQLServer  Dialect = "sqlserver"
	Oracle     Dialect = "oracle"
	MySQL      Dialect = "mysql"
	SQLite     Dialect = "sqlite"
	Firebird   Dialect = "firebird"
	PostgreSQL Dialect = "postgres"
)

// All lists every supported dialect in a stable order
var All = []Dialect{SQLServer, Oracle, MySQL, SQLite, Firebird, PostgreSQL}

var aliases = map[string]Dialect{
	"sqlserver":  SQLServer,
	"mssql":      SQLServer,
	"tsql":       SQLServer,
	"oracle":     Oracle,
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"firebird":   Firebird,
	"fb":         Firebird,
	"postgres":   PostgreSQL,
	"postgresql": PostgreSQL,
	"pg":         PostgreSQL,
}

// Parse resolves a dialect name or common alias, ignoring case
func Parse(name string) (Dialect, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownDialect)
	}
	d, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDialect, name)
	}
	return d, nil
}

// Valid reports whether d is one of the supported dialects
func (d Dialect) Valid() bool {
	for _, known := range All {
		if d == known {
			return true
		}
	}
	return false
}

func (d Dialect) String() string {
	return string(d)
}

// MaxNameLength is the longest identifier the dialect accepts
func (d Dialect) MaxNameLength() int {
	switch d {
	case Oracle:
		return 30
	case Firebird:
		return 31
	case MySQL:
		return 64
	case PostgreSQL:
		return 63
	default:
		return 128
	}
}

// BatchSeparator is the default separator line between batches.
// Only SqlServer needs one; other dialects terminate statements with semicolons.
func (d Dialect) BatchSeparator() string {
	if d == SQLServer {
		return "GO"
	}
	return ""
}

// SupportsSchemas reports whether tables can be qualified with an owner
func (d Dialect) SupportsSchemas() bool {
	return d != SQLite && d != Firebird
}

// SupportsAlterConstraint reports whether constraints can be added or dropped after CREATE TABLE
func (d Dialect) SupportsAlterConstraint() bool {
	return d != SQLite
}

// NativeIdentity reports whether the dialect has an identity/autonumber column type
func (d Dialect) NativeIdentity() bool {
	return d != Oracle && d != Firebird
}
