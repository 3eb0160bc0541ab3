// Package db reads schemas and table rows from live PostgreSQL, MySQL and
// SQLite databases into the schema model.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

var (
	// ErrEmptyURL is returned when no database URL was given
	ErrEmptyURL = errors.New("database URL is required")
	// ErrUnsupportedURL is returned for URL schemes without a reader
	ErrUnsupportedURL = errors.New("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
	// ErrTableNotFound is returned when a requested table does not exist
	ErrTableNotFound = errors.New("table not found")
)

// Reader loads a schema and table rows from one database
type Reader interface {
	// Dialect returns the SQL dialect of the source database
	Dialect() dialect.Dialect
	// ReadSchema reads the named tables, or every user table when tables is empty
	ReadSchema(ctx context.Context, tables []string) (*schema.Schema, error)
	// ReadRows reads the table's rows in key order. maxRows <= 0 reads all.
	ReadRows(ctx context.Context, t *schema.Table, maxRows int) ([]schema.Row, error)
	Close() error
}

// Target is a parsed database URL
type Target struct {
	Dialect dialect.Dialect
	// Conn is what the driver expects: the URL for pgx, a DSN for MySQL,
	// a file path for SQLite.
	Conn string
}

// ParseURL detects the database type of a URL
func ParseURL(url string) (Target, error) {
	if url == "" {
		return Target{}, ErrEmptyURL
	}

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Target{Dialect: dialect.PostgreSQL, Conn: url}, nil
	case strings.HasPrefix(url, "mysql://"):
		// the Go MySQL driver takes a bare DSN
		return Target{Dialect: dialect.MySQL, Conn: strings.TrimPrefix(url, "mysql://")}, nil
	case strings.HasPrefix(url, "sqlite://"):
		return Target{Dialect: dialect.SQLite, Conn: strings.TrimPrefix(url, "sqlite://")}, nil
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, url)
}

// Open connects to the database behind url. schemaName selects the PostgreSQL
// schema or MySQL database; empty means "public" or the DSN's database.
func Open(ctx context.Context, url, schemaName string) (Reader, error) {
	target, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	switch target.Dialect {
	case dialect.PostgreSQL:
		client, err := NewPostgresClient(ctx, target.Conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if schemaName == "" {
			schemaName = "public"
		}
		return NewPostgresReader(client, schemaName), nil

	case dialect.MySQL:
		cfg, err := mysql.ParseDSN(target.Conn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse MySQL DSN: %w", err)
		}
		cfg.ParseTime = true
		if schemaName == "" {
			schemaName = cfg.DBName
		}
		if schemaName == "" {
			return nil, fmt.Errorf("failed to determine database name: DSN has none (please specify a schema name)")
		}
		client, err := NewMySQLClient(ctx, cfg.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		return NewMySQLReader(client, schemaName), nil

	default:
		client, err := NewSQLiteClient(ctx, target.Conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return NewSQLiteReader(client), nil
	}
}

// readTables reads each named table in turn, checking for cancellation between tables
func readTables(ctx context.Context, names []string, read func(context.Context, string) (*schema.Table, error)) ([]*schema.Table, error) {
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		table, err := read(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		if len(table.Columns) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// finish stamps the owning table onto constraints and triggers
func finish(t *schema.Table) *schema.Table {
	for _, c := range t.Constraints() {
		c.TableName = t.Name
		c.SchemaOwner = t.SchemaOwner
	}
	for _, tr := range t.Triggers {
		tr.TableName = t.Name
	}
	return t
}

// keyBuilder groups ordered (constraint, column) rows into constraints
type keyBuilder struct {
	byName map[string]*schema.Constraint
	order  []*schema.Constraint
}

func (k *keyBuilder) add(name string, typ schema.ConstraintType, column string) *schema.Constraint {
	if k.byName == nil {
		k.byName = map[string]*schema.Constraint{}
	}
	c, ok := k.byName[name]
	if !ok {
		c = &schema.Constraint{Name: name, Type: typ}
		k.byName[name] = c
		k.order = append(k.order, c)
	}
	c.Columns = append(c.Columns, column)
	return c
}

// assign files the collected constraints onto the table by type
func (k *keyBuilder) assign(t *schema.Table) {
	for _, c := range k.order {
		switch c.Type {
		case schema.PrimaryKey:
			t.PrimaryKey = c
		case schema.UniqueKey:
			t.UniqueKeys = append(t.UniqueKeys, c)
		case schema.ForeignKey:
			t.ForeignKeys = append(t.ForeignKeys, c)
		}
	}
}

// normalizeRule maps vendor referential actions onto the spelling DDL uses.
// NO ACTION is the default and is dropped.
func normalizeRule(rule string) string {
	rule = strings.ToUpper(strings.TrimSpace(rule))
	switch rule {
	case "", "NO ACTION", "NONE":
		return ""
	case "SET_NULL":
		return "SET NULL"
	case "SET_DEFAULT":
		return "SET DEFAULT"
	}
	return rule
}

// ownsIndex reports whether a named constraint already accounts for the index
func ownsIndex(t *schema.Table, name string) bool {
	for _, c := range t.Constraints() {
		if c.Name != "" && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// intPtr converts a nullable size, dropping values no dialect can render
func intPtr(v int64, valid bool) *int {
	if !valid || v <= 0 || v > 1<<31-1 {
		return nil
	}
	return schema.Int(int(v))
}
