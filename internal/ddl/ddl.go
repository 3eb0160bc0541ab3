// Package ddl writes CREATE, ALTER and DROP statements for one SQL dialect.
//
// Each dialect has a flat Writer implementation selected once with New. Writers
// return statements without terminators; the script package batches them.
package ddl

import (
	"fmt"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

// Kind tells the batcher how a statement must be terminated
type Kind int

const (
	// KindDDL is a plain statement terminated with ";" or a batch separator
	KindDDL Kind = iota
	// KindComment is an advisory "-- ..." line, never executed
	KindComment
	// KindBlock is procedural code (PL/SQL, PSQL) needing its own terminator
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindBlock:
		return "block"
	default:
		return "ddl"
	}
}

// Statement is one unit of generated SQL
type Statement struct {
	Kind Kind
	Text string
}

// DDL wraps text as a plain statement
func DDL(format string, args ...any) Statement {
	return Statement{Kind: KindDDL, Text: fmt.Sprintf(format, args...)}
}

// Comment wraps text as an advisory comment line
func Comment(format string, args ...any) Statement {
	return Statement{Kind: KindComment, Text: "-- " + fmt.Sprintf(format, args...)}
}

// Block wraps procedural code
func Block(text string) Statement {
	return Statement{Kind: KindBlock, Text: text}
}

// Options configures a writer
type Options struct {
	// IncludeSchema qualifies table names with their owner where the dialect has schemas.
	IncludeSchema bool
	// RawNames emits identifiers unquoted.
	RawNames bool
	// Schema is the snapshot the tables belong to. It resolves foreign key targets
	// and keeps generated sequence/trigger names unique. May be nil.
	Schema *schema.Schema
}

// Writer produces DDL for one dialect
type Writer interface {
	Dialect() dialect.Dialect
	Escaper() dialect.Escaper
	MapType(col *schema.Column) string

	WriteCreateTable(t *schema.Table) []Statement
	WritePrimaryKey(t *schema.Table) []Statement
	WriteForeignKeys(t *schema.Table) []Statement
	WriteUniqueKeys(t *schema.Table) []Statement
	WriteCheckConstraints(t *schema.Table) []Statement
	WriteIndexes(t *schema.Table) []Statement
	WriteIdentity(t *schema.Table) []Statement

	WriteDropTable(t *schema.Table) []Statement
	WriteDropForeignKeys(t *schema.Table) []Statement
	WriteDropIdentity(t *schema.Table) []Statement
	// WriteIdentityReset moves the identity generator past the highest stored
	// value after rows were inserted with explicit keys.
	WriteIdentityReset(t *schema.Table) []Statement

	AddColumn(t *schema.Table, col *schema.Column) []Statement
	DropColumn(t *schema.Table, col *schema.Column) []Statement
	AlterColumn(t *schema.Table, before, after *schema.Column) []Statement
	AddConstraint(t *schema.Table, c *schema.Constraint) []Statement
	DropConstraint(t *schema.Table, c *schema.Constraint) []Statement
	RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement
	RenameTable(t *schema.Table, oldName string) []Statement
	AddIndex(t *schema.Table, idx *schema.Index) []Statement
	DropIndex(t *schema.Table, idx *schema.Index) []Statement
}

// New returns the writer for the dialect
func New(d dialect.Dialect, opts Options) (Writer, error) {
	b := newBase(d, opts)
	switch d {
	case dialect.SQLServer:
		return &sqlServerWriter{base: b}, nil
	case dialect.Oracle:
		return &oracleWriter{base: b}, nil
	case dialect.MySQL:
		return &mySQLWriter{base: b}, nil
	case dialect.SQLite:
		return &sqliteWriter{base: b}, nil
	case dialect.Firebird:
		return &firebirdWriter{base: b}, nil
	case dialect.PostgreSQL:
		return &postgresWriter{base: b}, nil
	}
	return nil, fmt.Errorf("%w: %q", dialect.ErrUnknownDialect, string(d))
}
