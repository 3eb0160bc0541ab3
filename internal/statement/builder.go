// Package statement builds parameterized SELECT and INSERT text per dialect.
// Values are never spliced into the SQL; callers bind them by Statement.Params.
package statement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
	"github.com/tordrt/schemascript/internal/types"
)

// Statement is SQL text plus the parameter names in placeholder order.
// Args holds bound values when the builder knows them (paging).
type Statement struct {
	SQL    string
	Params []string
	Args   []any
}

// Options configures a Builder
type Options struct {
	IncludeSchema bool
	RawNames      bool
}

// InsertOptions selects which columns an INSERT carries.
// Computed and rowversion columns are never inserted.
type InsertOptions struct {
	IncludeIdentity bool
	IncludeBlobs    bool
}

// Page is a zero-based row window
type Page struct {
	Offset int
	Size   int
}

// Paging parameter names
const (
	ParamOffset   = "offset"
	ParamPageSize = "pageSize"
	ParamMinRow   = "minRow"
	ParamMaxRow   = "maxRow"
	ParamFirstRow = "firstRow"
	ParamLastRow  = "lastRow"
)

// Bind returns the page values in the statement's parameter order
func (p Page) Bind(stmt Statement) []any {
	values := map[string]int{
		ParamOffset:   p.Offset,
		ParamPageSize: p.Size,
		ParamMinRow:   p.Offset,
		ParamMaxRow:   p.Offset + p.Size,
		ParamFirstRow: p.Offset + 1,
		ParamLastRow:  p.Offset + p.Size,
	}
	args := make([]any, len(stmt.Params))
	for i, name := range stmt.Params {
		args[i] = values[name]
	}
	return args
}

// Builder renders statements for one dialect
type Builder struct {
	d    dialect.Dialect
	esc  dialect.Escaper
	ph   Placeholder
	opts Options
}

// New returns a builder for the dialect
func New(d dialect.Dialect, opts Options) (*Builder, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", dialect.ErrUnknownDialect, string(d))
	}
	return &Builder{d: d, esc: dialect.NewEscaper(d, !opts.RawNames), ph: PlaceholderFor(d), opts: opts}, nil
}

// Dialect returns the builder's dialect
func (b *Builder) Dialect() dialect.Dialect {
	return b.d
}

// ParameterName returns the placeholder a named-parameter dialect uses for
// the column ("@Order_Date", ":Order_Date"). Positional dialects return the
// bare name recorded in Params.
func (b *Builder) ParameterName(column string) string {
	if b.ph.Named {
		return b.ph.Char + paramName(column)
	}
	return paramName(column)
}

// Table returns the escaped, optionally owner-qualified table name
func (b *Builder) Table(t *schema.Table) string {
	owner := t.SchemaOwner
	if !b.opts.IncludeSchema {
		owner = ""
	}
	return b.esc.Qualify(owner, t.Name)
}

func (b *Builder) selectList(t *schema.Table) string {
	if len(t.Columns) == 0 {
		return "*"
	}
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return b.esc.EscapeList(names)
}

// orderBy sorts by the primary key so pages and data scripts are stable
func (b *Builder) orderBy(t *schema.Table) string {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) == 0 {
		return ""
	}
	return " ORDER BY " + b.esc.EscapeList(t.PrimaryKey.Columns)
}

// SelectAll reads every row, in key order when the table has a primary key
func (b *Builder) SelectAll(t *schema.Table) Statement {
	return Statement{SQL: "SELECT " + b.selectList(t) + " FROM " + b.Table(t) + b.orderBy(t)}
}

// Count counts the table's rows
func (b *Builder) Count(t *schema.Table) Statement {
	return Statement{SQL: "SELECT COUNT(*) FROM " + b.Table(t)}
}

// SelectPage reads one window of rows. The window is bound through Args.
func (b *Builder) SelectPage(t *schema.Table, page Page) Statement {
	stmt := b.selectPage(t)
	stmt.Args = page.Bind(stmt)
	return stmt
}

func (b *Builder) selectPage(t *schema.Table) Statement {
	var p params
	base := "SELECT " + b.selectList(t) + " FROM " + b.Table(t)
	order := b.orderBy(t)

	switch b.d {
	case dialect.SQLServer:
		if order == "" {
			// OFFSET needs an ORDER BY
			order = " ORDER BY (SELECT NULL)"
		}
		return p.statement(fmt.Sprintf("%s%s OFFSET %s ROWS FETCH NEXT %s ROWS ONLY",
			base, order, p.add(b.ph, ParamOffset), p.add(b.ph, ParamPageSize)))
	case dialect.Oracle:
		return p.statement(fmt.Sprintf(
			"SELECT * FROM (SELECT q.*, ROWNUM AS rn__ FROM (%s%s) q WHERE ROWNUM <= %s) WHERE rn__ > %s",
			base, order, p.add(b.ph, ParamMaxRow), p.add(b.ph, ParamMinRow)))
	case dialect.Firebird:
		return p.statement(fmt.Sprintf("%s%s ROWS %s TO %s",
			base, order, p.add(b.ph, ParamFirstRow), p.add(b.ph, ParamLastRow)))
	default:
		return p.statement(fmt.Sprintf("%s%s LIMIT %s OFFSET %s",
			base, order, p.add(b.ph, ParamPageSize), p.add(b.ph, ParamOffset)))
	}
}

// InsertColumns returns the columns an INSERT carries, in table order
func InsertColumns(t *schema.Table, opts InsertOptions) []*schema.Column {
	var cols []*schema.Column
	for _, c := range t.Columns {
		if c.IsComputed {
			continue
		}
		if c.IsIdentity && !opts.IncludeIdentity {
			continue
		}
		info := types.Classify(c)
		if info.Family == types.RowVersion {
			continue
		}
		if info.IsLarge() && !opts.IncludeBlobs {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// Insert renders a one-row INSERT with a parameter per column
func (b *Builder) Insert(t *schema.Table, opts InsertOptions) Statement {
	cols := InsertColumns(t, opts)
	var p params
	names := make([]string, len(cols))
	values := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		values[i] = p.add(b.ph, paramName(c.Name))
	}
	return p.statement(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.Table(t), b.esc.EscapeList(names), strings.Join(values, ", ")))
}

// params collects parameter names, keeping them unique within one statement
type params struct {
	names []string
	seen  map[string]bool
}

func (p *params) add(ph Placeholder, name string) string {
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	unique := name
	for i := 2; p.seen[strings.ToLower(unique)]; i++ {
		unique = name + strconv.Itoa(i)
	}
	p.seen[strings.ToLower(unique)] = true
	p.names = append(p.names, unique)
	return ph.render(len(p.names), unique)
}

func (p *params) statement(sql string) Statement {
	return Statement{SQL: sql, Params: p.names}
}
