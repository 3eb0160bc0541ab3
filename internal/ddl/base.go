package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
	"github.com/tordrt/schemascript/internal/types"
)

// base carries what every dialect writer shares. Dialect writers embed it and
// implement the Writer methods themselves, calling these helpers.
type base struct {
	d    dialect.Dialect
	esc  dialect.Escaper
	opts Options
}

func newBase(d dialect.Dialect, opts Options) *base {
	return &base{d: d, esc: dialect.NewEscaper(d, !opts.RawNames), opts: opts}
}

func (b *base) Dialect() dialect.Dialect {
	return b.d
}

func (b *base) Escaper() dialect.Escaper {
	return b.esc
}

// MapType renders the column type, falling back to the source text when the
// mapper has nothing to say
func (b *base) MapType(col *schema.Column) string {
	if typ := types.MapType(b.d, col); typ != "" {
		return typ
	}
	return col.DbDataType
}

func (b *base) table(t *schema.Table) string {
	return b.tableNamed(t.SchemaOwner, t.Name)
}

func (b *base) tableNamed(owner, name string) string {
	if !b.opts.IncludeSchema {
		owner = ""
	}
	return b.esc.Qualify(owner, name)
}

func (b *base) quote(name string) string {
	return b.esc.Escape(name)
}

func (b *base) columns(names []string) string {
	return b.esc.EscapeList(names)
}

// objectName shortens a constraint/index/sequence name to the dialect limit and escapes it
func (b *base) objectName(name string) string {
	return b.esc.Escape(b.esc.ShortenName(name))
}

// constraintName returns the declared name or a generated one
func (b *base) constraintName(t *schema.Table, c *schema.Constraint) string {
	if c.Name != "" {
		return b.objectName(c.Name)
	}
	var generated string
	switch c.Type {
	case schema.PrimaryKey:
		generated = "PK_" + t.Name
	case schema.ForeignKey:
		generated = "FK_" + t.Name + "_" + c.RefersToTable
		if len(c.Columns) > 0 {
			generated += "_" + strings.Join(c.Columns, "_")
		}
	case schema.UniqueKey:
		generated = "UK_" + t.Name + "_" + strings.Join(c.Columns, "_")
	case schema.Check:
		generated = "CK_" + t.Name + "_" + strings.Join(c.Columns, "_")
		if len(c.Columns) == 0 {
			generated = fmt.Sprintf("CK_%s_%d", t.Name, indexOf(t.CheckConstraints, c)+1)
		}
	case schema.Default:
		generated = "DF_" + t.Name + "_" + strings.Join(c.Columns, "_")
	default:
		generated = t.Name + "_" + strings.Join(c.Columns, "_")
	}
	return b.objectName(generated)
}

func indexOf(list []*schema.Constraint, c *schema.Constraint) int {
	for i, item := range list {
		if item == c {
			return i
		}
	}
	return 0
}

func (b *base) indexName(t *schema.Table, idx *schema.Index) string {
	if idx.Name != "" {
		return b.objectName(idx.Name)
	}
	names := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		names[i] = c.Name
	}
	return b.objectName("IX_" + t.Name + "_" + strings.Join(names, "_"))
}

// columnDefault resolves the default from the column or a matching default constraint
func columnDefault(t *schema.Table, col *schema.Column) string {
	if col.DefaultValue != "" {
		return col.DefaultValue
	}
	for _, dc := range t.DefaultConstraints {
		if len(dc.Columns) == 1 && strings.EqualFold(dc.Columns[0], col.Name) {
			return dc.Expression
		}
	}
	return ""
}

// columnParts is the dialect-specific decoration of a column definition
type columnParts struct {
	typ       string
	afterType string // IDENTITY(1,1), GENERATED ... AS IDENTITY
	afterNull string // AUTO_INCREMENT, PRIMARY KEY
	omitNull  bool
}

func (b *base) columnDefinition(t *schema.Table, col *schema.Column, parts columnParts) string {
	out := []string{b.quote(col.Name)}
	if parts.typ != "" {
		out = append(out, parts.typ)
	}
	if parts.afterType != "" {
		out = append(out, parts.afterType)
	}
	if !col.IsIdentity {
		if def := TranslateDefault(b.d, columnDefault(t, col)); def != "" {
			out = append(out, "DEFAULT "+def)
		}
	}
	if (!col.Nullable || t.IsPrimaryKeyColumn(col.Name)) && !parts.omitNull {
		out = append(out, "NOT NULL")
	}
	if parts.afterNull != "" {
		out = append(out, parts.afterNull)
	}
	return strings.Join(out, " ")
}

func (b *base) createTable(t *schema.Table, definitions []string) Statement {
	return DDL("CREATE TABLE %s (\n  %s\n)", b.table(t), strings.Join(definitions, ",\n  "))
}

// singleColumnKey reports whether the primary key is declared inline in CREATE TABLE
func singleColumnKey(t *schema.Table) bool {
	return t.PrimaryKey != nil && len(t.PrimaryKey.Columns) == 1
}

func (b *base) primaryKeyClause(t *schema.Table) string {
	return fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", b.constraintName(t, t.PrimaryKey), b.columns(t.PrimaryKey.Columns))
}

// referencedColumns falls back to the target's primary key when the foreign key
// does not list its referenced columns
func (b *base) referencedColumns(fk *schema.Constraint) []string {
	if len(fk.RefersToColumns) > 0 {
		return fk.RefersToColumns
	}
	if target := b.opts.Schema.FindTable(fk.RefersToSchema, fk.RefersToTable); target != nil && target.PrimaryKey != nil {
		return target.PrimaryKey.Columns
	}
	return nil
}

// ruleFilter decides whether "ON <event> <rule>" can be emitted
type ruleFilter func(event, rule string) bool

func normalizeRule(rule string) string {
	rule = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(rule, "_", " ")))
	switch rule {
	case "", "NO ACTION", "RESTRICT", "NONE":
		return ""
	}
	return rule
}

func (b *base) foreignKeyClause(t *schema.Table, fk *schema.Constraint, allow ruleFilter) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s",
		b.constraintName(t, fk), b.columns(fk.Columns), b.tableNamed(fk.RefersToSchema, fk.RefersToTable))
	if refs := b.referencedColumns(fk); len(refs) > 0 {
		fmt.Fprintf(&sb, " (%s)", b.columns(refs))
	}
	if rule := normalizeRule(fk.DeleteRule); rule != "" && (allow == nil || allow("DELETE", rule)) {
		sb.WriteString(" ON DELETE " + rule)
	}
	if rule := normalizeRule(fk.UpdateRule); rule != "" && (allow == nil || allow("UPDATE", rule)) {
		sb.WriteString(" ON UPDATE " + rule)
	}
	return sb.String()
}

func (b *base) uniqueClause(t *schema.Table, uk *schema.Constraint) string {
	return fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", b.constraintName(t, uk), b.columns(uk.Columns))
}

func (b *base) checkClause(t *schema.Table, ck *schema.Constraint) string {
	return fmt.Sprintf("CONSTRAINT %s CHECK %s", b.constraintName(t, ck), parenthesize(ck.Expression))
}

// parenthesize wraps expr in parentheses unless one pair already encloses all of it
func parenthesize(expr string) string {
	expr = strings.TrimSpace(expr)
	if enclosed(expr) {
		return expr
	}
	return "(" + expr + ")"
}

func enclosed(expr string) bool {
	if !strings.HasPrefix(expr, "(") || !strings.HasSuffix(expr, ")") {
		return false
	}
	depth := 0
	for i, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(expr)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func (b *base) alterAdd(t *schema.Table, clause string) Statement {
	return DDL("ALTER TABLE %s ADD %s", b.table(t), clause)
}

func (b *base) dropConstraint(t *schema.Table, c *schema.Constraint) Statement {
	return DDL("ALTER TABLE %s DROP CONSTRAINT %s", b.table(t), b.constraintName(t, c))
}

// compositePrimaryKey is pass two for keys that CREATE TABLE did not declare inline
func (b *base) compositePrimaryKey(t *schema.Table) []Statement {
	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) < 2 {
		return nil
	}
	return []Statement{b.alterAdd(t, b.primaryKeyClause(t))}
}

func (b *base) foreignKeys(t *schema.Table, allow ruleFilter) []Statement {
	var out []Statement
	for _, fk := range t.ForeignKeys {
		out = append(out, b.alterAdd(t, b.foreignKeyClause(t, fk, allow)))
	}
	return out
}

func (b *base) uniqueKeys(t *schema.Table) []Statement {
	var out []Statement
	for _, uk := range t.UniqueKeys {
		out = append(out, b.alterAdd(t, b.uniqueClause(t, uk)))
	}
	return out
}

func (b *base) checkConstraints(t *schema.Table) []Statement {
	var out []Statement
	for _, ck := range t.CheckConstraints {
		if strings.TrimSpace(ck.Expression) == "" {
			continue
		}
		out = append(out, b.alterAdd(t, b.checkClause(t, ck)))
	}
	return out
}

func (b *base) dropForeignKeys(t *schema.Table) []Statement {
	var out []Statement
	for _, fk := range t.ForeignKeys {
		out = append(out, b.dropConstraint(t, fk))
	}
	return out
}

// backsConstraint reports whether the index only exists to enforce a key
func backsConstraint(t *schema.Table, idx *schema.Index) bool {
	if idx.Name == "" {
		return false
	}
	for _, c := range t.Constraints() {
		if strings.EqualFold(c.Name, idx.Name) {
			return true
		}
	}
	return false
}

func (b *base) indexColumns(idx *schema.Index) string {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = b.quote(c.Name)
		if c.Descending {
			cols[i] += " DESC"
		}
	}
	return strings.Join(cols, ", ")
}

// createIndex renders CREATE [UNIQUE] [modifier] INDEX name ON table [using] (cols)
func (b *base) createIndex(t *schema.Table, idx *schema.Index, modifier, using string) Statement {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.IsUnique {
		sb.WriteString("UNIQUE ")
	}
	if modifier != "" {
		sb.WriteString(modifier + " ")
	}
	fmt.Fprintf(&sb, "INDEX %s ON %s ", b.indexName(t, idx), b.table(t))
	if using != "" {
		sb.WriteString(using + " ")
	}
	sb.WriteString("(" + b.indexColumns(idx) + ")")
	return Statement{Kind: KindDDL, Text: sb.String()}
}

func (b *base) indexes(t *schema.Table, write func(idx *schema.Index) Statement) []Statement {
	var out []Statement
	for _, idx := range t.Indexes {
		if len(idx.Columns) == 0 || backsConstraint(t, idx) {
			continue
		}
		out = append(out, write(idx))
	}
	return out
}

// addConstraint dispatches on the constraint type using ALTER TABLE ... ADD
func (b *base) addConstraint(t *schema.Table, c *schema.Constraint, allow ruleFilter) []Statement {
	switch c.Type {
	case schema.PrimaryKey:
		withKey := *t
		withKey.PrimaryKey = c
		return []Statement{b.alterAdd(t, b.primaryKeyClause(&withKey))}
	case schema.ForeignKey:
		return []Statement{b.alterAdd(t, b.foreignKeyClause(t, c, allow))}
	case schema.UniqueKey:
		return []Statement{b.alterAdd(t, b.uniqueClause(t, c))}
	case schema.Check:
		return []Statement{b.alterAdd(t, b.checkClause(t, c))}
	}
	return []Statement{Comment("constraint %s of type %s cannot be added on %s", c.Name, c.Type, b.d)}
}

func (b *base) unsupported(format string, args ...any) []Statement {
	return []Statement{Comment("%s: %s", b.d, fmt.Sprintf(format, args...))}
}

// identitySeed returns seed and increment, treating an all-zero pair as (1, 1)
func identitySeed(col *schema.Column) (int64, int64) {
	seed, inc := col.IdentitySeed, col.IdentityIncrement
	if seed == 0 && inc == 0 {
		return 1, 1
	}
	if inc == 0 {
		inc = 1
	}
	return seed, inc
}

// defaultColumn returns the column a default constraint applies to
func defaultColumn(t *schema.Table, c *schema.Constraint) *schema.Column {
	if len(c.Columns) == 0 {
		return nil
	}
	return t.FindColumn(c.Columns[0])
}
