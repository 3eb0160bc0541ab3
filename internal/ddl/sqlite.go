package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/schema"
)

// sqliteWriter declares every constraint inside CREATE TABLE because SQLite
// cannot add or drop constraints afterwards.
type sqliteWriter struct {
	*base
}

// rowIDColumn returns the identity column when it can become the rowid alias,
// which requires it to be the sole primary key column
func rowIDColumn(t *schema.Table) *schema.Column {
	col := t.IdentityColumn()
	if col == nil || !singleColumnKey(t) || !strings.EqualFold(t.PrimaryKey.Columns[0], col.Name) {
		return nil
	}
	return col
}

func (w *sqliteWriter) column(t *schema.Table, col *schema.Column) string {
	if col.IsComputed && col.ComputedDefinition != "" {
		return fmt.Sprintf("%s %s GENERATED ALWAYS AS %s", w.quote(col.Name), w.MapType(col), parenthesize(col.ComputedDefinition))
	}
	if rowID := rowIDColumn(t); rowID == col {
		return w.columnDefinition(t, col, columnParts{typ: "INTEGER", afterNull: "PRIMARY KEY", omitNull: true})
	}
	return w.columnDefinition(t, col, columnParts{typ: w.MapType(col)})
}

func (w *sqliteWriter) WriteCreateTable(t *schema.Table) []Statement {
	var out []Statement
	if col := t.IdentityColumn(); col != nil && rowIDColumn(t) == nil {
		out = append(out, Comment("%s.%s cannot autoincrement: SQLite needs a single-column INTEGER PRIMARY KEY", t.Name, col.Name))
	}

	defs := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+2)
	for _, col := range t.Columns {
		defs = append(defs, w.column(t, col))
	}
	if t.PrimaryKey != nil && len(t.PrimaryKey.Columns) > 0 && rowIDColumn(t) == nil {
		defs = append(defs, w.primaryKeyClause(t))
	}
	for _, uk := range t.UniqueKeys {
		defs = append(defs, w.uniqueClause(t, uk))
	}
	for _, ck := range t.CheckConstraints {
		if strings.TrimSpace(ck.Expression) != "" {
			defs = append(defs, w.checkClause(t, ck))
		}
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, w.foreignKeyClause(t, fk, nil))
	}
	return append(out, w.createTable(t, defs))
}

// The constraint writers return nothing: CREATE TABLE already declared them.

func (w *sqliteWriter) WritePrimaryKey(*schema.Table) []Statement       { return nil }
func (w *sqliteWriter) WriteForeignKeys(*schema.Table) []Statement      { return nil }
func (w *sqliteWriter) WriteUniqueKeys(*schema.Table) []Statement       { return nil }
func (w *sqliteWriter) WriteCheckConstraints(*schema.Table) []Statement { return nil }
func (w *sqliteWriter) WriteIdentity(*schema.Table) []Statement         { return nil }
func (w *sqliteWriter) WriteDropForeignKeys(*schema.Table) []Statement  { return nil }
func (w *sqliteWriter) WriteDropIdentity(*schema.Table) []Statement     { return nil }

func (w *sqliteWriter) WriteIndexes(t *schema.Table) []Statement {
	return w.indexes(t, func(idx *schema.Index) Statement { return w.createIndex(t, idx, "", "") })
}

func (w *sqliteWriter) WriteDropTable(t *schema.Table) []Statement {
	return []Statement{DDL("DROP TABLE %s", w.table(t))}
}

func (w *sqliteWriter) AddColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s ADD COLUMN %s", w.table(t), w.column(t, col))}
}

func (w *sqliteWriter) DropColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s DROP COLUMN %s", w.table(t), w.quote(col.Name))}
}

func (w *sqliteWriter) AlterColumn(t *schema.Table, _, after *schema.Column) []Statement {
	return w.unsupported("Manual table recreation required to alter column %s.%s to %s", t.Name, after.Name, w.MapType(after))
}

func (w *sqliteWriter) AddConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	return w.unsupported("Manual table recreation required to add %s constraint %s on %s", c.Type, c.Name, t.Name)
}

func (w *sqliteWriter) DropConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	return w.unsupported("Manual table recreation required to drop %s constraint %s on %s", c.Type, c.Name, t.Name)
}

func (w *sqliteWriter) RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME COLUMN %s TO %s", w.table(t), w.quote(oldName), w.quote(col.Name))}
}

func (w *sqliteWriter) RenameTable(t *schema.Table, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME TO %s", w.tableNamed(t.SchemaOwner, oldName), w.quote(t.Name))}
}

func (w *sqliteWriter) AddIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{w.createIndex(t, idx, "", "")}
}

func (w *sqliteWriter) DropIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{DDL("DROP INDEX %s", w.indexName(t, idx))}
}
