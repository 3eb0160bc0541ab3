package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/literal"
	"github.com/tordrt/schemascript/internal/schema"
)

type sqlServerWriter struct {
	*base
}

func (w *sqlServerWriter) column(t *schema.Table, col *schema.Column) string {
	if col.IsComputed && col.ComputedDefinition != "" {
		return w.quote(col.Name) + " AS " + parenthesize(col.ComputedDefinition)
	}
	parts := columnParts{typ: w.MapType(col)}
	if col.IsIdentity {
		seed, inc := identitySeed(col)
		parts.afterType = fmt.Sprintf("IDENTITY(%d,%d)", seed, inc)
	}
	return w.columnDefinition(t, col, parts)
}

func (w *sqlServerWriter) WriteCreateTable(t *schema.Table) []Statement {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, w.column(t, col))
	}
	if singleColumnKey(t) {
		defs = append(defs, w.primaryKeyClause(t))
	}
	return []Statement{w.createTable(t, defs)}
}

func (w *sqlServerWriter) WritePrimaryKey(t *schema.Table) []Statement {
	return w.compositePrimaryKey(t)
}

func (w *sqlServerWriter) WriteForeignKeys(t *schema.Table) []Statement {
	return w.foreignKeys(t, nil)
}

func (w *sqlServerWriter) WriteUniqueKeys(t *schema.Table) []Statement {
	return w.uniqueKeys(t)
}

func (w *sqlServerWriter) WriteCheckConstraints(t *schema.Table) []Statement {
	return w.checkConstraints(t)
}

func (w *sqlServerWriter) WriteIndexes(t *schema.Table) []Statement {
	return w.indexes(t, func(idx *schema.Index) Statement { return w.index(t, idx) })
}

func (w *sqlServerWriter) index(t *schema.Table, idx *schema.Index) Statement {
	var modifier string
	switch strings.ToUpper(idx.IndexType) {
	case "CLUSTERED":
		modifier = "CLUSTERED"
	case "NONCLUSTERED":
		modifier = "NONCLUSTERED"
	}
	return w.createIndex(t, idx, modifier, "")
}

// WriteIdentity returns nothing: IDENTITY is part of the column definition
func (w *sqlServerWriter) WriteIdentity(*schema.Table) []Statement {
	return nil
}

func (w *sqlServerWriter) WriteDropTable(t *schema.Table) []Statement {
	return []Statement{DDL("DROP TABLE %s", w.table(t))}
}

func (w *sqlServerWriter) WriteDropForeignKeys(t *schema.Table) []Statement {
	return w.dropForeignKeys(t)
}

func (w *sqlServerWriter) WriteDropIdentity(*schema.Table) []Statement {
	return nil
}

func (w *sqlServerWriter) AddColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s ADD %s", w.table(t), w.column(t, col))}
}

func (w *sqlServerWriter) DropColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s DROP COLUMN %s", w.table(t), w.quote(col.Name))}
}

func (w *sqlServerWriter) AlterColumn(t *schema.Table, before, after *schema.Column) []Statement {
	null := "NULL"
	if !after.Nullable {
		null = "NOT NULL"
	}
	out := []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s %s %s", w.table(t), w.quote(after.Name), w.MapType(after), null)}

	oldDefault, newDefault := TranslateDefault(w.d, before.DefaultValue), TranslateDefault(w.d, after.DefaultValue)
	switch {
	case oldDefault == newDefault:
	case oldDefault == "":
		df := &schema.Constraint{Type: schema.Default, Columns: []string{after.Name}, Expression: newDefault}
		out = append(out, w.AddConstraint(t, df)...)
	default:
		out = append(out, Comment("default of %s.%s changed from %s to %s; drop its default constraint and add the new one",
			t.Name, after.Name, oldDefault, newDefault))
	}
	return out
}

func (w *sqlServerWriter) AddConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s ADD CONSTRAINT %s DEFAULT %s FOR %s",
			w.table(t), w.constraintName(t, c), TranslateDefault(w.d, c.Expression), w.quote(col.Name))}
	}
	return w.addConstraint(t, c, nil)
}

func (w *sqlServerWriter) DropConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	return []Statement{w.dropConstraint(t, c)}
}

// RenameColumn uses sp_rename, which takes the old name qualified and the new one bare
func (w *sqlServerWriter) RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement {
	old := w.table(t) + "." + w.quote(oldName)
	return []Statement{DDL("EXEC sp_rename %s, %s, 'COLUMN'",
		literal.ToLiteral(w.d, old, "NVARCHAR"), literal.ToLiteral(w.d, col.Name, "NVARCHAR"))}
}

func (w *sqlServerWriter) RenameTable(t *schema.Table, oldName string) []Statement {
	old := w.tableNamed(t.SchemaOwner, oldName)
	return []Statement{DDL("EXEC sp_rename %s, %s",
		literal.ToLiteral(w.d, old, "NVARCHAR"), literal.ToLiteral(w.d, t.Name, "NVARCHAR"))}
}

func (w *sqlServerWriter) AddIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{w.index(t, idx)}
}

func (w *sqlServerWriter) DropIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{DDL("DROP INDEX %s ON %s", w.indexName(t, idx), w.table(t))}
}
