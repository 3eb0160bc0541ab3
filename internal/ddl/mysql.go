package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/schema"
)

type mySQLWriter struct {
	*base
}

func (w *mySQLWriter) column(t *schema.Table, col *schema.Column) string {
	if col.IsComputed && col.ComputedDefinition != "" {
		return fmt.Sprintf("%s %s GENERATED ALWAYS AS %s", w.quote(col.Name), w.MapType(col), parenthesize(col.ComputedDefinition))
	}
	parts := columnParts{typ: w.MapType(col)}
	if col.IsIdentity {
		parts.afterNull = "AUTO_INCREMENT"
	}
	return w.columnDefinition(t, col, parts)
}

// InnoDB parses SET DEFAULT but rejects it
func mySQLRules(_, rule string) bool {
	return rule != "SET DEFAULT"
}

func (w *mySQLWriter) WriteCreateTable(t *schema.Table) []Statement {
	defs := make([]string, 0, len(t.Columns)+2)
	for _, col := range t.Columns {
		defs = append(defs, w.column(t, col))
	}
	if w.inlineKey(t) {
		defs = append(defs, w.primaryKeyClause(t))
	}
	// InnoDB wants the AUTO_INCREMENT column first in some key
	if col := t.IdentityColumn(); col != nil && !leadsPrimaryKey(t, col) {
		defs = append(defs, fmt.Sprintf("KEY (%s)", w.quote(col.Name)))
	}
	return []Statement{w.createTable(t, defs)}
}

// inlineKey reports whether CREATE TABLE declares the primary key.
// Tables with an AUTO_INCREMENT column must carry their keys there.
func (w *mySQLWriter) inlineKey(t *schema.Table) bool {
	return singleColumnKey(t) || (t.PrimaryKey != nil && t.IdentityColumn() != nil)
}

func leadsPrimaryKey(t *schema.Table, col *schema.Column) bool {
	return t.PrimaryKey != nil && len(t.PrimaryKey.Columns) > 0 && strings.EqualFold(t.PrimaryKey.Columns[0], col.Name)
}

func (w *mySQLWriter) WritePrimaryKey(t *schema.Table) []Statement {
	if w.inlineKey(t) {
		return nil
	}
	return w.compositePrimaryKey(t)
}

func (w *mySQLWriter) WriteForeignKeys(t *schema.Table) []Statement {
	return w.foreignKeys(t, mySQLRules)
}

func (w *mySQLWriter) WriteUniqueKeys(t *schema.Table) []Statement {
	return w.uniqueKeys(t)
}

func (w *mySQLWriter) WriteCheckConstraints(t *schema.Table) []Statement {
	return w.checkConstraints(t)
}

func (w *mySQLWriter) WriteIndexes(t *schema.Table) []Statement {
	return w.indexes(t, func(idx *schema.Index) Statement { return w.index(t, idx) })
}

func (w *mySQLWriter) index(t *schema.Table, idx *schema.Index) Statement {
	switch kind := strings.ToUpper(idx.IndexType); kind {
	case "FULLTEXT", "SPATIAL":
		plain := *idx
		plain.IsUnique = false
		return w.createIndex(t, &plain, kind, "")
	}
	return w.createIndex(t, idx, "", "")
}

func (w *mySQLWriter) WriteIdentity(*schema.Table) []Statement {
	return nil
}

func (w *mySQLWriter) WriteDropTable(t *schema.Table) []Statement {
	return []Statement{DDL("DROP TABLE %s", w.table(t))}
}

func (w *mySQLWriter) WriteDropForeignKeys(t *schema.Table) []Statement {
	var out []Statement
	for _, fk := range t.ForeignKeys {
		out = append(out, w.DropConstraint(t, fk)...)
	}
	return out
}

func (w *mySQLWriter) WriteDropIdentity(*schema.Table) []Statement {
	return nil
}

func (w *mySQLWriter) AddColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s ADD COLUMN %s", w.table(t), w.column(t, col))}
}

func (w *mySQLWriter) DropColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s DROP COLUMN %s", w.table(t), w.quote(col.Name))}
}

// AlterColumn restates the whole definition; MODIFY replaces type, default and nullability at once
func (w *mySQLWriter) AlterColumn(t *schema.Table, _, after *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s MODIFY COLUMN %s", w.table(t), w.column(t, after))}
}

func (w *mySQLWriter) AddConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", w.table(t), w.quote(col.Name), TranslateDefault(w.d, c.Expression))}
	}
	return w.addConstraint(t, c, mySQLRules)
}

// DropConstraint uses the constraint-specific DROP forms MySQL requires
func (w *mySQLWriter) DropConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	table := w.table(t)
	switch c.Type {
	case schema.PrimaryKey:
		return []Statement{DDL("ALTER TABLE %s DROP PRIMARY KEY", table)}
	case schema.ForeignKey:
		return []Statement{DDL("ALTER TABLE %s DROP FOREIGN KEY %s", table, w.constraintName(t, c))}
	case schema.UniqueKey:
		return []Statement{DDL("ALTER TABLE %s DROP INDEX %s", table, w.constraintName(t, c))}
	case schema.Check:
		return []Statement{DDL("ALTER TABLE %s DROP CHECK %s", table, w.constraintName(t, c))}
	case schema.Default:
		if col := defaultColumn(t, c); col != nil {
			return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, w.quote(col.Name))}
		}
	}
	return w.unsupported("cannot drop constraint %s", c.Name)
}

func (w *mySQLWriter) RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME COLUMN %s TO %s", w.table(t), w.quote(oldName), w.quote(col.Name))}
}

func (w *mySQLWriter) RenameTable(t *schema.Table, oldName string) []Statement {
	return []Statement{DDL("RENAME TABLE %s TO %s", w.tableNamed(t.SchemaOwner, oldName), w.table(t))}
}

func (w *mySQLWriter) AddIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{w.index(t, idx)}
}

func (w *mySQLWriter) DropIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{DDL("DROP INDEX %s ON %s", w.indexName(t, idx), w.table(t))}
}
