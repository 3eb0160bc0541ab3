package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/schema"
)

type postgresWriter struct {
	*base
}

func (w *postgresWriter) column(t *schema.Table, col *schema.Column) string {
	if col.IsComputed && col.ComputedDefinition != "" {
		return fmt.Sprintf("%s %s GENERATED ALWAYS AS %s STORED", w.quote(col.Name), w.MapType(col), parenthesize(col.ComputedDefinition))
	}
	parts := columnParts{typ: w.MapType(col)}
	if col.IsIdentity {
		parts.afterType = "GENERATED BY DEFAULT AS IDENTITY"
		if seed, inc := identitySeed(col); seed != 1 || inc != 1 {
			parts.afterType += fmt.Sprintf(" (START WITH %d INCREMENT BY %d)", seed, inc)
		}
	}
	return w.columnDefinition(t, col, parts)
}

func (w *postgresWriter) WriteCreateTable(t *schema.Table) []Statement {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, w.column(t, col))
	}
	if singleColumnKey(t) {
		defs = append(defs, w.primaryKeyClause(t))
	}
	return []Statement{w.createTable(t, defs)}
}

func (w *postgresWriter) WritePrimaryKey(t *schema.Table) []Statement {
	return w.compositePrimaryKey(t)
}

func (w *postgresWriter) WriteForeignKeys(t *schema.Table) []Statement {
	return w.foreignKeys(t, nil)
}

func (w *postgresWriter) WriteUniqueKeys(t *schema.Table) []Statement {
	return w.uniqueKeys(t)
}

func (w *postgresWriter) WriteCheckConstraints(t *schema.Table) []Statement {
	return w.checkConstraints(t)
}

func (w *postgresWriter) WriteIndexes(t *schema.Table) []Statement {
	return w.indexes(t, func(idx *schema.Index) Statement { return w.index(t, idx) })
}

// index keeps non-default access methods such as gin or hash
func (w *postgresWriter) index(t *schema.Table, idx *schema.Index) Statement {
	var using string
	if method := strings.ToLower(idx.IndexType); method != "" && method != "btree" {
		using = "USING " + method
	}
	return w.createIndex(t, idx, "", using)
}

func (w *postgresWriter) WriteIdentity(*schema.Table) []Statement {
	return nil
}

func (w *postgresWriter) WriteDropTable(t *schema.Table) []Statement {
	return []Statement{DDL("DROP TABLE %s", w.table(t))}
}

func (w *postgresWriter) WriteDropForeignKeys(t *schema.Table) []Statement {
	return w.dropForeignKeys(t)
}

func (w *postgresWriter) WriteDropIdentity(*schema.Table) []Statement {
	return nil
}

func (w *postgresWriter) AddColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s ADD COLUMN %s", w.table(t), w.column(t, col))}
}

func (w *postgresWriter) DropColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s DROP COLUMN %s", w.table(t), w.quote(col.Name))}
}

func (w *postgresWriter) AlterColumn(t *schema.Table, before, after *schema.Column) []Statement {
	table, col := w.table(t), w.quote(after.Name)
	var out []Statement
	if oldType, newType := w.MapType(before), w.MapType(after); oldType != newType {
		out = append(out, DDL("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, col, newType))
	}
	if before.Nullable != after.Nullable {
		action := "SET NOT NULL"
		if after.Nullable {
			action = "DROP NOT NULL"
		}
		out = append(out, DDL("ALTER TABLE %s ALTER COLUMN %s %s", table, col, action))
	}
	if oldDefault, newDefault := TranslateDefault(w.d, before.DefaultValue), TranslateDefault(w.d, after.DefaultValue); oldDefault != newDefault {
		if newDefault == "" {
			out = append(out, DDL("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, col))
		} else {
			out = append(out, DDL("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, col, newDefault))
		}
	}
	return out
}

func (w *postgresWriter) AddConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", w.table(t), w.quote(col.Name), TranslateDefault(w.d, c.Expression))}
	}
	return w.addConstraint(t, c, nil)
}

func (w *postgresWriter) DropConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", w.table(t), w.quote(col.Name))}
	}
	return []Statement{w.dropConstraint(t, c)}
}

func (w *postgresWriter) RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME COLUMN %s TO %s", w.table(t), w.quote(oldName), w.quote(col.Name))}
}

func (w *postgresWriter) RenameTable(t *schema.Table, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME TO %s", w.tableNamed(t.SchemaOwner, oldName), w.quote(t.Name))}
}

func (w *postgresWriter) AddIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{w.index(t, idx)}
}

func (w *postgresWriter) DropIndex(t *schema.Table, idx *schema.Index) []Statement {
	name := w.indexName(t, idx)
	if w.opts.IncludeSchema && t.SchemaOwner != "" {
		name = w.quote(t.SchemaOwner) + "." + name
	}
	return []Statement{DDL("DROP INDEX %s", name)}
}
