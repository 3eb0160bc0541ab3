package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/schema"
)

type firebirdWriter struct {
	*base
}

func (w *firebirdWriter) column(t *schema.Table, col *schema.Column) string {
	if col.IsComputed && col.ComputedDefinition != "" {
		return w.quote(col.Name) + " COMPUTED BY " + parenthesize(col.ComputedDefinition)
	}
	return w.columnDefinition(t, col, columnParts{typ: w.MapType(col)})
}

func (w *firebirdWriter) WriteCreateTable(t *schema.Table) []Statement {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, w.column(t, col))
	}
	if singleColumnKey(t) {
		defs = append(defs, w.primaryKeyClause(t))
	}
	return []Statement{w.createTable(t, defs)}
}

func (w *firebirdWriter) WritePrimaryKey(t *schema.Table) []Statement {
	return w.compositePrimaryKey(t)
}

func (w *firebirdWriter) WriteForeignKeys(t *schema.Table) []Statement {
	return w.foreignKeys(t, nil)
}

func (w *firebirdWriter) WriteUniqueKeys(t *schema.Table) []Statement {
	return w.uniqueKeys(t)
}

func (w *firebirdWriter) WriteCheckConstraints(t *schema.Table) []Statement {
	return w.checkConstraints(t)
}

func (w *firebirdWriter) WriteIndexes(t *schema.Table) []Statement {
	return w.indexes(t, func(idx *schema.Index) Statement { return w.index(t, idx) })
}

// index orders a whole Firebird index one way; any descending column makes it DESCENDING
func (w *firebirdWriter) index(t *schema.Table, idx *schema.Index) Statement {
	descending := false
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = w.quote(c.Name)
		descending = descending || c.Descending
	}
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if idx.IsUnique {
		sb.WriteString("UNIQUE ")
	}
	if descending {
		sb.WriteString("DESCENDING ")
	}
	fmt.Fprintf(&sb, "INDEX %s ON %s (%s)", w.indexName(t, idx), w.table(t), strings.Join(cols, ", "))
	return Statement{Kind: KindDDL, Text: sb.String()}
}

func (w *firebirdWriter) WriteIdentity(t *schema.Table) []Statement {
	plan := PlanIdentity(w.d, w.opts.Schema, t)
	switch plan.State {
	case EmulatedViaSequenceTrigger:
		seed, inc := identitySeed(plan.Column)
		seq := w.quote(plan.SequenceName)
		col := w.quote(plan.Column.Name)
		trigger := fmt.Sprintf(`CREATE TRIGGER %s FOR %s
ACTIVE BEFORE INSERT POSITION 0
AS
BEGIN
  IF (NEW.%s IS NULL) THEN
    NEW.%s = NEXT VALUE FOR %s;
END`, w.quote(plan.TriggerName), w.table(t), col, col, seq)
		// NEXT VALUE FOR returns start+increment first, so start one step early
		return []Statement{
			DDL("CREATE SEQUENCE %s START WITH %d INCREMENT BY %d", seq, seed-inc, inc),
			Block(trigger),
		}
	case ExistingTriggerDetected:
		out := []Statement{Comment("%s is filled by existing trigger %s using generator %s",
			plan.Column.Name, plan.Trigger.Name, plan.SequenceRef)}
		if plan.ExistingSequence == nil {
			return append(out, Comment("generator %s was not found in the schema", plan.SequenceRef))
		}
		return append(out, createSequence(w.base, plan.ExistingSequence))
	}
	return nil
}

func (w *firebirdWriter) WriteDropTable(t *schema.Table) []Statement {
	return []Statement{DDL("DROP TABLE %s", w.table(t))}
}

func (w *firebirdWriter) WriteDropForeignKeys(t *schema.Table) []Statement {
	return w.dropForeignKeys(t)
}

func (w *firebirdWriter) WriteDropIdentity(t *schema.Table) []Statement {
	return dropIdentitySequence(w.base, t)
}

func (w *firebirdWriter) AddColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s ADD %s", w.table(t), w.column(t, col))}
}

func (w *firebirdWriter) DropColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s DROP %s", w.table(t), w.quote(col.Name))}
}

func (w *firebirdWriter) AlterColumn(t *schema.Table, before, after *schema.Column) []Statement {
	table, col := w.table(t), w.quote(after.Name)
	out := []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s TYPE %s", table, col, w.MapType(after))}
	if before.Nullable != after.Nullable {
		action := "SET NOT NULL"
		if after.Nullable {
			action = "DROP NOT NULL"
		}
		out = append(out, DDL("ALTER TABLE %s ALTER %s %s", table, col, action))
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

func (w *firebirdWriter) AddConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", w.table(t), w.quote(col.Name), TranslateDefault(w.d, c.Expression))}
	}
	return w.addConstraint(t, c, nil)
}

func (w *firebirdWriter) DropConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", w.table(t), w.quote(col.Name))}
	}
	return []Statement{w.dropConstraint(t, c)}
}

func (w *firebirdWriter) RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s ALTER COLUMN %s TO %s", w.table(t), w.quote(oldName), w.quote(col.Name))}
}

func (w *firebirdWriter) RenameTable(t *schema.Table, oldName string) []Statement {
	return w.unsupported("tables cannot be renamed; recreate %s as %s and copy its data", oldName, t.Name)
}

func (w *firebirdWriter) AddIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{w.index(t, idx)}
}

func (w *firebirdWriter) DropIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{DDL("DROP INDEX %s", w.indexName(t, idx))}
}
