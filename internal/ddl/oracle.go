package ddl

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

type oracleWriter struct {
	*base
}

func (w *oracleWriter) column(t *schema.Table, col *schema.Column) string {
	if col.IsComputed && col.ComputedDefinition != "" {
		return fmt.Sprintf("%s %s GENERATED ALWAYS AS %s VIRTUAL",
			w.quote(col.Name), w.MapType(col), parenthesize(col.ComputedDefinition))
	}
	return w.columnDefinition(t, col, columnParts{typ: w.MapType(col)})
}

// Oracle only knows ON DELETE CASCADE and ON DELETE SET NULL
func oracleRules(event, rule string) bool {
	return event == "DELETE" && (rule == "CASCADE" || rule == "SET NULL")
}

func (w *oracleWriter) WriteCreateTable(t *schema.Table) []Statement {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, w.column(t, col))
	}
	if singleColumnKey(t) {
		defs = append(defs, w.primaryKeyClause(t))
	}
	return []Statement{w.createTable(t, defs)}
}

func (w *oracleWriter) WritePrimaryKey(t *schema.Table) []Statement {
	return w.compositePrimaryKey(t)
}

func (w *oracleWriter) WriteForeignKeys(t *schema.Table) []Statement {
	return w.foreignKeys(t, oracleRules)
}

func (w *oracleWriter) WriteUniqueKeys(t *schema.Table) []Statement {
	return w.uniqueKeys(t)
}

func (w *oracleWriter) WriteCheckConstraints(t *schema.Table) []Statement {
	return w.checkConstraints(t)
}

func (w *oracleWriter) WriteIndexes(t *schema.Table) []Statement {
	return w.indexes(t, func(idx *schema.Index) Statement { return w.index(t, idx) })
}

func (w *oracleWriter) index(t *schema.Table, idx *schema.Index) Statement {
	var modifier string
	if strings.EqualFold(idx.IndexType, "BITMAP") {
		modifier = "BITMAP"
	}
	return w.createIndex(t, idx, modifier, "")
}

// WriteIdentity emits the sequence and BEFORE INSERT trigger that stand in for
// an identity column, or reproduces the sequence an existing trigger uses.
func (w *oracleWriter) WriteIdentity(t *schema.Table) []Statement {
	plan := PlanIdentity(w.d, w.opts.Schema, t)
	switch plan.State {
	case EmulatedViaSequenceTrigger:
		seed, inc := identitySeed(plan.Column)
		seq := w.quote(plan.SequenceName)
		col := w.quote(plan.Column.Name)
		trigger := fmt.Sprintf(`CREATE OR REPLACE TRIGGER %s
BEFORE INSERT ON %s
FOR EACH ROW
BEGIN
  IF :NEW.%s IS NULL THEN
    SELECT %s.NEXTVAL INTO :NEW.%s FROM DUAL;
  END IF;
END;`, w.quote(plan.TriggerName), w.table(t), col, seq, col)
		return []Statement{
			DDL("CREATE SEQUENCE %s START WITH %d INCREMENT BY %d", seq, seed, inc),
			Block(trigger),
		}
	case ExistingTriggerDetected:
		return w.existingTrigger(plan)
	}
	return nil
}

func (w *oracleWriter) existingTrigger(plan IdentityPlan) []Statement {
	out := []Statement{Comment("%s is filled by existing trigger %s using sequence %s",
		plan.Column.Name, plan.Trigger.Name, plan.SequenceRef)}
	if plan.ExistingSequence == nil {
		return append(out, Comment("sequence %s was not found in the schema", plan.SequenceRef))
	}
	return append(out, createSequence(w.base, plan.ExistingSequence))
}

// createSequence reproduces a sequence with the options Oracle, Firebird and PostgreSQL share
func createSequence(b *base, seq *schema.Sequence) Statement {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE SEQUENCE %s", b.objectName(seq.Name))
	if seq.Start != 0 {
		fmt.Fprintf(&sb, " START WITH %d", seq.Start)
	}
	if seq.Increment != 0 {
		fmt.Fprintf(&sb, " INCREMENT BY %d", seq.Increment)
	}
	if b.d != dialect.Firebird {
		if seq.MinValue != nil {
			fmt.Fprintf(&sb, " MINVALUE %d", *seq.MinValue)
		}
		if seq.MaxValue != nil {
			fmt.Fprintf(&sb, " MAXVALUE %d", *seq.MaxValue)
		}
		if seq.Cycle {
			sb.WriteString(" CYCLE")
		}
	}
	return Statement{Kind: KindDDL, Text: sb.String()}
}

func (w *oracleWriter) WriteDropTable(t *schema.Table) []Statement {
	return []Statement{DDL("DROP TABLE %s", w.table(t))}
}

func (w *oracleWriter) WriteDropForeignKeys(t *schema.Table) []Statement {
	return w.dropForeignKeys(t)
}

func (w *oracleWriter) WriteDropIdentity(t *schema.Table) []Statement {
	return dropIdentitySequence(w.base, t)
}

// dropIdentitySequence drops the sequence WriteIdentity created or reproduced.
// Triggers go away with their table.
func dropIdentitySequence(b *base, t *schema.Table) []Statement {
	plan := PlanIdentity(b.d, b.opts.Schema, t)
	switch plan.State {
	case EmulatedViaSequenceTrigger:
		return []Statement{DDL("DROP SEQUENCE %s", b.quote(plan.SequenceName))}
	case ExistingTriggerDetected:
		if plan.ExistingSequence != nil {
			return []Statement{DDL("DROP SEQUENCE %s", b.objectName(plan.ExistingSequence.Name))}
		}
	}
	return nil
}

func (w *oracleWriter) AddColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s ADD %s", w.table(t), w.column(t, col))}
}

func (w *oracleWriter) DropColumn(t *schema.Table, col *schema.Column) []Statement {
	return []Statement{DDL("ALTER TABLE %s DROP COLUMN %s", w.table(t), w.quote(col.Name))}
}

// AlterColumn uses MODIFY; nullability is only restated when it changes
// because Oracle rejects a redundant NOT NULL.
func (w *oracleWriter) AlterColumn(t *schema.Table, before, after *schema.Column) []Statement {
	parts := []string{w.quote(after.Name), w.MapType(after)}
	if oldDefault, newDefault := TranslateDefault(w.d, before.DefaultValue), TranslateDefault(w.d, after.DefaultValue); oldDefault != newDefault {
		if newDefault == "" {
			newDefault = "NULL"
		}
		parts = append(parts, "DEFAULT "+newDefault)
	}
	if before.Nullable != after.Nullable {
		if after.Nullable {
			parts = append(parts, "NULL")
		} else {
			parts = append(parts, "NOT NULL")
		}
	}
	return []Statement{DDL("ALTER TABLE %s MODIFY %s", w.table(t), strings.Join(parts, " "))}
}

func (w *oracleWriter) AddConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s MODIFY %s DEFAULT %s", w.table(t), w.quote(col.Name), TranslateDefault(w.d, c.Expression))}
	}
	return w.addConstraint(t, c, oracleRules)
}

func (w *oracleWriter) DropConstraint(t *schema.Table, c *schema.Constraint) []Statement {
	if c.Type == schema.Default {
		col := defaultColumn(t, c)
		if col == nil {
			return w.unsupported("default constraint %s has no column", c.Name)
		}
		return []Statement{DDL("ALTER TABLE %s MODIFY %s DEFAULT NULL", w.table(t), w.quote(col.Name))}
	}
	return []Statement{w.dropConstraint(t, c)}
}

func (w *oracleWriter) RenameColumn(t *schema.Table, col *schema.Column, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME COLUMN %s TO %s", w.table(t), w.quote(oldName), w.quote(col.Name))}
}

func (w *oracleWriter) RenameTable(t *schema.Table, oldName string) []Statement {
	return []Statement{DDL("ALTER TABLE %s RENAME TO %s", w.tableNamed(t.SchemaOwner, oldName), w.quote(t.Name))}
}

func (w *oracleWriter) AddIndex(t *schema.Table, idx *schema.Index) []Statement {
	return []Statement{w.index(t, idx)}
}

func (w *oracleWriter) DropIndex(t *schema.Table, idx *schema.Index) []Statement {
	name := w.indexName(t, idx)
	if w.opts.IncludeSchema && t.SchemaOwner != "" {
		name = w.quote(t.SchemaOwner) + "." + name
	}
	return []Statement{DDL("DROP INDEX %s", name)}
}
