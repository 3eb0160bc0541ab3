package script

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tordrt/schemascript/internal/ddl"
	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/order"
	"github.com/tordrt/schemascript/internal/schema"
)

// CreateScript renders a script that builds every table of s.
//
// Tables are created in dependency order with their identity emulation.
// Composite primary keys, unique keys, checks and foreign keys follow once all
// tables exist, then indexes. Integrity problems become TODO comments.
func CreateScript(ctx context.Context, s *schema.Schema, d dialect.Dialect, opts Options) (string, error) {
	sc, err := createScript(ctx, s, d, opts)
	if err != nil {
		return "", err
	}
	return sc.String(), nil
}

func createScript(ctx context.Context, s *schema.Schema, d dialect.Dialect, opts Options) (*Script, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	w, err := opts.writer(d, s)
	if err != nil {
		return nil, err
	}
	log := entry(opts, d, nil)

	sc := New(d, opts.BatchSeparator)
	tables, err := createTables(ctx, sc, w, s, s.Tables, log)
	if err != nil {
		return nil, err
	}

	writeConstraints(sc, w, tables)
	for _, t := range tables {
		sc.Add(w.WriteIndexes(t)...)
	}
	return sc, nil
}

// writeConstraints is pass two: keys first so foreign keys can reference them
func writeConstraints(sc *Script, w ddl.Writer, tables []*schema.Table) {
	for _, t := range tables {
		sc.Add(w.WritePrimaryKey(t)...)
		sc.Add(w.WriteUniqueKeys(t)...)
		sc.Add(w.WriteCheckConstraints(t)...)
	}
	for _, t := range tables {
		sc.Add(w.WriteForeignKeys(t)...)
	}
}

// resolvedForeignKeys returns t without foreign keys whose target is missing
// from s. Validate has already reported them.
func resolvedForeignKeys(s *schema.Schema, t *schema.Table) *schema.Table {
	var kept []*schema.Constraint
	for _, fk := range t.ForeignKeys {
		if s.FindTable(fk.RefersToSchema, fk.RefersToTable) != nil {
			kept = append(kept, fk)
		}
	}
	if len(kept) == len(t.ForeignKeys) {
		return t
	}
	trimmed := *t
	trimmed.ForeignKeys = kept
	return &trimmed
}

// DropScript renders a script that removes every table of s: foreign keys
// first, then tables in reverse dependency order, then identity sequences.
func DropScript(ctx context.Context, s *schema.Schema, d dialect.Dialect, opts Options) (string, error) {
	if s == nil {
		return "", ErrNilSchema
	}
	w, err := opts.writer(d, s)
	if err != nil {
		return "", err
	}

	sc := New(d, opts.BatchSeparator)
	for _, t := range s.Tables {
		sc.Add(w.WriteDropForeignKeys(t)...)
	}
	if err := dropTables(ctx, sc, w, s.Tables, entry(opts, d, nil)); err != nil {
		return "", err
	}
	return sc.String(), nil
}

// dropTables drops tables dependents first, then their identity sequences
func dropTables(ctx context.Context, sc *Script, w ddl.Writer, tables []*schema.Table, log logrus.FieldLogger) error {
	if len(tables) == 0 {
		return nil
	}
	res, err := order.Sort(ctx, tables)
	if err != nil {
		return err
	}
	if res.Fallback {
		log.Warn("foreign key cycle among dropped tables")
	}
	for _, t := range order.Reverse(res.Tables) {
		sc.Add(w.WriteDropTable(t)...)
	}
	for _, t := range tables {
		sc.Add(w.WriteDropIdentity(t)...)
	}
	return nil
}

// createTables creates tables in dependency order and returns them with
// unresolved foreign keys removed, ready for the constraint pass
func createTables(ctx context.Context, sc *Script, w ddl.Writer, s *schema.Schema, tables []*schema.Table, log logrus.FieldLogger) ([]*schema.Table, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	res, err := order.Sort(ctx, tables)
	if err != nil {
		return nil, err
	}
	if res.Fallback {
		sc.Add(ddl.Comment("foreign keys form a cycle; tables are ordered by foreign key count"))
		log.Warn("foreign key cycle detected, table order is not dependency safe")
	}

	created := make([]*schema.Table, 0, len(res.Tables))
	for _, t := range res.Tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
		for _, warning := range t.Validate(s) {
			warn(sc, log, warning)
		}
		t = resolvedForeignKeys(s, t)
		created = append(created, t)
		sc.Add(w.WriteCreateTable(t)...)
		sc.Add(w.WriteIdentity(t)...)
	}
	return created, nil
}
