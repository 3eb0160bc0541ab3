package script

import (
	"context"
	"fmt"

	"github.com/tordrt/schemascript/internal/compare"
	"github.com/tordrt/schemascript/internal/ddl"
	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

// MigrationOptions configures a migration script
type MigrationOptions struct {
	Options
	// DetectRenames turns matching drop/add pairs into renames.
	DetectRenames bool
}

// MigrationScript renders the statements that turn before into after.
//
// Removals come first so names are free again: foreign keys, other
// constraints, indexes, then tables. Table renames follow the removals, then
// column changes, new tables, new constraints (foreign keys last) and new
// indexes.
func MigrationScript(ctx context.Context, before, after *schema.Schema, d dialect.Dialect, opts MigrationOptions) (string, error) {
	sc, err := migrationScript(ctx, before, after, d, opts)
	if err != nil {
		return "", err
	}
	return sc.String(), nil
}

func migrationScript(ctx context.Context, before, after *schema.Schema, d dialect.Dialect, opts MigrationOptions) (*Script, error) {
	if before == nil || after == nil {
		return nil, ErrNilSchema
	}
	oldW, err := opts.writer(d, before)
	if err != nil {
		return nil, err
	}
	newW, err := opts.writer(d, after)
	if err != nil {
		return nil, err
	}
	log := entry(opts.Options, d, nil)

	diff, err := compare.Compare(ctx, before, after, compare.Options{DetectRenames: opts.DetectRenames})
	if err != nil {
		return nil, err
	}

	sc := New(d, opts.BatchSeparator)
	if diff.Empty() {
		sc.Add(ddl.Comment("no changes"))
		return sc, nil
	}

	// removals, against the old tables so generated names match the database
	for _, t := range diff.DroppedTables {
		sc.Add(oldW.WriteDropForeignKeys(t)...)
	}
	for _, td := range diff.ChangedTables {
		for _, c := range td.DroppedConstraints {
			if c.Type == schema.ForeignKey {
				sc.Add(oldW.DropConstraint(td.Before, c)...)
			}
		}
	}
	for _, td := range diff.ChangedTables {
		for _, c := range td.DroppedConstraints {
			if c.Type != schema.ForeignKey {
				sc.Add(oldW.DropConstraint(td.Before, c)...)
			}
		}
		for _, idx := range td.DroppedIndexes {
			sc.Add(oldW.DropIndex(td.Before, idx)...)
		}
	}
	if err := dropTables(ctx, sc, oldW, diff.DroppedTables, log); err != nil {
		return nil, err
	}

	for _, r := range diff.RenamedTables {
		sc.Add(newW.RenameTable(r.After, r.Before.Name)...)
	}

	// columns
	for _, td := range diff.ChangedTables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to build migration script: %w", err)
		}
		for _, c := range td.RenamedColumns {
			sc.Add(newW.RenameColumn(td.After, c.After, c.Before.Name)...)
		}
		for _, c := range td.DroppedColumns {
			sc.Add(newW.DropColumn(td.After, c)...)
		}
		for _, c := range td.AddedColumns {
			sc.Add(newW.AddColumn(td.After, c)...)
		}
		for _, c := range td.ChangedColumns {
			sc.Add(newW.AlterColumn(td.After, c.Before, c.After)...)
		}
	}

	// additions
	added, err := createTables(ctx, sc, newW, after, diff.AddedTables, log)
	if err != nil {
		return nil, err
	}
	for _, t := range added {
		sc.Add(newW.WritePrimaryKey(t)...)
		sc.Add(newW.WriteUniqueKeys(t)...)
		sc.Add(newW.WriteCheckConstraints(t)...)
	}
	for _, td := range diff.ChangedTables {
		for _, c := range td.AddedConstraints {
			if c.Type != schema.ForeignKey {
				sc.Add(newW.AddConstraint(td.After, c)...)
			}
		}
	}
	for _, t := range added {
		sc.Add(newW.WriteForeignKeys(t)...)
	}
	for _, td := range diff.ChangedTables {
		for _, c := range td.AddedConstraints {
			if c.Type == schema.ForeignKey {
				sc.Add(newW.AddConstraint(td.After, c)...)
			}
		}
	}
	for _, t := range added {
		sc.Add(newW.WriteIndexes(t)...)
	}
	for _, td := range diff.ChangedTables {
		for _, idx := range td.AddedIndexes {
			sc.Add(newW.AddIndex(td.After, idx)...)
		}
	}

	log.WithField("statements", sc.Len()).Debug("migration script built")
	return sc, nil
}
