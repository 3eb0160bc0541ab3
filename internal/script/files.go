package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/order"
	"github.com/tordrt/schemascript/internal/schema"
)

// OverviewFile lists the generated files in run order
const OverviewFile = "_overview.txt"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// WriteCreateFiles writes the create script of s into dir as one numbered file
// per table, in dependency order, followed by a file holding every foreign key.
// It returns the SQL file names in run order and also writes OverviewFile.
func WriteCreateFiles(ctx context.Context, dir string, s *schema.Schema, d dialect.Dialect, opts Options) ([]string, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	w, err := opts.writer(d, s)
	if err != nil {
		return nil, err
	}

	res, err := order.Sort(ctx, s.Tables)
	if err != nil {
		return nil, err
	}
	if res.Fallback {
		entry(opts, d, nil).Warn("foreign key cycle detected, file order is not dependency safe")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var (
		files  []string
		tables []*schema.Table
	)
	for i, t := range res.Tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to write create files: %w", err)
		}

		sc := New(d, opts.BatchSeparator)
		log := entry(opts, d, t)
		for _, warning := range t.Validate(s) {
			warn(sc, log, warning)
		}
		t = resolvedForeignKeys(s, t)
		tables = append(tables, t)

		sc.Add(w.WriteCreateTable(t)...)
		sc.Add(w.WriteIdentity(t)...)
		sc.Add(w.WritePrimaryKey(t)...)
		sc.Add(w.WriteUniqueKeys(t)...)
		sc.Add(w.WriteCheckConstraints(t)...)
		sc.Add(w.WriteIndexes(t)...)

		name := fmt.Sprintf("%03d_%s.sql", i+1, fileName(t.Name))
		if err := writeFile(dir, name, sc); err != nil {
			return nil, fmt.Errorf("failed to write table file for %s: %w", t.Name, err)
		}
		files = append(files, name)
	}

	fks := New(d, opts.BatchSeparator)
	for _, t := range tables {
		fks.Add(w.WriteForeignKeys(t)...)
	}
	if fks.Len() > 0 {
		name := fmt.Sprintf("%03d_foreign_keys.sql", len(files)+1)
		if err := writeFile(dir, name, fks); err != nil {
			return nil, fmt.Errorf("failed to write foreign key file: %w", err)
		}
		files = append(files, name)
	}

	if err := writeOverview(dir, d, files, tables, res.Fallback); err != nil {
		return nil, fmt.Errorf("failed to write overview: %w", err)
	}
	return files, nil
}

func fileName(table string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(table, "_"), "_")
	if name == "" {
		return "table"
	}
	return name
}

func writeFile(dir, name string, sc *Script) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(sc.String()), 0644)
}

// writeOverview writes the run order with each table's outgoing references
func writeOverview(dir string, d dialect.Dialect, files []string, tables []*schema.Table, fallback bool) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SCHEMA SCRIPT OVERVIEW (%s)\n", d)
	sb.WriteString("Run the files in this order:\n\n")
	if fallback {
		sb.WriteString("WARNING: foreign keys form a cycle; table files are ordered by foreign key count\n\n")
	}

	for i, name := range files {
		sb.WriteString(name)
		if i < len(tables) {
			if targets := references(tables[i]); len(targets) > 0 {
				fmt.Fprintf(&sb, " (references: %s)", strings.Join(targets, ", "))
			}
		}
		sb.WriteByte('\n')
	}
	return os.WriteFile(filepath.Join(dir, OverviewFile), []byte(sb.String()), 0644)
}

func references(t *schema.Table) []string {
	var targets []string
	seen := map[string]bool{}
	for _, fk := range t.ForeignKeys {
		if t.IsSelfReference(fk) || seen[fk.RefersToTable] {
			continue
		}
		seen[fk.RefersToTable] = true
		targets = append(targets, fk.RefersToTable)
	}
	return targets
}
