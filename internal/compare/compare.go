// Package compare diffs two schema snapshots into the changes a migration
// script has to make.
package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/schema"
	"github.com/tordrt/schemascript/internal/types"
)

// Options tunes the comparison
type Options struct {
	// DetectRenames pairs a dropped and an added table (or column) with the
	// same definition into a rename instead of a drop and a create.
	DetectRenames bool
}

// Diff is the set of changes from one snapshot to another.
// Slices follow the order of the snapshots' tables.
type Diff struct {
	AddedTables   []*schema.Table
	DroppedTables []*schema.Table
	RenamedTables []TableRename
	ChangedTables []*TableDiff
}

// TableRename pairs a table's old and new shape
type TableRename struct {
	Before *schema.Table
	After  *schema.Table
}

// TableDiff holds the changes inside one table that exists on both sides
type TableDiff struct {
	Before *schema.Table
	After  *schema.Table

	AddedColumns   []*schema.Column
	DroppedColumns []*schema.Column
	ChangedColumns []ColumnChange
	RenamedColumns []ColumnChange

	AddedConstraints   []*schema.Constraint
	DroppedConstraints []*schema.Constraint

	AddedIndexes   []*schema.Index
	DroppedIndexes []*schema.Index
}

// ColumnChange pairs a column's old and new definition
type ColumnChange struct {
	Before *schema.Column
	After  *schema.Column
}

// Empty reports whether the diff holds no change at all
func (d *Diff) Empty() bool {
	return len(d.AddedTables) == 0 && len(d.DroppedTables) == 0 &&
		len(d.RenamedTables) == 0 && len(d.ChangedTables) == 0
}

func (td *TableDiff) empty() bool {
	return len(td.AddedColumns) == 0 && len(td.DroppedColumns) == 0 &&
		len(td.ChangedColumns) == 0 && len(td.RenamedColumns) == 0 &&
		len(td.AddedConstraints) == 0 && len(td.DroppedConstraints) == 0 &&
		len(td.AddedIndexes) == 0 && len(td.DroppedIndexes) == 0
}

// Compare diffs before against after. Tables match by owner and name, ignoring
// case; a nil snapshot counts as empty. The context is checked once per table.
func Compare(ctx context.Context, before, after *schema.Schema, opts Options) (*Diff, error) {
	if before == nil {
		before = &schema.Schema{}
	}
	if after == nil {
		after = &schema.Schema{}
	}

	diff := &Diff{}
	matched := make(map[*schema.Table]bool, len(before.Tables))

	for _, newTable := range after.Tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to compare schemas: %w", err)
		}
		oldTable := findTable(before, newTable)
		if oldTable == nil {
			diff.AddedTables = append(diff.AddedTables, newTable)
			continue
		}
		matched[oldTable] = true
		if td := compareTables(oldTable, newTable, opts); td != nil {
			diff.ChangedTables = append(diff.ChangedTables, td)
		}
	}
	for _, oldTable := range before.Tables {
		if !matched[oldTable] {
			diff.DroppedTables = append(diff.DroppedTables, oldTable)
		}
	}

	if opts.DetectRenames {
		diff.detectTableRenames(opts)
	}
	return diff, nil
}

// findTable matches on name and, when both sides carry one, owner
func findTable(s *schema.Schema, t *schema.Table) *schema.Table {
	for _, candidate := range s.Tables {
		if !strings.EqualFold(candidate.Name, t.Name) {
			continue
		}
		if candidate.SchemaOwner == "" || t.SchemaOwner == "" || strings.EqualFold(candidate.SchemaOwner, t.SchemaOwner) {
			return candidate
		}
	}
	return nil
}

// detectTableRenames turns a dropped table and an added table with the same
// columns into a rename. Each dropped table pairs with the first unclaimed match.
func (d *Diff) detectTableRenames(opts Options) {
	var dropped []*schema.Table
	claimed := make(map[*schema.Table]bool)
	for _, oldTable := range d.DroppedTables {
		var match *schema.Table
		for _, newTable := range d.AddedTables {
			if !claimed[newTable] && sameColumns(oldTable, newTable) {
				match = newTable
				break
			}
		}
		if match == nil {
			dropped = append(dropped, oldTable)
			continue
		}
		claimed[match] = true
		d.RenamedTables = append(d.RenamedTables, TableRename{Before: oldTable, After: match})
		if td := compareTables(oldTable, match, opts); td != nil {
			d.ChangedTables = append(d.ChangedTables, td)
		}
	}

	var added []*schema.Table
	for _, t := range d.AddedTables {
		if !claimed[t] {
			added = append(added, t)
		}
	}
	d.DroppedTables, d.AddedTables = dropped, added
}

func sameColumns(a, b *schema.Table) bool {
	if len(a.Columns) == 0 || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if !strings.EqualFold(a.Columns[i].Name, b.Columns[i].Name) || !SameDefinition(a.Columns[i], b.Columns[i]) {
			return false
		}
	}
	return true
}

func compareTables(oldTable, newTable *schema.Table, opts Options) *TableDiff {
	td := &TableDiff{Before: oldTable, After: newTable}

	for _, col := range newTable.Columns {
		old := oldTable.FindColumn(col.Name)
		switch {
		case old == nil:
			td.AddedColumns = append(td.AddedColumns, col)
		case !SameDefinition(old, col):
			td.ChangedColumns = append(td.ChangedColumns, ColumnChange{Before: old, After: col})
		}
	}
	for _, col := range oldTable.Columns {
		if newTable.FindColumn(col.Name) == nil {
			td.DroppedColumns = append(td.DroppedColumns, col)
		}
	}
	if opts.DetectRenames {
		td.detectColumnRename()
	}

	td.AddedConstraints, td.DroppedConstraints = diffConstraints(oldTable, newTable)
	td.AddedIndexes, td.DroppedIndexes = diffIndexes(oldTable, newTable)

	if td.empty() {
		return nil
	}
	return td
}

// detectColumnRename only fires for a single dropped and a single added column
// at the same ordinal with the same definition
func (td *TableDiff) detectColumnRename() {
	if len(td.AddedColumns) != 1 || len(td.DroppedColumns) != 1 {
		return
	}
	added, dropped := td.AddedColumns[0], td.DroppedColumns[0]
	if added.Ordinal != dropped.Ordinal || !SameDefinition(dropped, added) {
		return
	}
	td.RenamedColumns = []ColumnChange{{Before: dropped, After: added}}
	td.AddedColumns, td.DroppedColumns = nil, nil
}

// SameDefinition compares everything about two columns except name and ordinal
func SameDefinition(a, b *schema.Column) bool {
	if !sameType(a, b) {
		return false
	}
	return a.Nullable == b.Nullable &&
		strings.TrimSpace(a.DefaultValue) == strings.TrimSpace(b.DefaultValue) &&
		a.IsIdentity == b.IsIdentity &&
		a.IsComputed == b.IsComputed &&
		strings.TrimSpace(a.ComputedDefinition) == strings.TrimSpace(b.ComputedDefinition)
}

// sameType compares the type name plus the size arguments that matter for its family
func sameType(a, b *schema.Column) bool {
	x, y := types.Classify(a), types.Classify(b)
	if x.Family != y.Family || x.Name != y.Name {
		return false
	}
	switch {
	case x.Family.IsString(), x.Family.IsBinary():
		return x.HasLength == y.HasLength && x.Length == y.Length
	case x.Family.IsInteger(), x.Family.IsDateTime(), x.Family == types.Bool, x.Family == types.GUID:
		return true
	}
	return x.HasPrecision == y.HasPrecision && x.Precision == y.Precision &&
		x.HasScale == y.HasScale && x.Scale == y.Scale
}

// diffConstraints matches constraints by name, or by definition when unnamed.
// A named constraint whose definition changed is dropped and re-added.
func diffConstraints(oldTable, newTable *schema.Table) (added, dropped []*schema.Constraint) {
	oldAll, newAll := oldTable.Constraints(), newTable.Constraints()
	for _, c := range newAll {
		old := findConstraint(oldAll, c)
		if old == nil {
			added = append(added, c)
		} else if signature(old) != signature(c) {
			dropped = append(dropped, old)
			added = append(added, c)
		}
	}
	for _, c := range oldAll {
		if findConstraint(newAll, c) == nil {
			dropped = append(dropped, c)
		}
	}
	return added, dropped
}

func findConstraint(list []*schema.Constraint, c *schema.Constraint) *schema.Constraint {
	for _, candidate := range list {
		if candidate.Type != c.Type {
			continue
		}
		if c.Name != "" && candidate.Name != "" {
			if strings.EqualFold(candidate.Name, c.Name) {
				return candidate
			}
			continue
		}
		if signature(candidate) == signature(c) {
			return candidate
		}
	}
	return nil
}

func signature(c *schema.Constraint) string {
	return strings.ToUpper(strings.Join([]string{
		string(c.Type),
		strings.Join(c.Columns, ","),
		c.RefersToSchema,
		c.RefersToTable,
		strings.Join(c.RefersToColumns, ","),
		c.DeleteRule,
		c.UpdateRule,
		strings.Join(strings.Fields(c.Expression), " "),
	}, "|"))
}

func diffIndexes(oldTable, newTable *schema.Table) (added, dropped []*schema.Index) {
	for _, idx := range newTable.Indexes {
		old := findIndex(oldTable.Indexes, idx)
		if old == nil {
			added = append(added, idx)
		} else if indexSignature(old) != indexSignature(idx) {
			dropped = append(dropped, old)
			added = append(added, idx)
		}
	}
	for _, idx := range oldTable.Indexes {
		if findIndex(newTable.Indexes, idx) == nil {
			dropped = append(dropped, idx)
		}
	}
	return added, dropped
}

func findIndex(list []*schema.Index, idx *schema.Index) *schema.Index {
	for _, candidate := range list {
		if strings.EqualFold(candidate.Name, idx.Name) {
			return candidate
		}
	}
	return nil
}

func indexSignature(idx *schema.Index) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%t|%s", idx.IsUnique, strings.ToUpper(idx.IndexType))
	for _, c := range idx.Columns {
		fmt.Fprintf(&sb, "|%s:%t", strings.ToUpper(c.Name), c.Descending)
	}
	return sb.String()
}
