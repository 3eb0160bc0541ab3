package compare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/schema"
)

func col(name string, ordinal int, typ string, length int) *schema.Column {
	c := &schema.Column{Name: name, Ordinal: ordinal, DbDataType: typ}
	if length != 0 {
		c.Length = schema.Int(length)
	}
	return c
}

func customers() *schema.Table {
	return &schema.Table{
		Name: "Customers",
		Columns: []*schema.Column{
			col("Id", 1, "INT", 0),
			col("Name", 2, "VARCHAR", 50),
			col("City", 3, "VARCHAR", 40),
		},
		PrimaryKey: &schema.Constraint{Name: "PK_Customers", Type: schema.PrimaryKey, Columns: []string{"Id"}},
		Indexes: []*schema.Index{
			{Name: "IX_Customers_City", Columns: []schema.IndexColumn{{Name: "City"}}},
		},
	}
}

func compare(t *testing.T, before, after *schema.Schema, opts Options) *Diff {
	t.Helper()
	diff, err := Compare(context.Background(), before, after, opts)
	require.NoError(t, err)
	return diff
}

func TestCompareIdentical(t *testing.T) {
	before := &schema.Schema{Tables: []*schema.Table{customers()}}
	after := &schema.Schema{Tables: []*schema.Table{customers()}}
	assert.True(t, compare(t, before, after, Options{DetectRenames: true}).Empty())
}

func TestCompareTables(t *testing.T) {
	orders := &schema.Table{Name: "Orders", Columns: []*schema.Column{col("Id", 1, "INT", 0)}}
	audit := &schema.Table{Name: "Audit", Columns: []*schema.Column{col("Line", 1, "TEXT", 0)}}

	diff := compare(t,
		&schema.Schema{Tables: []*schema.Table{customers(), audit}},
		&schema.Schema{Tables: []*schema.Table{customers(), orders}},
		Options{DetectRenames: true})

	require.Len(t, diff.AddedTables, 1)
	assert.Same(t, orders, diff.AddedTables[0])
	require.Len(t, diff.DroppedTables, 1)
	assert.Same(t, audit, diff.DroppedTables[0])
	assert.Empty(t, diff.RenamedTables)
	assert.Empty(t, diff.ChangedTables)
}

func TestCompareNilSnapshots(t *testing.T) {
	diff := compare(t, nil, &schema.Schema{Tables: []*schema.Table{customers()}}, Options{})
	assert.Len(t, diff.AddedTables, 1)

	diff = compare(t, &schema.Schema{Tables: []*schema.Table{customers()}}, nil, Options{})
	assert.Len(t, diff.DroppedTables, 1)
}

func TestCompareTableRename(t *testing.T) {
	renamed := customers()
	renamed.Name = "Clients"

	before := &schema.Schema{Tables: []*schema.Table{customers()}}
	after := &schema.Schema{Tables: []*schema.Table{renamed}}

	diff := compare(t, before, after, Options{DetectRenames: true})
	require.Len(t, diff.RenamedTables, 1)
	assert.Equal(t, "Customers", diff.RenamedTables[0].Before.Name)
	assert.Equal(t, "Clients", diff.RenamedTables[0].After.Name)
	assert.Empty(t, diff.AddedTables)
	assert.Empty(t, diff.DroppedTables)
	assert.Empty(t, diff.ChangedTables, "identical contents need no table changes")

	plain := compare(t, before, after, Options{})
	assert.Empty(t, plain.RenamedTables)
	assert.Len(t, plain.AddedTables, 1)
	assert.Len(t, plain.DroppedTables, 1)
}

func TestCompareColumns(t *testing.T) {
	changed := customers()
	changed.Columns[1] = col("Name", 2, "VARCHAR", 100)
	changed.Columns = append(changed.Columns, col("Email", 4, "VARCHAR", 200))
	changed.Columns = append(changed.Columns[:2], changed.Columns[3:]...) // drop City

	diff := compare(t,
		&schema.Schema{Tables: []*schema.Table{customers()}},
		&schema.Schema{Tables: []*schema.Table{changed}},
		Options{DetectRenames: true})

	require.Len(t, diff.ChangedTables, 1)
	td := diff.ChangedTables[0]
	require.Len(t, td.ChangedColumns, 1)
	assert.Equal(t, 50, *td.ChangedColumns[0].Before.Length)
	assert.Equal(t, 100, *td.ChangedColumns[0].After.Length)
	require.Len(t, td.AddedColumns, 1)
	assert.Equal(t, "Email", td.AddedColumns[0].Name)
	require.Len(t, td.DroppedColumns, 1)
	assert.Equal(t, "City", td.DroppedColumns[0].Name)
	assert.Empty(t, td.RenamedColumns, "different ordinals and definitions are not a rename")
}

func TestCompareColumnRename(t *testing.T) {
	renamed := customers()
	renamed.Columns[2] = col("Town", 3, "VARCHAR", 40)

	diff := compare(t,
		&schema.Schema{Tables: []*schema.Table{customers()}},
		&schema.Schema{Tables: []*schema.Table{renamed}},
		Options{DetectRenames: true})

	require.Len(t, diff.ChangedTables, 1)
	td := diff.ChangedTables[0]
	require.Len(t, td.RenamedColumns, 1)
	assert.Equal(t, "City", td.RenamedColumns[0].Before.Name)
	assert.Equal(t, "Town", td.RenamedColumns[0].After.Name)
	assert.Empty(t, td.AddedColumns)
	assert.Empty(t, td.DroppedColumns)
}

func TestSameDefinition(t *testing.T) {
	base := col("Name", 1, "VARCHAR", 50)

	tests := []struct {
		name  string
		other *schema.Column
		want  bool
	}{
		{"size in type text", &schema.Column{Name: "Name", DbDataType: "varchar(50)"}, true},
		{"longer", col("Name", 1, "VARCHAR", 60), false},
		{"nullable", &schema.Column{Name: "Name", DbDataType: "VARCHAR", Length: schema.Int(50), Nullable: true}, false},
		{"default", &schema.Column{Name: "Name", DbDataType: "VARCHAR", Length: schema.Int(50), DefaultValue: "'x'"}, false},
		{"other type", col("Name", 1, "NVARCHAR", 50), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameDefinition(base, tt.other))
		})
	}
}

func TestCompareConstraintsAndIndexes(t *testing.T) {
	changed := customers()
	changed.PrimaryKey = &schema.Constraint{Name: "PK_Customers", Type: schema.PrimaryKey, Columns: []string{"Id", "Name"}}
	changed.UniqueKeys = []*schema.Constraint{{Type: schema.UniqueKey, Columns: []string{"Name"}}}
	changed.Indexes = []*schema.Index{
		{Name: "IX_Customers_City", Columns: []schema.IndexColumn{{Name: "City", Descending: true}}},
	}

	diff := compare(t,
		&schema.Schema{Tables: []*schema.Table{customers()}},
		&schema.Schema{Tables: []*schema.Table{changed}},
		Options{})

	require.Len(t, diff.ChangedTables, 1)
	td := diff.ChangedTables[0]

	require.Len(t, td.DroppedConstraints, 1)
	assert.Equal(t, []string{"Id"}, td.DroppedConstraints[0].Columns)
	require.Len(t, td.AddedConstraints, 2)
	assert.Equal(t, schema.PrimaryKey, td.AddedConstraints[0].Type)
	assert.Equal(t, schema.UniqueKey, td.AddedConstraints[1].Type)

	require.Len(t, td.DroppedIndexes, 1)
	require.Len(t, td.AddedIndexes, 1)
	assert.True(t, td.AddedIndexes[0].Columns[0].Descending)
}

func TestCompareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compare(ctx, nil, &schema.Schema{Tables: []*schema.Table{customers()}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
