package order

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/schema"
)

func table(name string, refs ...string) *schema.Table {
	t := &schema.Table{Name: name}
	for _, ref := range refs {
		t.ForeignKeys = append(t.ForeignKeys, &schema.Constraint{
			Name: "FK_" + name + "_" + ref, Type: schema.ForeignKey, RefersToTable: ref,
		})
	}
	return t
}

func names(tables []*schema.Table) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

func TestOrderOrdersAndLines(t *testing.T) {
	lines := table("OrderLines", "Orders")
	orders := table("Orders")

	got, err := Order(context.Background(), []*schema.Table{lines, orders})
	require.NoError(t, err)
	assert.Equal(t, []string{"Orders", "OrderLines"}, names(got))
	assert.Same(t, orders, got[0])
}

func TestOrderRounds(t *testing.T) {
	tests := []struct {
		name   string
		tables []*schema.Table
		want   []string
	}{
		{
			name:   "no foreign keys keeps input order",
			tables: []*schema.Table{table("C"), table("A"), table("B")},
			want:   []string{"C", "A", "B"},
		},
		{
			name:   "chain",
			tables: []*schema.Table{table("C", "B"), table("B", "A"), table("A")},
			want:   []string{"A", "B", "C"},
		},
		{
			name:   "self reference is not a cycle",
			tables: []*schema.Table{table("Employees", "Employees", "Departments"), table("Departments")},
			want:   []string{"Departments", "Employees"},
		},
		{
			name:   "unresolved target is ignored",
			tables: []*schema.Table{table("Audit", "Users"), table("Log")},
			want:   []string{"Audit", "Log"},
		},
		{
			name: "free tables of one round stay in input order",
			tables: []*schema.Table{
				table("Invoices", "Customers", "Products"),
				table("Products"),
				table("Reviews", "Products"),
				table("Customers"),
			},
			want: []string{"Products", "Customers", "Invoices", "Reviews"},
		},
		{
			name:   "target matched ignoring case",
			tables: []*schema.Table{table("child", "PARENT"), table("Parent")},
			want:   []string{"Parent", "child"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Sort(context.Background(), tt.tables)
			require.NoError(t, err)
			assert.False(t, res.Fallback)
			assert.Equal(t, tt.want, names(res.Tables))
		})
	}
}

// Every acyclic graph yields an order where each referenced table precedes its referrers
func TestOrderAcyclicProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := 2 + rng.Intn(15)
		tables := make([]*schema.Table, n)
		for i := range tables {
			tables[i] = table(fmt.Sprintf("T%02d", i))
			// edges only point at lower indexes, so the graph is acyclic
			for j := 0; j < i; j++ {
				if rng.Intn(4) == 0 {
					tables[i].ForeignKeys = append(tables[i].ForeignKeys, &schema.Constraint{
						Type: schema.ForeignKey, RefersToTable: tables[j].Name,
					})
				}
			}
		}
		rng.Shuffle(n, func(i, j int) { tables[i], tables[j] = tables[j], tables[i] })

		res, err := Sort(context.Background(), tables)
		require.NoError(t, err)
		require.False(t, res.Fallback)
		require.Len(t, res.Tables, n)

		position := make(map[string]int, n)
		for i, tbl := range res.Tables {
			position[tbl.Name] = i
		}
		for _, tbl := range tables {
			for _, fk := range tbl.ForeignKeys {
				assert.Less(t, position[fk.RefersToTable], position[tbl.Name],
					"round %d: %s must precede %s", round, fk.RefersToTable, tbl.Name)
			}
		}
	}
}

func TestOrderMutualForeignKeysFallback(t *testing.T) {
	a := table("A", "B")
	b := table("B", "A")
	leaf := table("Leaf")
	hub := table("Hub", "A", "B")

	first, err := Sort(context.Background(), []*schema.Table{hub, a, b, leaf})
	require.NoError(t, err)
	assert.True(t, first.Fallback)
	assert.Equal(t, []string{"Leaf", "A", "B", "Hub"}, names(first.Tables))

	for i := 0; i < 5; i++ {
		again, err := Sort(context.Background(), []*schema.Table{hub, a, b, leaf})
		require.NoError(t, err)
		assert.Equal(t, names(first.Tables), names(again.Tables))
	}
}

func TestOrderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Order(ctx, []*schema.Table{table("A")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)

	empty, err := Order(ctx, nil)
	assert.NoError(t, err, "no iteration runs for an empty input")
	assert.Empty(t, empty)
}

func TestOrderDoesNotModifyInput(t *testing.T) {
	input := []*schema.Table{table("OrderLines", "Orders"), table("Orders")}
	_, err := Order(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{"OrderLines", "Orders"}, names(input))
}

func TestReverse(t *testing.T) {
	tables := []*schema.Table{table("A"), table("B"), table("C")}
	assert.Equal(t, []string{"C", "B", "A"}, names(Reverse(tables)))
	assert.Equal(t, []string{"A", "B", "C"}, names(tables))
	assert.Empty(t, Reverse(nil))
}
