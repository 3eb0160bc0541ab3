package script

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/schema"
)

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

func customers() *schema.Table {
	return &schema.Table{
		Name: "Customers",
		Columns: []*schema.Column{
			{Name: "Id", Ordinal: 1, DbDataType: "INT", IsIdentity: true},
			{Name: "Name", Ordinal: 2, DbDataType: "NVARCHAR", Length: schema.Int(50)},
		},
		PrimaryKey: &schema.Constraint{Name: "PK_Customers", Type: schema.PrimaryKey, Columns: []string{"Id"}},
	}
}

func orders() *schema.Table {
	return &schema.Table{
		Name: "Orders",
		Columns: []*schema.Column{
			{Name: "Id", Ordinal: 1, DbDataType: "INT", IsIdentity: true},
			{Name: "CustomerId", Ordinal: 2, DbDataType: "INT"},
			{Name: "Total", Ordinal: 3, DbDataType: "DECIMAL", Precision: schema.Int(10), Scale: schema.Int(2), Nullable: true},
		},
		PrimaryKey: &schema.Constraint{Name: "PK_Orders", Type: schema.PrimaryKey, Columns: []string{"Id"}},
		ForeignKeys: []*schema.Constraint{{
			Name: "FK_Orders_Customers", Type: schema.ForeignKey, Columns: []string{"CustomerId"},
			RefersToTable: "Customers", RefersToColumns: []string{"Id"},
		}},
		Indexes: []*schema.Index{{Name: "IX_Orders_CustomerId", Columns: []schema.IndexColumn{{Name: "CustomerId"}}}},
	}
}

// shop lists Orders before Customers so ordering has work to do
func shop() *schema.Schema {
	return &schema.Schema{Tables: []*schema.Table{orders(), customers()}}
}

// position returns where sub first occurs in s and fails when it is absent
func position(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, "%q not found in:\n%s", sub, s)
	return i
}
