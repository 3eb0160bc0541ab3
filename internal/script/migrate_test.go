package script

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

func migrate(t *testing.T, before, after *schema.Schema, d dialect.Dialect, opts MigrationOptions) string {
	t.Helper()
	out, err := MigrationScript(context.Background(), before, after, d, opts)
	require.NoError(t, err)
	return out
}

func TestMigrationNoChanges(t *testing.T) {
	out := migrate(t, shop(), shop(), dialect.PostgreSQL, MigrationOptions{})
	assert.Equal(t, "-- no changes\n", out)
}

func TestMigrationAddsTable(t *testing.T) {
	before := &schema.Schema{Tables: []*schema.Table{customers()}}

	out := migrate(t, before, shop(), dialect.SQLServer, MigrationOptions{})

	create := position(t, out, "CREATE TABLE [Orders]")
	fk := position(t, out, "ADD CONSTRAINT [FK_Orders_Customers]")
	index := position(t, out, "CREATE INDEX [IX_Orders_CustomerId]")
	assert.Less(t, create, fk)
	assert.Less(t, fk, index)
	assert.NotContains(t, out, "CREATE TABLE [Customers]")
}

func TestMigrationDropsTable(t *testing.T) {
	after := &schema.Schema{Tables: []*schema.Table{customers()}}

	out := migrate(t, shop(), after, dialect.Oracle, MigrationOptions{})

	fk := position(t, out, `ALTER TABLE "Orders" DROP CONSTRAINT "FK_Orders_Customers"`)
	table := position(t, out, `DROP TABLE "Orders"`)
	sequence := position(t, out, `DROP SEQUENCE "Orders_SEQ"`)
	assert.Less(t, fk, table)
	assert.Less(t, table, sequence)
	assert.NotContains(t, out, `DROP TABLE "Customers"`)
	assert.NotContains(t, out, `"Customers_SEQ"`)
}

func TestMigrationColumns(t *testing.T) {
	changed := customers()
	changed.Columns[1] = &schema.Column{Name: "Name", Ordinal: 2, DbDataType: "NVARCHAR", Length: schema.Int(100)}
	changed.Columns = append(changed.Columns, &schema.Column{Name: "Email", Ordinal: 3, DbDataType: "NVARCHAR", Length: schema.Int(200), Nullable: true})

	before := &schema.Schema{Tables: []*schema.Table{customers()}}
	after := &schema.Schema{Tables: []*schema.Table{changed}}

	out := migrate(t, before, after, dialect.PostgreSQL, MigrationOptions{})
	assert.Contains(t, out, `ALTER TABLE "Customers" ADD COLUMN "Email" VARCHAR(200);`)
	assert.Contains(t, out, `ALTER TABLE "Customers" ALTER COLUMN "Name" TYPE VARCHAR(100);`)

	reverse := migrate(t, after, before, dialect.PostgreSQL, MigrationOptions{})
	assert.Contains(t, reverse, `ALTER TABLE "Customers" DROP COLUMN "Email";`)
}

func TestMigrationRenames(t *testing.T) {
	renamed := customers()
	renamed.Name = "Clients"
	renamed.Columns[1] = &schema.Column{Name: "FullName", Ordinal: 2, DbDataType: "NVARCHAR", Length: schema.Int(50)}

	before := &schema.Schema{Tables: []*schema.Table{customers()}}
	after := &schema.Schema{Tables: []*schema.Table{renamed}}

	t.Run("detected", func(t *testing.T) {
		sameColumns := customers()
		sameColumns.Name = "Clients"
		out := migrate(t, before, &schema.Schema{Tables: []*schema.Table{sameColumns}}, dialect.PostgreSQL, MigrationOptions{DetectRenames: true})
		assert.Equal(t, "ALTER TABLE \"Customers\" RENAME TO \"Clients\";\n", out)
	})

	t.Run("column rename", func(t *testing.T) {
		changed := customers()
		changed.Columns[1] = renamed.Columns[1]
		out := migrate(t, before, &schema.Schema{Tables: []*schema.Table{changed}}, dialect.MySQL, MigrationOptions{DetectRenames: true})
		assert.Equal(t, "ALTER TABLE `Customers` RENAME COLUMN `Name` TO `FullName`;\n", out)
	})

	t.Run("unnamed constraints keep their old generated names", func(t *testing.T) {
		old := orders()
		old.ForeignKeys[0].Name = ""
		old.Indexes[0].Name = ""
		purchases := orders()
		purchases.Name = "Purchases"
		purchases.ForeignKeys = nil
		purchases.Indexes = nil

		before := &schema.Schema{Tables: []*schema.Table{old, customers()}}
		after := &schema.Schema{Tables: []*schema.Table{purchases, customers()}}

		pg := migrate(t, before, after, dialect.PostgreSQL, MigrationOptions{DetectRenames: true})
		dropFK := position(t, pg, `ALTER TABLE "Orders" DROP CONSTRAINT "FK_Orders_Customers_CustomerId"`)
		dropIndex := position(t, pg, `DROP INDEX "IX_Orders_CustomerId"`)
		rename := position(t, pg, `ALTER TABLE "Orders" RENAME TO "Purchases"`)
		assert.Less(t, dropFK, rename)
		assert.Less(t, dropIndex, rename)
		assert.NotContains(t, pg, "FK_Purchases")

		my := migrate(t, before, after, dialect.MySQL, MigrationOptions{DetectRenames: true})
		assert.Less(t,
			position(t, my, "ALTER TABLE `Orders` DROP FOREIGN KEY `FK_Orders_Customers_CustomerId`"),
			position(t, my, "RENAME TABLE `Orders` TO `Purchases`"))
		assert.Contains(t, my, "DROP INDEX `IX_Orders_CustomerId` ON `Orders`")
	})

	t.Run("not detected", func(t *testing.T) {
		out := migrate(t, before, after, dialect.PostgreSQL, MigrationOptions{})
		assert.Contains(t, out, `DROP TABLE "Customers"`)
		assert.Contains(t, out, `CREATE TABLE "Clients"`)
	})
}

func TestMigrationConstraintsAndIndexes(t *testing.T) {
	changed := orders()
	changed.UniqueKeys = []*schema.Constraint{{Name: "UK_Orders_Total", Type: schema.UniqueKey, Columns: []string{"Total"}}}
	changed.ForeignKeys[0] = &schema.Constraint{
		Name: "FK_Orders_Customers", Type: schema.ForeignKey, Columns: []string{"CustomerId"},
		RefersToTable: "Customers", RefersToColumns: []string{"Id"}, DeleteRule: "CASCADE",
	}
	changed.Indexes = nil

	after := &schema.Schema{Tables: []*schema.Table{changed, customers()}}
	out := migrate(t, shop(), after, dialect.SQLServer, MigrationOptions{})

	dropFK := position(t, out, "ALTER TABLE [Orders] DROP CONSTRAINT [FK_Orders_Customers]")
	dropIndex := position(t, out, "DROP INDEX [IX_Orders_CustomerId] ON [Orders]")
	unique := position(t, out, "ADD CONSTRAINT [UK_Orders_Total] UNIQUE")
	addFK := position(t, out, "ON DELETE CASCADE")

	assert.Less(t, dropFK, dropIndex)
	assert.Less(t, dropIndex, unique)
	assert.Less(t, unique, addFK, "foreign keys are added last")
}

func TestMigrationSQLiteAdvisories(t *testing.T) {
	changed := customers()
	changed.Columns[1] = &schema.Column{Name: "Name", Ordinal: 2, DbDataType: "NVARCHAR", Length: schema.Int(100)}

	out := migrate(t,
		&schema.Schema{Tables: []*schema.Table{customers()}},
		&schema.Schema{Tables: []*schema.Table{changed}},
		dialect.SQLite, MigrationOptions{})
	assert.Contains(t, out, "Manual table recreation required")
	assert.Empty(t, Split(out, dialect.SQLite), "advisories are not executable")
}

func TestMigrationErrors(t *testing.T) {
	_, err := MigrationScript(context.Background(), nil, shop(), dialect.MySQL, MigrationOptions{})
	assert.ErrorIs(t, err, ErrNilSchema)

	_, err = MigrationScript(context.Background(), shop(), shop(), dialect.Dialect("db2"), MigrationOptions{})
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = MigrationScript(ctx, &schema.Schema{}, shop(), dialect.MySQL, MigrationOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
