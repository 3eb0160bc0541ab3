package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/dialect"
)

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestWriteCreateFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := WriteCreateFiles(context.Background(), dir, shop(), dialect.SQLServer, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_Customers.sql", "002_Orders.sql", "003_foreign_keys.sql"}, files)

	customers := readFile(t, dir, "001_Customers.sql")
	assert.Contains(t, customers, "CREATE TABLE [Customers]")
	assert.NotContains(t, customers, "Orders")

	orders := readFile(t, dir, "002_Orders.sql")
	assert.Contains(t, orders, "CREATE TABLE [Orders]")
	assert.Contains(t, orders, "CREATE INDEX [IX_Orders_CustomerId]")
	assert.NotContains(t, orders, "FK_Orders_Customers", "foreign keys wait until every table exists")

	assert.Contains(t, readFile(t, dir, "003_foreign_keys.sql"), "ADD CONSTRAINT [FK_Orders_Customers]")

	overview := readFile(t, dir, OverviewFile)
	assert.Contains(t, overview, "001_Customers.sql\n002_Orders.sql (references: Customers)\n003_foreign_keys.sql\n")
}

func TestWriteCreateFilesSQLiteHasNoForeignKeyFile(t *testing.T) {
	dir := t.TempDir()

	files, err := WriteCreateFiles(context.Background(), dir, shop(), dialect.SQLite, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_Customers.sql", "002_Orders.sql"}, files)
	assert.Contains(t, readFile(t, dir, "002_Orders.sql"), `REFERENCES "Customers"`)
}

func TestWriteCreateFilesErrors(t *testing.T) {
	_, err := WriteCreateFiles(context.Background(), t.TempDir(), nil, dialect.SQLite, Options{})
	assert.ErrorIs(t, err, ErrNilSchema)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WriteCreateFiles(ctx, t.TempDir(), shop(), dialect.SQLite, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Order_Items", fileName("Order Items"))
	assert.Equal(t, "dbo.Users", fileName("dbo.Users"))
	assert.Equal(t, "table", fileName("///"))
}
