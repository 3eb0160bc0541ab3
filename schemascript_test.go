package schemascript

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemascript/internal/schema"
)

const fixture = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username VARCHAR(50) NOT NULL,
	email TEXT
);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users (id),
	total DECIMAL(10,2)
);
CREATE TABLE audit_log (
	id INTEGER PRIMARY KEY,
	line TEXT
);
INSERT INTO users (username, email) VALUES ('ada', 'ada@example.com');
INSERT INTO users (username, email) VALUES ('grace', NULL);
`

// fixtureURL writes a SQLite database and returns its sqlite:// URL
func fixtureURL(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(fixture)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	return "sqlite://" + path
}

func tableNames(s *Schema) []string {
	names := make([]string, 0, len(s.Tables))
	for _, table := range s.Tables {
		names = append(names, table.Name)
	}
	return names
}

func TestExtractSchema(t *testing.T) {
	ctx := context.Background()
	url := fixtureURL(t)

	tests := []struct {
		name       string
		url        string
		opts       *Options
		wantTables []string
		wantErr    bool
	}{
		{
			name:       "SQLite all tables",
			url:        url,
			opts:       nil,
			wantTables: []string{"audit_log", "orders", "users"},
		},
		{
			name:       "SQLite specific tables",
			url:        url,
			opts:       &Options{Tables: []string{"users", "orders"}},
			wantTables: []string{"orders", "users"},
		},
		{
			name:       "SQLite with exclusions",
			url:        url,
			opts:       &Options{ExcludeTables: []string{"AUDIT_LOG"}},
			wantTables: []string{"orders", "users"},
		},
		{
			name:    "Invalid URL scheme",
			url:     "invalid://test.db",
			wantErr: true,
		},
		{
			name:    "Empty URL",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ExtractSchema(ctx, tt.url, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.wantTables, tableNames(s))
		})
	}
}

func TestExtractData(t *testing.T) {
	ctx := context.Background()
	url := fixtureURL(t)

	table, rows, err := ExtractData(ctx, url, "users", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "users", table.Name)
	require.Len(t, rows, 2)
	assert.Equal(t, "ada", rows[0]["username"])
	assert.Nil(t, rows[1]["email"])

	_, rows, err = ExtractData(ctx, url, "users", nil, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, _, err = ExtractData(ctx, url, "missing", nil, 0)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestExtractAndWrite(t *testing.T) {
	ctx := context.Background()
	url := fixtureURL(t)

	var buf bytes.Buffer
	err := ExtractAndWrite(ctx, url, SQLServer, &Options{Tables: []string{"users", "orders"}}, &OutputOptions{Writer: &buf})
	require.NoError(t, err)

	out := buf.String()
	users := strings.Index(out, "CREATE TABLE [users]")
	orders := strings.Index(out, "CREATE TABLE [orders]")
	require.GreaterOrEqual(t, users, 0, out)
	assert.Greater(t, orders, users, "referenced tables come first")
	assert.Contains(t, out, "REFERENCES [users]")
	assert.Contains(t, out, "GO")

	dir := filepath.Join(t.TempDir(), "create")
	err = ExtractAndWrite(ctx, url, PostgreSQL, nil, &OutputOptions{OutputDir: dir})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "_overview.txt")
	assert.Contains(t, names, "004_foreign_keys.sql")
}

func TestExtractAndWriteRejectsBadURL(t *testing.T) {
	err := ExtractAndWrite(context.Background(), "oracle://scott@tiger", SQLite, nil, nil)
	assert.Error(t, err)
}

func shop() *Schema {
	customers := &schema.Table{
		Name: "Customers",
		Columns: []*schema.Column{
			{Name: "Id", Ordinal: 1, DbDataType: "INT", IsIdentity: true},
			{Name: "Name", Ordinal: 2, DbDataType: "NVARCHAR", Length: schema.Int(50)},
		},
		PrimaryKey: &schema.Constraint{Name: "PK_Customers", Type: schema.PrimaryKey, Columns: []string{"Id"}},
	}
	return &Schema{Tables: []*Table{customers}}
}

func TestGenerateScripts(t *testing.T) {
	ctx := context.Background()

	create, err := GenerateCreateScript(ctx, shop(), PostgreSQL, nil)
	require.NoError(t, err)
	assert.Contains(t, create, `CREATE TABLE "Customers"`)

	raw, err := GenerateCreateScript(ctx, shop(), MySQL, &ScriptOptions{RawNames: true})
	require.NoError(t, err)
	assert.Contains(t, raw, "CREATE TABLE Customers")

	drop, err := GenerateDropScript(ctx, shop(), SQLServer, nil)
	require.NoError(t, err)
	assert.Contains(t, drop, "DROP TABLE [Customers]")

	same, err := GenerateMigrationScript(ctx, shop(), shop(), Oracle, nil)
	require.NoError(t, err)
	assert.Equal(t, "-- no changes\n", same)

	empty := &Schema{}
	added, err := GenerateMigrationScript(ctx, empty, shop(), Firebird, &MigrationOptions{DetectRenames: true})
	require.NoError(t, err)
	assert.Contains(t, added, `CREATE TABLE "Customers"`)

	rows := []Row{{"Id": 1, "Name": "Ada"}, {"Id": 2, "Name": "Grace"}}
	data, err := GenerateDataScript(ctx, shop().Tables[0], rows, SQLServer, &DataOptions{IncludeIdentity: true, MaxRows: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(data, "INSERT INTO"))
	assert.Contains(t, data, "N'Ada'")

	parts := SplitScript(drop, SQLServer)
	assert.NotEmpty(t, parts)
	for _, p := range parts {
		assert.NotEqual(t, "GO", strings.TrimSpace(p))
	}
}

func TestGenerateScriptsRejectNil(t *testing.T) {
	ctx := context.Background()

	_, err := GenerateCreateScript(ctx, nil, SQLite, nil)
	assert.Error(t, err)

	_, err = GenerateDataScript(ctx, nil, nil, SQLite, nil)
	assert.Error(t, err)

	_, err = GenerateCreateScript(ctx, shop(), Dialect("db2"), nil)
	assert.Error(t, err)
}

func TestSchemaSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, SaveSchema(f, shop()))
	require.NoError(t, f.Close())

	loaded, err := LoadSchema(path)
	require.NoError(t, err)
	require.Len(t, loaded.Tables, 1)
	assert.Equal(t, "Customers", loaded.Tables[0].Name)
	assert.Equal(t, 50, *loaded.Tables[0].FindColumn("name").Length)
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("mssql")
	require.NoError(t, err)
	assert.Equal(t, SQLServer, d)

	_, err = ParseDialect("db2")
	assert.Error(t, err)
}

func TestFilterExcludedTables(t *testing.T) {
	tests := []struct {
		name        string
		tables      []string
		excludeList []string
		wantTables  []string
	}{
		{
			name:        "exclude single table",
			tables:      []string{"users", "posts", "comments"},
			excludeList: []string{"posts"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude multiple tables",
			tables:      []string{"users", "posts", "comments", "likes"},
			excludeList: []string{"posts", "likes"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude no tables",
			tables:      []string{"users", "posts"},
			excludeList: []string{},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude non-existent table",
			tables:      []string{"users", "posts"},
			excludeList: []string{"products"},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclusions ignore case",
			tables:      []string{"Users", "AuditLog"},
			excludeList: []string{"auditlog"},
			wantTables:  []string{"Users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Schema{}
			for _, name := range tt.tables {
				s.Tables = append(s.Tables, &Table{Name: name})
			}

			filterExcludedTables(s, tt.excludeList)
			assert.Equal(t, tt.wantTables, tableNames(s))
		})
	}
}
