package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
	"github.com/tordrt/schemascript/internal/types"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens the database file in query-only mode
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// readOnlyDSN adds the driver's query-only switch to a path or file: URI
func readOnlyDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_query_only=1"
	}
	return path + "?_query_only=1"
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// SQLiteReader reads a SQLite database file
type SQLiteReader struct {
	client *SQLiteClient
}

// NewSQLiteReader creates a new SQLite schema reader
func NewSQLiteReader(client *SQLiteClient) *SQLiteReader {
	return &SQLiteReader{
		client: client,
	}
}

// Dialect implements Reader
func (r *SQLiteReader) Dialect() dialect.Dialect {
	return dialect.SQLite
}

// Close implements Reader
func (r *SQLiteReader) Close() error {
	return r.client.Close()
}

// ReadSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all tables in the database.
func (r *SQLiteReader) ReadSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := r.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	read, err := readTables(ctx, tableNames, r.readTable)
	if err != nil {
		return nil, err
	}
	return &schema.Schema{Tables: read}, nil
}

// ReadRows implements Reader
func (r *SQLiteReader) ReadRows(ctx context.Context, t *schema.Table, maxRows int) ([]schema.Row, error) {
	return querySQLRows(ctx, r.client.GetDB(), dialect.SQLite, t, maxRows)
}

// getTableNames returns the list of tables to extract
func (r *SQLiteReader) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// readTable extracts all information for a single table
func (r *SQLiteReader) readTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName}

	var ddl string
	err := r.client.GetDB().QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`, tableName).Scan(&ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table definition: %w", err)
	}

	if err := r.readColumns(ctx, table, strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT")); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	if err := r.readForeignKeys(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	if err := r.readIndexes(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	if err := r.readTriggers(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract triggers: %w", err)
	}

	return finish(table), nil
}

// sqliteColumn splits a declared type such as "VARCHAR(50)" into the name and
// the size the column model keeps separately
func sqliteColumn(col *schema.Column, declared string) {
	info := types.ClassifyName(declared)
	col.DbDataType = info.Name
	col.ProviderType = declared
	if col.DbDataType == "" {
		// no declared type: BLOB affinity
		col.DbDataType = "BLOB"
		return
	}
	switch {
	case info.Family.IsString(), info.Family.IsBinary():
		if info.HasLength {
			col.Length = schema.Int(info.Length)
		}
	case info.Family == types.Decimal, info.Family == types.Number:
		if info.HasPrecision {
			col.Precision = schema.Int(info.Precision)
		}
		if info.HasScale {
			col.Scale = schema.Int(info.Scale)
		}
	}
}

// readColumns reads columns and the primary key. A column counts as identity
// only when the table was declared with AUTOINCREMENT.
func (r *SQLiteReader) readColumns(ctx context.Context, table *schema.Table, autoincrement bool) error {
	query := `
		SELECT cid, name, type, "notnull", dflt_value, pk, hidden
		FROM pragma_table_xinfo(?)
		ORDER BY cid
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	type keyPart struct {
		position int
		name     string
	}
	var key []keyPart

	for rows.Next() {
		var (
			cid, notNull, pk, hidden int
			name, declared           string
			defaultVal               sql.NullString
		)
		if err := rows.Scan(&cid, &name, &declared, &notNull, &defaultVal, &pk, &hidden); err != nil {
			return err
		}
		// hidden 1 marks virtual-table columns
		if hidden == 1 {
			continue
		}

		col := &schema.Column{Name: name, Ordinal: cid + 1, Nullable: notNull == 0 && pk == 0}
		sqliteColumn(col, declared)
		if defaultVal.Valid {
			col.DefaultValue = defaultVal.String
		}
		// generated columns; the expression is only in the table's SQL text
		col.IsComputed = hidden == 2 || hidden == 3
		if pk > 0 {
			key = append(key, keyPart{pk, name})
		}
		table.Columns = append(table.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(key) == 0 {
		return nil
	}
	sort.Slice(key, func(i, j int) bool { return key[i].position < key[j].position })
	table.PrimaryKey = &schema.Constraint{Name: "PK_" + table.Name, Type: schema.PrimaryKey}
	for _, k := range key {
		table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, k.name)
	}
	if autoincrement && len(key) == 1 {
		table.FindColumn(key[0].name).IsIdentity = true
	}
	return nil
}

// readForeignKeys reads foreign keys. SQLite does not keep their names.
func (r *SQLiteReader) readForeignKeys(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT id, "table", "from", "to", on_update, on_delete
		FROM pragma_foreign_key_list(?)
		ORDER BY id, seq
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := map[int]*schema.Constraint{}
	for rows.Next() {
		var (
			id                 int
			refTable, from     string
			to                 sql.NullString
			onUpdate, onDelete string
		)
		if err := rows.Scan(&id, &refTable, &from, &to, &onUpdate, &onDelete); err != nil {
			return err
		}
		fk, ok := byID[id]
		if !ok {
			fk = &schema.Constraint{
				Type:          schema.ForeignKey,
				RefersToTable: refTable,
				UpdateRule:    normalizeRule(onUpdate),
				DeleteRule:    normalizeRule(onDelete),
			}
			byID[id] = fk
			table.ForeignKeys = append(table.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, from)
		// a NULL target column means the referenced table's primary key
		if to.Valid {
			fk.RefersToColumns = append(fk.RefersToColumns, to.String)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_ = rows.Close()

	for _, fk := range table.ForeignKeys {
		if len(fk.RefersToColumns) > 0 {
			continue
		}
		if err := r.resolveImplicitReference(ctx, fk); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteReader) resolveImplicitReference(ctx context.Context, fk *schema.Constraint) error {
	query := `SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`

	rows, err := r.client.GetDB().QueryContext(ctx, query, fk.RefersToTable)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		fk.RefersToColumns = append(fk.RefersToColumns, name)
	}
	return rows.Err()
}

// readIndexes reads explicit indexes and UNIQUE constraints.
// Primary key autoindexes are skipped.
func (r *SQLiteReader) readIndexes(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT name, "unique", origin
		FROM pragma_index_list(?)
		ORDER BY name
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, table.Name)
	if err != nil {
		return err
	}

	type entry struct {
		name, origin string
		unique       bool
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.name, &e.unique, &e.origin); err != nil {
			_ = rows.Close()
			return err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	_ = rows.Close()

	for _, e := range entries {
		if e.origin == "pk" {
			continue
		}
		columns, err := r.readIndexColumns(ctx, e.name)
		if err != nil {
			return fmt.Errorf("failed to read index %s: %w", e.name, err)
		}
		if e.origin == "u" {
			// autoindex names are internal; writers generate UK_ names
			uk := &schema.Constraint{Type: schema.UniqueKey}
			for _, c := range columns {
				uk.Columns = append(uk.Columns, c.Name)
			}
			table.UniqueKeys = append(table.UniqueKeys, uk)
			continue
		}
		table.Indexes = append(table.Indexes, &schema.Index{Name: e.name, IsUnique: e.unique, Columns: columns})
	}
	return nil
}

func (r *SQLiteReader) readIndexColumns(ctx context.Context, index string) ([]schema.IndexColumn, error) {
	query := `
		SELECT name, "desc"
		FROM pragma_index_xinfo(?)
		WHERE key = 1 AND name IS NOT NULL
		ORDER BY seqno
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, index)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.IndexColumn
	for rows.Next() {
		var c schema.IndexColumn
		if err := rows.Scan(&c.Name, &c.Descending); err != nil {
			return nil, err
		}
		c.Ordinal = len(columns) + 1
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// readTriggers keeps each trigger's full CREATE TRIGGER text as its body
func (r *SQLiteReader) readTriggers(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT name, sql
		FROM sqlite_master
		WHERE type = 'trigger' AND tbl_name = ?
		ORDER BY name
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		tr := &schema.Trigger{}
		if err := rows.Scan(&tr.Name, &tr.TriggerBody); err != nil {
			return err
		}
		table.Triggers = append(table.Triggers, tr)
	}
	return rows.Err()
}
