package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

// errUnknownTable is MySQL's ER_UNKNOWN_TABLE, raised by servers older than
// 8.0.16 that lack information_schema.check_constraints
const errUnknownTable = 1109

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient opens and pings. dsn is a go-sql-driver DSN.
func NewMySQLClient(ctx context.Context, dsn string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// MySQLReader reads one MySQL database
type MySQLReader struct {
	client *MySQLClient
	schema string
}

// NewMySQLReader creates a reader for the named database
func NewMySQLReader(client *MySQLClient, schemaName string) *MySQLReader {
	return &MySQLReader{
		client: client,
		schema: schemaName,
	}
}

// Dialect implements Reader
func (r *MySQLReader) Dialect() dialect.Dialect {
	return dialect.MySQL
}

// Close implements Reader
func (r *MySQLReader) Close() error {
	return r.client.Close()
}

// ReadSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all tables in the database.
func (r *MySQLReader) ReadSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := r.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	read, err := readTables(ctx, tableNames, r.readTable)
	if err != nil {
		return nil, err
	}
	return &schema.Schema{Name: r.schema, Tables: read}, nil
}

// ReadRows implements Reader
func (r *MySQLReader) ReadRows(ctx context.Context, t *schema.Table, maxRows int) ([]schema.Row, error) {
	return querySQLRows(ctx, r.client.GetDB(), dialect.MySQL, t, maxRows)
}

// getTableNames returns the list of tables to extract
func (r *MySQLReader) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	return r.queryStrings(ctx, query, r.schema)
}

func (r *MySQLReader) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.client.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// readTable extracts all information for a single table
func (r *MySQLReader) readTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName, SchemaOwner: r.schema}

	if err := r.readColumns(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	if err := r.readKeys(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract keys: %w", err)
	}

	if err := r.readForeignKeys(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}

	if err := r.readChecks(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract check constraints: %w", err)
	}

	if err := r.readIndexes(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	if err := r.readTriggers(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract triggers: %w", err)
	}

	return finish(table), nil
}

// mySQLTypeName maps information_schema.columns onto a canonical type name.
// TINYINT(1) is MySQL's boolean.
func mySQLTypeName(dataType, columnType string) string {
	if strings.HasPrefix(strings.ToLower(columnType), "tinyint(1)") {
		return "BOOLEAN"
	}
	return strings.ToUpper(dataType)
}

// mySQLSized lists the types whose character_maximum_length is a declared size
var mySQLSized = map[string]bool{
	"char": true, "varchar": true, "binary": true, "varbinary": true, "bit": true,
}

func (r *MySQLReader) readColumns(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT
			column_name,
			ordinal_position,
			data_type,
			column_type,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default,
			extra,
			generation_expression
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			col                    schema.Column
			dataType, columnType   string
			nullable, extra        string
			length                 sql.NullInt64
			precision, scale       sql.NullInt64
			defaultVal, expression sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Ordinal, &dataType, &columnType, &length, &precision, &scale,
			&nullable, &defaultVal, &extra, &expression); err != nil {
			return err
		}

		col.Nullable = nullable == "YES"
		col.ProviderType = columnType
		col.DbDataType = mySQLTypeName(dataType, columnType)
		switch strings.ToLower(dataType) {
		case "decimal", "numeric":
			col.Precision = intPtr(precision.Int64, precision.Valid)
			col.Scale = intPtr(scale.Int64, scale.Valid)
			if scale.Valid && scale.Int64 == 0 {
				col.Scale = schema.Int(0)
			}
		case "bit":
			col.Length = intPtr(precision.Int64, precision.Valid)
		default:
			if mySQLSized[strings.ToLower(dataType)] {
				col.Length = intPtr(length.Int64, length.Valid)
			}
		}

		extra = strings.ToLower(extra)
		col.IsIdentity = strings.Contains(extra, "auto_increment")
		if strings.Contains(extra, "generated") && expression.String != "" {
			col.IsComputed = true
			col.ComputedDefinition = expression.String
		} else if defaultVal.Valid {
			col.DefaultValue = mySQLDefault(defaultVal.String, dataType, extra)
		}

		c := col
		table.Columns = append(table.Columns, &c)
	}

	return rows.Err()
}

// mySQLDefault quotes literal string defaults, which information_schema returns bare
func mySQLDefault(def, dataType, extra string) string {
	if strings.Contains(extra, "default_generated") {
		return def
	}
	switch strings.ToLower(dataType) {
	case "char", "varchar", "text", "tinytext", "mediumtext", "longtext", "enum", "set":
		return "'" + strings.ReplaceAll(def, "'", "''") + "'"
	}
	return def
}

func (r *MySQLReader) readKeys(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT tc.constraint_name, tc.constraint_type, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
			AND kcu.table_name = tc.table_name
		WHERE tc.table_schema = ?
			AND tc.table_name = ?
			AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var keys keyBuilder
	for rows.Next() {
		var name, typ, column string
		if err := rows.Scan(&name, &typ, &column); err != nil {
			return err
		}
		c := keys.add(name, schema.ConstraintType(typ), column)
		if c.Type == schema.PrimaryKey {
			// every MySQL primary key is called PRIMARY
			c.Name = "PK_" + table.Name
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	keys.assign(table)
	return nil
}

func (r *MySQLReader) readForeignKeys(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_schema,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = ?
			AND kcu.table_name = ?
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var keys keyBuilder
	for rows.Next() {
		var name, column, refSchema, refTable, refColumn, onUpdate, onDelete string
		if err := rows.Scan(&name, &column, &refSchema, &refTable, &refColumn, &onUpdate, &onDelete); err != nil {
			return err
		}
		fk := keys.add(name, schema.ForeignKey, column)
		fk.RefersToSchema = refSchema
		fk.RefersToTable = refTable
		fk.RefersToColumns = append(fk.RefersToColumns, refColumn)
		fk.UpdateRule = normalizeRule(onUpdate)
		fk.DeleteRule = normalizeRule(onDelete)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	keys.assign(table)
	return nil
}

func (r *MySQLReader) readChecks(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT cc.constraint_name, cc.check_clause
		FROM information_schema.check_constraints cc
		JOIN information_schema.table_constraints tc
			ON tc.constraint_schema = cc.constraint_schema
			AND tc.constraint_name = cc.constraint_name
		WHERE tc.table_schema = ?
			AND tc.table_name = ?
			AND tc.constraint_type = 'CHECK'
		ORDER BY cc.constraint_name
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, r.schema, table.Name)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == errUnknownTable {
			return nil
		}
		return err
	}
	defer rows.Close()

	for rows.Next() {
		c := &schema.Constraint{Type: schema.Check}
		if err := rows.Scan(&c.Name, &c.Expression); err != nil {
			return err
		}
		table.CheckConstraints = append(table.CheckConstraints, c)
	}

	return rows.Err()
}

// readIndexes reads secondary indexes. Indexes backing a unique or foreign
// key constraint share its name and are skipped.
func (r *MySQLReader) readIndexes(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT index_name, non_unique, column_name, collation, index_type
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ? AND index_name <> 'PRIMARY'
		ORDER BY index_name, seq_in_index
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := map[string]*schema.Index{}
	for rows.Next() {
		var (
			name, indexType   string
			nonUnique         int
			column, collation sql.NullString
		)
		if err := rows.Scan(&name, &nonUnique, &column, &collation, &indexType); err != nil {
			return err
		}
		if ownsIndex(table, name) || !column.Valid {
			continue
		}
		idx, ok := byName[name]
		if !ok {
			idx = &schema.Index{Name: name, IsUnique: nonUnique == 0}
			if indexType != "BTREE" {
				idx.IndexType = indexType
			}
			byName[name] = idx
			table.Indexes = append(table.Indexes, idx)
		}
		idx.Columns = append(idx.Columns, schema.IndexColumn{
			Name:       column.String,
			Ordinal:    len(idx.Columns) + 1,
			Descending: collation.String == "D",
		})
	}

	return rows.Err()
}

func (r *MySQLReader) readTriggers(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT trigger_name, event_manipulation, action_timing, action_statement
		FROM information_schema.triggers
		WHERE event_object_schema = ? AND event_object_table = ?
		ORDER BY trigger_name
	`

	rows, err := r.client.GetDB().QueryContext(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		tr := &schema.Trigger{}
		if err := rows.Scan(&tr.Name, &tr.TriggerEvent, &tr.TriggerType, &tr.TriggerBody); err != nil {
			return err
		}
		table.Triggers = append(table.Triggers, tr)
	}

	return rows.Err()
}
