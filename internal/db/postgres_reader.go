package db

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects and pings. Sessions report application_name
// "schemascript" unless the URL sets one.
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = "schemascript"
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// PostgresReader reads one PostgreSQL schema
type PostgresReader struct {
	client *PostgresClient
	schema string
}

// NewPostgresReader creates a reader for the named schema
func NewPostgresReader(client *PostgresClient, schemaName string) *PostgresReader {
	return &PostgresReader{
		client: client,
		schema: schemaName,
	}
}

// Dialect implements Reader
func (r *PostgresReader) Dialect() dialect.Dialect {
	return dialect.PostgreSQL
}

// Close implements Reader
func (r *PostgresReader) Close() error {
	return r.client.Close(context.Background())
}

// ReadSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all tables in the schema.
func (r *PostgresReader) ReadSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := r.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	read, err := readTables(ctx, tableNames, r.readTable)
	if err != nil {
		return nil, err
	}

	sequences, err := r.readSequences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract sequences: %w", err)
	}

	return &schema.Schema{Name: r.schema, Tables: read, Sequences: sequences}, nil
}

// ReadRows implements Reader
func (r *PostgresReader) ReadRows(ctx context.Context, t *schema.Table, maxRows int) ([]schema.Row, error) {
	stmt, err := selectRows(dialect.PostgreSQL, t, maxRows)
	if err != nil {
		return nil, err
	}

	rows, err := r.client.GetConnection().Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows of %s: %w", t.Name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	var result []schema.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", t.Name, err)
		}
		result = append(result, toRow(t, names, values))
	}
	return result, rows.Err()
}

// getTableNames returns the list of tables to extract
func (r *PostgresReader) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// readTable extracts all information for a single table
func (r *PostgresReader) readTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Name: tableName, SchemaOwner: r.schema}

	enums, err := r.readColumns(ctx, table)
	if err != nil {
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
	if err := r.enumChecks(ctx, table, enums); err != nil {
		return nil, fmt.Errorf("failed to extract enum values: %w", err)
	}

	if err := r.readIndexes(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}

	if err := r.readTriggers(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to extract triggers: %w", err)
	}

	return finish(table), nil
}

// postgresCast matches a trailing type cast such as "::character varying"
var postgresCast = regexp.MustCompile(`::[a-zA-Z_][a-zA-Z0-9_ ."]*(\[\])?$`)

// postgresTypeName maps information_schema type names onto canonical names.
// Arrays and non-enum user types keep their udt name.
func postgresTypeName(dataType, udtName string) string {
	switch dataType {
	case "ARRAY":
		return strings.ToUpper(strings.TrimPrefix(udtName, "_")) + "[]"
	case "USER-DEFINED":
		return strings.ToUpper(udtName)
	}
	return strings.ToUpper(dataType)
}

// readColumns fills the table's columns and returns the enum-typed ones by udt name
func (r *PostgresReader) readColumns(ctx context.Context, table *schema.Table) (map[string][]*schema.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.ordinal_position,
			c.data_type,
			c.udt_name,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_nullable,
			c.column_default,
			c.is_identity,
			COALESCE(c.identity_start, ''),
			COALESCE(c.identity_increment, ''),
			c.is_generated,
			COALESCE(c.generation_expression, ''),
			EXISTS (
				SELECT 1 FROM pg_type t
				JOIN pg_namespace n ON n.oid = t.typnamespace
				WHERE t.typname = c.udt_name AND n.nspname = c.udt_schema AND t.typtype = 'e'
			) AS is_enum
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema, table.Name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enums := map[string][]*schema.Column{}
	for rows.Next() {
		var (
			col                         schema.Column
			dataType, udtName           string
			nullable, identity          string
			identityStart, identityStep string
			generated, expression       string
			length, precision, scale    *int
			defaultVal                  *string
			isEnum                      bool
		)
		if err := rows.Scan(&col.Name, &col.Ordinal, &dataType, &udtName, &length, &precision, &scale,
			&nullable, &defaultVal, &identity, &identityStart, &identityStep, &generated, &expression, &isEnum); err != nil {
			return nil, err
		}

		col.Nullable = nullable == "YES"
		col.ProviderType = udtName
		col.DbDataType = postgresTypeName(dataType, udtName)
		col.Length = length
		if dataType == "numeric" {
			col.Precision, col.Scale = precision, scale
		}

		if defaultVal != nil {
			def := *defaultVal
			if strings.HasPrefix(def, "nextval(") {
				// serial column
				col.IsIdentity = true
			} else {
				col.DefaultValue = postgresCast.ReplaceAllString(def, "")
			}
		}
		if identity == "YES" {
			col.IsIdentity = true
			col.IdentitySeed, _ = strconv.ParseInt(identityStart, 10, 64)
			col.IdentityIncrement, _ = strconv.ParseInt(identityStep, 10, 64)
		}
		if generated == "ALWAYS" {
			col.IsComputed = true
			col.ComputedDefinition = expression
		}

		c := col
		table.Columns = append(table.Columns, &c)
		if isEnum {
			enums[udtName] = append(enums[udtName], &c)
		}
	}

	return enums, rows.Err()
}

// readKeys reads the primary key and unique constraints
func (r *PostgresReader) readKeys(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT tc.constraint_name, tc.constraint_type, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
			AND kcu.table_name = tc.table_name
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema, table.Name)
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
		keys.add(name, schema.ConstraintType(typ), column)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	keys.assign(table)
	return nil
}

// postgresRules decodes pg_constraint.confdeltype/confupdtype
var postgresRules = map[string]string{
	"a": "",
	"r": "RESTRICT",
	"c": "CASCADE",
	"n": "SET NULL",
	"d": "SET DEFAULT",
}

// readForeignKeys reads foreign keys with their column pairs in key order
func (r *PostgresReader) readForeignKeys(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT
			con.conname,
			array(
				SELECT a.attname::text
				FROM unnest(con.conkey) WITH ORDINALITY k(attnum, n)
				JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
				ORDER BY k.n
			) AS columns,
			rn.nspname::text,
			rt.relname::text,
			array(
				SELECT a.attname::text
				FROM unnest(con.confkey) WITH ORDINALITY k(attnum, n)
				JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
				ORDER BY k.n
			) AS ref_columns,
			con.confdeltype::text,
			con.confupdtype::text
		FROM pg_constraint con
		JOIN pg_class t ON t.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_class rt ON rt.oid = con.confrelid
		JOIN pg_namespace rn ON rn.oid = rt.relnamespace
		WHERE con.contype = 'f'
			AND n.nspname = $1
			AND t.relname = $2
		ORDER BY con.conname
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		fk := &schema.Constraint{Type: schema.ForeignKey}
		var onDelete, onUpdate string
		if err := rows.Scan(&fk.Name, &fk.Columns, &fk.RefersToSchema, &fk.RefersToTable,
			&fk.RefersToColumns, &onDelete, &onUpdate); err != nil {
			return err
		}
		fk.DeleteRule = postgresRules[onDelete]
		fk.UpdateRule = postgresRules[onUpdate]
		table.ForeignKeys = append(table.ForeignKeys, fk)
	}

	return rows.Err()
}

// readChecks reads check constraints. NOT NULL checks are not stored here.
func (r *PostgresReader) readChecks(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT con.conname, pg_get_constraintdef(con.oid)
		FROM pg_constraint con
		JOIN pg_class t ON t.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE con.contype = 'c'
			AND n.nspname = $1
			AND t.relname = $2
		ORDER BY con.conname
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return err
		}
		def = strings.TrimSpace(strings.TrimPrefix(def, "CHECK"))
		def = strings.TrimSuffix(def, " NOT VALID")
		table.CheckConstraints = append(table.CheckConstraints, &schema.Constraint{
			Name: name, Type: schema.Check, Expression: def,
		})
	}

	return rows.Err()
}

// enumChecks turns enum-typed columns into VARCHAR columns guarded by an IN
// check so the values survive in dialects without enum types
func (r *PostgresReader) enumChecks(ctx context.Context, table *schema.Table, enums map[string][]*schema.Column) error {
	if len(enums) == 0 {
		return nil
	}
	names := make([]string, 0, len(enums))
	for name := range enums {
		names = append(names, name)
	}

	values, err := r.extractEnumValuesMap(ctx, names)
	if err != nil {
		return err
	}

	for _, name := range names {
		labels := values[name]
		if len(labels) == 0 {
			continue
		}
		longest := 1
		quoted := make([]string, len(labels))
		for i, l := range labels {
			longest = max(longest, len(l))
			quoted[i] = "'" + strings.ReplaceAll(l, "'", "''") + "'"
		}
		for _, col := range enums[name] {
			col.DbDataType = "VARCHAR"
			col.Length = schema.Int(longest)
			if col.DefaultValue != "" {
				col.DefaultValue = postgresCast.ReplaceAllString(col.DefaultValue, "")
			}
			table.CheckConstraints = append(table.CheckConstraints, &schema.Constraint{
				Name:       fmt.Sprintf("CK_%s_%s", table.Name, col.Name),
				Type:       schema.Check,
				Expression: fmt.Sprintf("%s IN (%s)", col.Name, strings.Join(quoted, ", ")),
			})
		}
	}
	return nil
}

// extractEnumValuesMap extracts enum values for multiple enum types at once
func (r *PostgresReader) extractEnumValuesMap(ctx context.Context, enumTypeNames []string) (map[string][]string, error) {
	query := `
		SELECT t.typname::text, e.enumlabel::text
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		WHERE t.typname = ANY($1)
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := r.client.GetConnection().Query(ctx, query, enumTypeNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]string)
	for rows.Next() {
		var typName, enumLabel string
		if err := rows.Scan(&typName, &enumLabel); err != nil {
			return nil, err
		}
		result[typName] = append(result[typName], enumLabel)
	}

	return result, rows.Err()
}

// readIndexes reads indexes that no primary key or unique constraint owns
func (r *PostgresReader) readIndexes(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT
			i.relname::text AS index_name,
			ix.indisunique AS is_unique,
			am.amname::text,
			array(
				SELECT a.attname::text
				FROM unnest(ix.indkey) WITH ORDINALITY k(attnum, n)
				JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
				ORDER BY k.n
			) AS column_names,
			array(
				SELECT (o & 1) = 1
				FROM unnest(ix.indoption::int2[]) WITH ORDINALITY u(o, n)
				ORDER BY u.n
			) AS descending
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON am.oid = i.relam
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND NOT ix.indisprimary
			AND NOT EXISTS (SELECT 1 FROM pg_constraint c WHERE c.conindid = ix.indexrelid)
		ORDER BY i.relname
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema, table.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		idx := &schema.Index{}
		var (
			method     string
			columns    []string
			descending []bool
		)
		if err := rows.Scan(&idx.Name, &idx.IsUnique, &method, &columns, &descending); err != nil {
			return err
		}
		if method != "btree" {
			idx.IndexType = strings.ToUpper(method)
		}
		for i, name := range columns {
			col := schema.IndexColumn{Name: name, Ordinal: i + 1}
			if i < len(descending) {
				col.Descending = descending[i]
			}
			idx.Columns = append(idx.Columns, col)
		}
		// expression indexes have no plain columns
		if len(idx.Columns) > 0 {
			table.Indexes = append(table.Indexes, idx)
		}
	}

	return rows.Err()
}

// readTriggers reads triggers, one entry per trigger with its events joined
func (r *PostgresReader) readTriggers(ctx context.Context, table *schema.Table) error {
	query := `
		SELECT
			trigger_name::text,
			string_agg(event_manipulation::text, ' OR ' ORDER BY event_manipulation),
			action_timing::text,
			action_statement::text
		FROM information_schema.triggers
		WHERE event_object_schema = $1 AND event_object_table = $2
		GROUP BY trigger_name, action_timing, action_statement
		ORDER BY trigger_name
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema, table.Name)
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

// readSequences reads the schema's standalone sequences
func (r *PostgresReader) readSequences(ctx context.Context) ([]*schema.Sequence, error) {
	query := `
		SELECT
			sequence_name::text,
			start_value::bigint,
			increment::bigint,
			minimum_value::bigint,
			maximum_value::bigint,
			cycle_option = 'YES'
		FROM information_schema.sequences
		WHERE sequence_schema = $1
		ORDER BY sequence_name
	`

	rows, err := r.client.GetConnection().Query(ctx, query, r.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sequences []*schema.Sequence
	for rows.Next() {
		seq := &schema.Sequence{SchemaOwner: r.schema}
		var minValue, maxValue int64
		if err := rows.Scan(&seq.Name, &seq.Start, &seq.Increment, &minValue, &maxValue, &seq.Cycle); err != nil {
			return nil, err
		}
		seq.MinValue, seq.MaxValue = &minValue, &maxValue
		sequences = append(sequences, seq)
	}

	return sequences, rows.Err()
}
