package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

func col(typ string, length, precision, scale *int) *schema.Column {
	return &schema.Column{Name: "c", DbDataType: typ, Length: length, Precision: precision, Scale: scale}
}

func TestMapType(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect.Dialect
		column  *schema.Column
		want    string
	}{
		{"sqlserver nvarchar", dialect.SQLServer, col("NVARCHAR", schema.Int(50), nil, nil), "NVARCHAR(50)"},
		{"sqlserver nvarchar max sentinel", dialect.SQLServer, col("NVARCHAR", schema.Int(-1), nil, nil), "NVARCHAR(MAX)"},
		{"sqlserver nvarchar over limit", dialect.SQLServer, col("NVARCHAR", schema.Int(5000), nil, nil), "NVARCHAR(MAX)"},
		{"sqlserver varchar at limit", dialect.SQLServer, col("VARCHAR", schema.Int(8000), nil, nil), "VARCHAR(8000)"},
		{"sqlserver embedded max", dialect.SQLServer, col("varbinary(max)", nil, nil, nil), "VARBINARY(MAX)"},
		{"oracle varchar2 over limit", dialect.Oracle, col("VARCHAR", schema.Int(5000), nil, nil), "CLOB"},
		{"oracle nvarchar", dialect.Oracle, col("NVARCHAR", schema.Int(40), nil, nil), "NVARCHAR2(40)"},
		{"oracle keeps number", dialect.Oracle, col("NUMBER", nil, schema.Int(9), schema.Int(0)), "NUMBER(9)"},
		{"oracle number with scale", dialect.Oracle, col("NUMBER(10,2)", nil, nil, nil), "NUMBER(10,2)"},
		{"mysql text unbounded", dialect.MySQL, col("NTEXT", nil, nil, nil), "LONGTEXT"},
		{"mysql keeps mediumtext", dialect.MySQL, col("MEDIUMTEXT", nil, nil, nil), "MEDIUMTEXT"},
		{"mysql varchar -1", dialect.MySQL, col("VARCHAR", schema.Int(-1), nil, nil), "LONGTEXT"},
		{"sqlite varchar keeps length", dialect.SQLite, col("VARCHAR", schema.Int(50), nil, nil), "VARCHAR(50)"},
		{"sqlite int", dialect.SQLite, col("INT", nil, nil, nil), "INTEGER"},
		{"sqlite image", dialect.SQLite, col("IMAGE", nil, nil, nil), "BLOB"},
		{"firebird nvarchar", dialect.Firebird, col("NVARCHAR", schema.Int(20), nil, nil), "VARCHAR(20) CHARACTER SET UTF8"},
		{"firebird text", dialect.Firebird, col("CLOB", nil, nil, nil), "BLOB SUB_TYPE TEXT"},
		{"postgres blob", dialect.PostgreSQL, col("BLOB", nil, nil, nil), "BYTEA"},
		{"postgres bool", dialect.PostgreSQL, col("BIT", nil, nil, nil), "BOOLEAN"},
		{"postgres datetime2", dialect.PostgreSQL, col("DATETIME2", nil, nil, nil), "TIMESTAMP"},
		{"empty type", dialect.SQLServer, col("", nil, nil, nil), ""},
		{"unknown passthrough", dialect.PostgreSQL, col("geography", nil, nil, nil), "GEOGRAPHY"},
		{"unknown keeps length", dialect.MySQL, col("SET", schema.Int(10), nil, nil), "SET(10)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapType(tt.dialect, tt.column))
		})
	}
}

func TestMapTypeNumberBuckets(t *testing.T) {
	tests := []struct {
		precision int
		scale     int
		want      string
	}{
		{4, 0, "SMALLINT"},
		{5, 0, "INT"},
		{9, 0, "INT"},
		{10, 0, "BIGINT"},
		{18, 0, "BIGINT"},
		{19, 0, "DECIMAL(19,0)"},
		{10, 2, "DECIMAL(10,2)"},
	}

	for _, tt := range tests {
		c := col("NUMBER", nil, schema.Int(tt.precision), schema.Int(tt.scale))
		assert.Equal(t, tt.want, MapType(dialect.SQLServer, c), "NUMBER(%d,%d)", tt.precision, tt.scale)
	}

	assert.Equal(t, "NUMERIC", MapType(dialect.PostgreSQL, col("NUMBER", nil, nil, nil)))
	assert.Equal(t, "NUMBER", MapType(dialect.Oracle, col("NUMBER", nil, nil, nil)))
}

func TestMapTypeRowVersion(t *testing.T) {
	token := &schema.Column{Name: "RowVer", DbDataType: "TIMESTAMP", ProviderType: ProviderRowVersion}
	semantic := &schema.Column{Name: "CreatedAt", DbDataType: "TIMESTAMP"}

	assert.Equal(t, "ROWVERSION", MapType(dialect.SQLServer, token))
	assert.Equal(t, "RAW(8)", MapType(dialect.Oracle, token))
	assert.Equal(t, "BINARY(8)", MapType(dialect.MySQL, token))
	assert.Equal(t, "BYTEA", MapType(dialect.PostgreSQL, token))

	assert.Equal(t, "DATETIME2", MapType(dialect.SQLServer, semantic))
	assert.Equal(t, "TIMESTAMP", MapType(dialect.Oracle, semantic))
}

func TestMapTypeCanonicalSpellings(t *testing.T) {
	guid := col("UNIQUEIDENTIFIER", nil, nil, nil)
	xml := col("XML", nil, nil, nil)
	money := col("MONEY", nil, nil, nil)

	want := map[dialect.Dialect][3]string{
		dialect.SQLServer:  {"UNIQUEIDENTIFIER", "XML", "MONEY"},
		dialect.Oracle:     {"RAW(16)", "XMLTYPE", "NUMBER(19,4)"},
		dialect.MySQL:      {"CHAR(36)", "LONGTEXT", "DECIMAL(19,4)"},
		dialect.SQLite:     {"TEXT", "TEXT", "NUMERIC(19,4)"},
		dialect.Firebird:   {"CHAR(36)", "BLOB SUB_TYPE TEXT", "DECIMAL(18,4)"},
		dialect.PostgreSQL: {"UUID", "XML", "MONEY"},
	}
	for d, w := range want {
		assert.Equal(t, w[0], MapType(d, guid), "%s guid", d)
		assert.Equal(t, w[1], MapType(d, xml), "%s xml", d)
		assert.Equal(t, w[2], MapType(d, money), "%s money", d)
	}
}

func TestEveryDialectRendersEveryFamily(t *testing.T) {
	for d := range renderers {
		for f := range familyNames {
			if f == Unknown {
				continue
			}
			out := Render(d, Info{Family: f, Name: "X", Original: "X"})
			assert.NotEmpty(t, out, "%s has no spelling for %s", d, f)
			assert.NotEqual(t, "X", out, "%s falls through for %s", d, f)
		}
	}
}

func TestClassifyName(t *testing.T) {
	info := ClassifyName("decimal(10, 2)")
	assert.Equal(t, Decimal, info.Family)
	assert.Equal(t, "DECIMAL", info.Name)
	assert.Equal(t, 10, info.Precision)
	assert.Equal(t, 2, info.Scale)

	info = ClassifyName("int unsigned")
	assert.Equal(t, Int, info.Family)

	info = ClassifyName("timestamp(6) with time zone")
	assert.Equal(t, TimestampTZ, info.Family)

	info = ClassifyName("nvarchar(max)")
	assert.Equal(t, NVarChar, info.Family)
	assert.Equal(t, -1, info.Length)

	assert.True(t, NVarChar.IsNational())
	assert.True(t, Blob.IsBinary())
	assert.True(t, DateTime2.IsDateTime())
	assert.False(t, Int.IsString())
}

func TestClassifyBitField(t *testing.T) {
	info := Classify(col("BIT", schema.Int(16), nil, nil))
	assert.Equal(t, VarBinary, info.Family)
	assert.Equal(t, 2, info.Length)

	info = Classify(col("BIT", schema.Int(1), nil, nil))
	assert.Equal(t, Bool, info.Family)
}
