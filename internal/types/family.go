// Package types translates canonical column types into dialect type strings.
package types

import (
	"strconv"
	"strings"

	"github.com/tordrt/schemascript/internal/schema"
)

// Family groups canonical type names that render the same way
type Family int

const (
	Unknown Family = iota
	Char
	NChar
	VarChar
	NVarChar
	Text
	NText
	TinyInt
	SmallInt
	Int
	BigInt
	Number // generic NUMBER, precision decides the integer bucket
	Decimal
	Float
	Real
	Money
	SmallMoney
	Bool
	Date
	Time
	DateTime
	DateTime2
	Timestamp
	TimestampTZ
	Binary
	VarBinary
	Blob
	RowVersion
	GUID
	XML
	JSON
)

// ProviderRowVersion tags a TIMESTAMP column that is really a SqlServer
// optimistic-concurrency token rather than a point in time.
const ProviderRowVersion = "rowversion"

var familyNames = map[Family]string{
	Unknown: "unknown", Char: "char", NChar: "nchar", VarChar: "varchar", NVarChar: "nvarchar",
	Text: "text", NText: "ntext", TinyInt: "tinyint", SmallInt: "smallint", Int: "int",
	BigInt: "bigint", Number: "number", Decimal: "decimal", Float: "float", Real: "real",
	Money: "money", SmallMoney: "smallmoney", Bool: "bool", Date: "date", Time: "time",
	DateTime: "datetime", DateTime2: "datetime2", Timestamp: "timestamp", TimestampTZ: "timestamptz",
	Binary: "binary", VarBinary: "varbinary", Blob: "blob", RowVersion: "rowversion",
	GUID: "guid", XML: "xml", JSON: "json",
}

func (f Family) String() string {
	return familyNames[f]
}

// canonical maps every known vendor spelling to its family. Built once, never mutated.
var canonical = map[string]Family{
	"CHAR": Char, "CHARACTER": Char, "BPCHAR": Char,
	"NCHAR": NChar, "NATIONAL CHAR": NChar, "NATIONAL CHARACTER": NChar,
	"VARCHAR": VarChar, "VARCHAR2": VarChar, "CHARACTER VARYING": VarChar, "STRING": VarChar,
	"NVARCHAR": NVarChar, "NVARCHAR2": NVarChar, "NATIONAL CHARACTER VARYING": NVarChar, "NATIONAL VARCHAR": NVarChar,
	"TEXT": Text, "CLOB": Text, "LONG": Text, "TINYTEXT": Text, "MEDIUMTEXT": Text, "LONGTEXT": Text,
	"BLOB SUB_TYPE TEXT": Text, "BLOB SUB_TYPE 1": Text, "CITEXT": Text,
	"NTEXT": NText, "NCLOB": NText,
	"TINYINT": TinyInt, "INT1": TinyInt,
	"SMALLINT": SmallInt, "INT2": SmallInt, "SMALLSERIAL": SmallInt,
	"INT": Int, "INTEGER": Int, "INT4": Int, "MEDIUMINT": Int, "SERIAL": Int,
	"BIGINT": BigInt, "INT8": BigInt, "BIGSERIAL": BigInt, "INT64": BigInt,
	"NUMBER": Number, "NUMERIC": Decimal, "DECIMAL": Decimal, "DEC": Decimal,
	"FLOAT": Float, "DOUBLE": Float, "DOUBLE PRECISION": Float, "FLOAT8": Float, "BINARY_DOUBLE": Float,
	"REAL": Real, "FLOAT4": Real, "BINARY_FLOAT": Real,
	"MONEY": Money, "SMALLMONEY": SmallMoney,
	"BIT": Bool, "BOOL": Bool, "BOOLEAN": Bool,
	"DATE": Date,
	"TIME": Time, "TIMETZ": Time, "TIME WITH TIME ZONE": Time, "TIME WITHOUT TIME ZONE": Time,
	"DATETIME": DateTime, "SMALLDATETIME": DateTime,
	"DATETIME2": DateTime2,
	"TIMESTAMP": Timestamp, "TIMESTAMP WITHOUT TIME ZONE": Timestamp,
	"DATETIMEOFFSET": TimestampTZ, "TIMESTAMPTZ": TimestampTZ, "TIMESTAMP WITH TIME ZONE": TimestampTZ,
	"TIMESTAMP WITH LOCAL TIME ZONE": TimestampTZ, "BINARY": Binary, "VARBINARY": VarBinary, "RAW": VarBinary, "BINARY VARYING": VarBinary,
	"BLOB": Blob, "BYTEA": Blob, "IMAGE": Blob, "LONG RAW": Blob, "TINYBLOB": Blob, "MEDIUMBLOB": Blob,
	"LONGBLOB": Blob, "BLOB SUB_TYPE BINARY": Blob, "BLOB SUB_TYPE 0": Blob,
	"ROWVERSION": RowVersion, "UNIQUEIDENTIFIER": GUID, "UUID": GUID, "GUID": GUID,
	"XML": XML, "XMLTYPE": XML, "SYS.XMLTYPE": XML,
	"JSON": JSON, "JSONB": JSON,
}

// Info is a classified column type with its size arguments resolved
type Info struct {
	Family Family
	// Name is the normalized canonical name without arguments ("NVARCHAR").
	Name string
	// Original is the type text as given, trimmed.
	Original  string
	Length    int
	Precision int
	Scale     int

	HasLength    bool
	HasPrecision bool
	HasScale     bool
}

// Unbounded reports whether the length means "no limit" for a dialect whose
// first unrepresentable length is maxFinite.
func (i Info) Unbounded(maxFinite int) bool {
	if !i.HasLength {
		return true
	}
	return i.Length == -1 || i.Length >= maxFinite
}

// Classify resolves the family and size arguments of a column.
// Arguments embedded in the type text ("VARCHAR(50)") fill sizes the column leaves unset.
func Classify(col *schema.Column) Info {
	if col == nil {
		return Info{}
	}
	info := ClassifyName(col.DbDataType)

	if v, ok := schema.IntValue(col.Length); ok {
		info.Length, info.HasLength = v, true
	}
	if v, ok := schema.IntValue(col.Precision); ok {
		info.Precision, info.HasPrecision = v, true
	}
	if v, ok := schema.IntValue(col.Scale); ok {
		info.Scale, info.HasScale = v, true
	}

	if info.Family == Timestamp && strings.EqualFold(col.ProviderType, ProviderRowVersion) {
		info.Family = RowVersion
	}
	// MySQL BIT(n) is a bit field, not a flag
	if info.Family == Bool && info.Name == "BIT" && info.HasLength && info.Length > 1 {
		info.Family = VarBinary
		info.Length = (info.Length + 7) / 8
	}
	return info
}

// ClassifyName classifies a bare type name such as "nvarchar(max)" or "NUMBER(10,2)"
func ClassifyName(typeName string) Info {
	original := strings.TrimSpace(typeName)
	info := Info{Original: original}
	if original == "" {
		return info
	}

	name := strings.ToUpper(original)
	if open := strings.Index(name, "("); open >= 0 {
		if end := strings.Index(name[open:], ")"); end > 0 {
			args := name[open+1 : open+end]
			name = strings.TrimSpace(name[:open] + " " + name[open+end+1:])
			info.parseArgs(args)
		}
	}
	name = strings.TrimSuffix(name, " UNSIGNED")
	name = strings.Join(strings.Fields(name), " ")
	info.Name = name
	info.Family = canonical[name]
	return info
}

func (i *Info) parseArgs(args string) {
	parts := strings.Split(args, ",")
	first := strings.TrimSpace(parts[0])
	if first == "MAX" {
		i.Length, i.HasLength = -1, true
		return
	}
	n, err := strconv.Atoi(first)
	if err != nil {
		return
	}
	// a single argument is a length for character/binary types and a precision otherwise;
	// both are filled so each renderer can pick the one it needs
	i.Length, i.HasLength = n, true
	i.Precision, i.HasPrecision = n, true
	if len(parts) > 1 {
		if s, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			i.Scale, i.HasScale = s, true
		}
	}
}

// IsString reports whether the family holds character data
func (f Family) IsString() bool {
	switch f {
	case Char, NChar, VarChar, NVarChar, Text, NText, XML, JSON:
		return true
	}
	return false
}

// IsNational reports whether the family holds Unicode character data
func (f Family) IsNational() bool {
	return f == NChar || f == NVarChar || f == NText
}

// IsBinary reports whether the family holds raw bytes
func (f Family) IsBinary() bool {
	switch f {
	case Binary, VarBinary, Blob, RowVersion:
		return true
	}
	return false
}

// IsLarge reports whether values of this type are LOBs that data scripts may skip
func (i Info) IsLarge() bool {
	switch i.Family {
	case Blob:
		return true
	case VarBinary:
		return !i.HasLength || i.Length == -1
	}
	return false
}

// IsDateTime reports whether the family holds a date, time or both
func (f Family) IsDateTime() bool {
	switch f {
	case Date, Time, DateTime, DateTime2, Timestamp, TimestampTZ:
		return true
	}
	return false
}

// IsInteger reports whether the family is a whole-number type
func (f Family) IsInteger() bool {
	switch f {
	case TinyInt, SmallInt, Int, BigInt:
		return true
	}
	return false
}

// IntegerBucket narrows a generic NUMBER(p,0) to the smallest integer family
// that holds p digits. ok is false when the number keeps a fractional part or
// is too wide for BIGINT.
func IntegerBucket(i Info) (Family, bool) {
	if !i.HasPrecision || (i.HasScale && i.Scale != 0) {
		return Unknown, false
	}
	switch {
	case i.Precision <= 0:
		return Unknown, false
	case i.Precision <= 4:
		return SmallInt, true
	case i.Precision <= 9:
		return Int, true
	case i.Precision <= 18:
		return BigInt, true
	}
	return Unknown, false
}
