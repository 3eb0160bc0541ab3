package types

// mysqlNative lists text and blob spellings MySQL keeps as-is
var mysqlNative = map[string]bool{
	"TINYTEXT": true, "TEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true,
	"TINYBLOB": true, "BLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
}

func mySQLType(info Info) string {
	switch info.Family {
	case Char, NChar:
		if info.Unbounded(256) {
			return "LONGTEXT"
		}
		if info.Family == NChar {
			return sized("NCHAR", info, 1)
		}
		return sized("CHAR", info, 1)
	case VarChar, NVarChar:
		if info.Unbounded(65536) {
			return "LONGTEXT"
		}
		if info.Family == NVarChar {
			return sized("NVARCHAR", info, 1)
		}
		return sized("VARCHAR", info, 1)
	case Text, NText:
		if mysqlNative[info.Name] {
			return info.Name
		}
		return "LONGTEXT"
	case XML:
		return "LONGTEXT"
	case JSON:
		return "JSON"
	case TinyInt:
		return "TINYINT"
	case SmallInt:
		return "SMALLINT"
	case Int:
		if info.Name == "MEDIUMINT" {
			return "MEDIUMINT"
		}
		return "INT"
	case BigInt:
		return "BIGINT"
	case Number, Decimal:
		if unconstrained(info) {
			return "NUMERIC"
		}
		return decimal("DECIMAL", info)
	case Float:
		return "DOUBLE"
	case Real:
		return "FLOAT"
	case Money:
		return "DECIMAL(19,4)"
	case SmallMoney:
		return "DECIMAL(10,4)"
	case Bool:
		return "TINYINT(1)"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime:
		return "DATETIME"
	case DateTime2, Timestamp, TimestampTZ:
		return "DATETIME(6)"
	case Binary:
		if info.Unbounded(256) {
			return "LONGBLOB"
		}
		return sized("BINARY", info, 1)
	case VarBinary:
		if info.Unbounded(65536) {
			return "LONGBLOB"
		}
		return sized("VARBINARY", info, 1)
	case Blob:
		if mysqlNative[info.Name] {
			return info.Name
		}
		return "LONGBLOB"
	case RowVersion:
		return "BINARY(8)"
	case GUID:
		return "CHAR(36)"
	}
	return ""
}
