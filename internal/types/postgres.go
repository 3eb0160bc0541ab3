package types

func postgresType(info Info) string {
	switch info.Family {
	case Char, NChar:
		if info.Unbounded(10485761) {
			return "TEXT"
		}
		return sized("CHAR", info, 1)
	case VarChar, NVarChar:
		if info.Unbounded(10485761) {
			return "TEXT"
		}
		return sized("VARCHAR", info, 1)
	case Text, NText:
		return "TEXT"
	case TinyInt, SmallInt:
		return "SMALLINT"
	case Int:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Number, Decimal:
		if unconstrained(info) {
			return "NUMERIC"
		}
		return decimal("NUMERIC", info)
	case Float:
		return "DOUBLE PRECISION"
	case Real:
		return "REAL"
	case Money, SmallMoney:
		return "MONEY"
	case Bool:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime, DateTime2, Timestamp:
		return "TIMESTAMP"
	case TimestampTZ:
		return "TIMESTAMPTZ"
	case Binary, VarBinary, Blob, RowVersion:
		return "BYTEA"
	case GUID:
		return "UUID"
	case XML:
		return "XML"
	case JSON:
		if info.Name == "JSONB" {
			return "JSONB"
		}
		return "JSON"
	}
	return ""
}
