package types

func firebirdType(info Info) string {
	switch info.Family {
	case Char, NChar:
		if info.Unbounded(32768) {
			return "BLOB SUB_TYPE TEXT"
		}
		out := sized("CHAR", info, 1)
		if info.Family == NChar {
			out += " CHARACTER SET UTF8"
		}
		return out
	case VarChar, NVarChar:
		if info.Unbounded(32766) {
			return "BLOB SUB_TYPE TEXT"
		}
		out := sized("VARCHAR", info, 1)
		if info.Family == NVarChar {
			out += " CHARACTER SET UTF8"
		}
		return out
	case Text, NText, XML, JSON:
		return "BLOB SUB_TYPE TEXT"
	case TinyInt, SmallInt, Bool:
		return "SMALLINT"
	case Int:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Number, Decimal:
		if unconstrained(info) {
			return "NUMERIC"
		}
		return decimal("DECIMAL", info)
	case Float:
		return "DOUBLE PRECISION"
	case Real:
		return "FLOAT"
	case Money, SmallMoney:
		return "DECIMAL(18,4)"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime, DateTime2, Timestamp, TimestampTZ:
		return "TIMESTAMP"
	case Binary:
		if info.Unbounded(32768) {
			return "BLOB SUB_TYPE BINARY"
		}
		return sized("CHAR", info, 1) + " CHARACTER SET OCTETS"
	case VarBinary:
		if info.Unbounded(32766) {
			return "BLOB SUB_TYPE BINARY"
		}
		return sized("VARCHAR", info, 1) + " CHARACTER SET OCTETS"
	case Blob:
		return "BLOB SUB_TYPE BINARY"
	case RowVersion:
		return "CHAR(8) CHARACTER SET OCTETS"
	case GUID:
		return "CHAR(36)"
	}
	return ""
}
