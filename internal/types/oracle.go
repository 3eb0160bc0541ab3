package types

func oracleType(info Info) string {
	switch info.Family {
	case Char:
		if info.Unbounded(2001) {
			return "CLOB"
		}
		return sized("CHAR", info, 1)
	case NChar:
		if info.Unbounded(1001) {
			return "NCLOB"
		}
		return sized("NCHAR", info, 1)
	case VarChar:
		if info.Unbounded(4001) {
			return "CLOB"
		}
		return sized("VARCHAR2", info, 1)
	case NVarChar:
		if info.Unbounded(2001) {
			return "NCLOB"
		}
		return sized("NVARCHAR2", info, 1)
	case Text, JSON:
		return "CLOB"
	case NText:
		return "NCLOB"
	case TinyInt:
		return "NUMBER(3)"
	case SmallInt:
		return "NUMBER(5)"
	case Int:
		return "NUMBER(10)"
	case BigInt:
		return "NUMBER(19)"
	case Number, Decimal:
		switch {
		case unconstrained(info):
			return "NUMBER"
		case !info.HasScale || info.Scale == 0:
			return withLength("NUMBER", info.Precision)
		}
		return decimal("NUMBER", info)
	case Float:
		return "BINARY_DOUBLE"
	case Real:
		return "BINARY_FLOAT"
	case Money:
		return "NUMBER(19,4)"
	case SmallMoney:
		return "NUMBER(10,4)"
	case Bool:
		return "NUMBER(1)"
	case Date, Time, DateTime:
		return "DATE"
	case DateTime2, Timestamp:
		return "TIMESTAMP"
	case TimestampTZ:
		return "TIMESTAMP WITH TIME ZONE"
	case Binary, VarBinary:
		if info.Unbounded(2001) {
			return "BLOB"
		}
		return sized("RAW", info, 1)
	case Blob:
		return "BLOB"
	case RowVersion:
		return "RAW(8)"
	case GUID:
		return "RAW(16)"
	case XML:
		return "XMLTYPE"
	}
	return ""
}
