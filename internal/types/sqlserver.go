package types

func sqlServerType(info Info) string {
	switch info.Family {
	case Char:
		if info.Unbounded(8001) {
			return "VARCHAR(MAX)"
		}
		return sized("CHAR", info, 1)
	case NChar:
		if info.Unbounded(4001) {
			return "NVARCHAR(MAX)"
		}
		return sized("NCHAR", info, 1)
	case VarChar:
		if info.Unbounded(8001) {
			return "VARCHAR(MAX)"
		}
		return sized("VARCHAR", info, 1)
	case NVarChar:
		if info.Unbounded(4001) {
			return "NVARCHAR(MAX)"
		}
		return sized("NVARCHAR", info, 1)
	case Text:
		return "VARCHAR(MAX)"
	case NText, JSON:
		return "NVARCHAR(MAX)"
	case TinyInt:
		return "TINYINT"
	case SmallInt:
		return "SMALLINT"
	case Int:
		return "INT"
	case BigInt:
		return "BIGINT"
	case Number, Decimal:
		if unconstrained(info) {
			return "NUMERIC"
		}
		return decimal("DECIMAL", info)
	case Float:
		return "FLOAT"
	case Real:
		return "REAL"
	case Money:
		return "MONEY"
	case SmallMoney:
		return "SMALLMONEY"
	case Bool:
		return "BIT"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime:
		if info.Name == "SMALLDATETIME" {
			return "SMALLDATETIME"
		}
		return "DATETIME"
	case DateTime2, Timestamp:
		return "DATETIME2"
	case TimestampTZ:
		return "DATETIMEOFFSET"
	case Binary:
		if info.Unbounded(8001) {
			return "VARBINARY(MAX)"
		}
		return sized("BINARY", info, 1)
	case VarBinary:
		if info.Unbounded(8001) {
			return "VARBINARY(MAX)"
		}
		return sized("VARBINARY", info, 1)
	case Blob:
		return "VARBINARY(MAX)"
	case RowVersion:
		return "ROWVERSION"
	case GUID:
		return "UNIQUEIDENTIFIER"
	case XML:
		return "XML"
	}
	return ""
}
