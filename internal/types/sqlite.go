package types

// SQLite only has storage classes; the names below pick the right column affinity
// and keep declared lengths readable.
func sqliteType(info Info) string {
	switch info.Family {
	case Char, NChar, VarChar, NVarChar:
		if !info.HasLength || info.Length <= 0 {
			return "TEXT"
		}
		switch info.Family {
		case Char:
			return withLength("CHAR", info.Length)
		case NChar:
			return withLength("NCHAR", info.Length)
		case NVarChar:
			return withLength("NVARCHAR", info.Length)
		}
		return withLength("VARCHAR", info.Length)
	case Text, NText, XML, JSON, GUID:
		return "TEXT"
	case TinyInt, SmallInt, Int, BigInt, Bool:
		return "INTEGER"
	case Number, Decimal:
		if unconstrained(info) {
			return "NUMERIC"
		}
		return decimal("NUMERIC", info)
	case Float, Real:
		return "REAL"
	case Money, SmallMoney:
		return "NUMERIC(19,4)"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime, DateTime2, Timestamp, TimestampTZ:
		return "DATETIME"
	case Binary, VarBinary, Blob, RowVersion:
		return "BLOB"
	}
	return ""
}
