package literal

import (
	"time"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/types"
)

const (
	isoDate      = "2006-01-02"
	isoTime      = "15:04:05"
	isoSeconds   = "2006-01-02 15:04:05"
	isoMicros    = "2006-01-02 15:04:05.000000"
	isoMillis    = "2006-01-02 15:04:05.000"
	offsetLayout = "-07:00"
)

// dateTime renders a time in the shape the hinted column type expects.
// Without a date/time hint the value is treated as a full timestamp.
func dateTime(d dialect.Dialect, t time.Time, hint types.Info) string {
	switch d {
	case dialect.SQLServer:
		return sqlServerDateTime(t, hint)
	case dialect.Oracle:
		return oracleDateTime(t, hint)
	case dialect.PostgreSQL:
		return postgresDateTime(t, hint)
	case dialect.MySQL:
		switch hint.Family {
		case types.Date:
			return quote(t.Format(isoDate))
		case types.Time:
			return quote(t.Format(isoTime))
		case types.DateTime:
			return quote(t.Format(isoSeconds))
		}
		return quote(t.Format(isoMicros))
	case dialect.Firebird:
		switch hint.Family {
		case types.Date:
			return quote(t.Format(isoDate))
		case types.Time:
			return quote(t.Format(isoTime))
		}
		return quote(t.Format("2006-01-02 15:04:05.0000"))
	default:
		switch hint.Family {
		case types.Date:
			return quote(t.Format(isoDate))
		case types.Time:
			return quote(t.Format(isoTime))
		}
		return quote(t.Format(isoMillis))
	}
}

func sqlServerDateTime(t time.Time, hint types.Info) string {
	switch hint.Family {
	case types.Date:
		return quote(t.Format(isoDate))
	case types.Time:
		return quote(t.Format("15:04:05.0000000"))
	case types.DateTime:
		if hint.Name == "SMALLDATETIME" {
			return quote(t.Format("2006-01-02T15:04:05"))
		}
		return quote(t.Format("2006-01-02T15:04:05.000"))
	case types.TimestampTZ:
		return quote(t.Format("2006-01-02T15:04:05.0000000" + offsetLayout))
	}
	return quote(t.Format("2006-01-02T15:04:05.0000000"))
}

// Oracle DATE carries a time of day with second precision
func oracleDateTime(t time.Time, hint types.Info) string {
	switch hint.Family {
	case types.Date, types.Time, types.DateTime:
		return "TO_DATE(" + quote(t.Format(isoSeconds)) + ", 'YYYY-MM-DD HH24:MI:SS')"
	case types.TimestampTZ:
		return "TO_TIMESTAMP_TZ(" + quote(t.Format(isoMicros+" "+offsetLayout)) + ", 'YYYY-MM-DD HH24:MI:SS.FF6 TZH:TZM')"
	}
	return "TO_TIMESTAMP(" + quote(t.Format(isoMicros)) + ", 'YYYY-MM-DD HH24:MI:SS.FF6')"
}

func postgresDateTime(t time.Time, hint types.Info) string {
	switch hint.Family {
	case types.Date:
		return "to_date(" + quote(t.Format(isoDate)) + ", 'YYYY-MM-DD')"
	case types.Time:
		return quote(t.Format("15:04:05.000000")) + "::time"
	case types.TimestampTZ:
		return "to_timestamp(" + quote(t.Format(isoMicros+" "+offsetLayout)) + ", 'YYYY-MM-DD HH24:MI:SS.US TZH:TZM')"
	}
	return "to_timestamp(" + quote(t.Format(isoMicros)) + ", 'YYYY-MM-DD HH24:MI:SS.US')::timestamp"
}

func quote(s string) string {
	return "'" + s + "'"
}
