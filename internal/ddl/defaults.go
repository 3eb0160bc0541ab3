package ddl

import (
	"regexp"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
)

type defaultKind int

const (
	defaultNow defaultKind = iota + 1
	defaultUTCNow
	defaultToday
	defaultNewGUID
)

// knownDefaults maps vendor default functions, lower-cased and without spaces, to their meaning
var knownDefaults = map[string]defaultKind{
	"getdate()":           defaultNow,
	"sysdatetime()":       defaultNow,
	"current_timestamp":   defaultNow,
	"current_timestamp()": defaultNow,
	"now()":               defaultNow,
	"sysdate":             defaultNow,
	"systimestamp":        defaultNow,
	"localtimestamp":      defaultNow,
	"'now'":               defaultNow,
	"datetime('now')":     defaultNow,
	"getutcdate()":        defaultUTCNow,
	"sysutcdatetime()":    defaultUTCNow,
	"utc_timestamp()":     defaultUTCNow,
	"current_date":        defaultToday,
	"curdate()":           defaultToday,
	"newid()":             defaultNewGUID,
	"newsequentialid()":   defaultNewGUID,
	"sys_guid()":          defaultNewGUID,
	"uuid()":              defaultNewGUID,
	"gen_random_uuid()":   defaultNewGUID,
	"uuid_generate_v4()":  defaultNewGUID,
	"gen_uuid()":          defaultNewGUID,
}

var defaultSpellings = map[dialect.Dialect]map[defaultKind]string{
	dialect.SQLServer: {
		defaultNow: "GETDATE()", defaultUTCNow: "GETUTCDATE()",
		defaultToday: "CAST(GETDATE() AS DATE)", defaultNewGUID: "NEWID()",
	},
	dialect.Oracle: {
		defaultNow: "SYSDATE", defaultUTCNow: "SYS_EXTRACT_UTC(SYSTIMESTAMP)",
		defaultToday: "TRUNC(SYSDATE)", defaultNewGUID: "SYS_GUID()",
	},
	dialect.MySQL: {
		defaultNow: "CURRENT_TIMESTAMP", defaultUTCNow: "(UTC_TIMESTAMP())",
		defaultToday: "(CURRENT_DATE)", defaultNewGUID: "(UUID())",
	},
	dialect.SQLite: {
		defaultNow: "CURRENT_TIMESTAMP", defaultUTCNow: "CURRENT_TIMESTAMP",
		defaultToday: "CURRENT_DATE", defaultNewGUID: "(lower(hex(randomblob(16))))",
	},
	dialect.Firebird: {
		defaultNow: "CURRENT_TIMESTAMP", defaultUTCNow: "CURRENT_TIMESTAMP",
		defaultToday: "CURRENT_DATE", defaultNewGUID: "GEN_UUID()",
	},
	dialect.PostgreSQL: {
		defaultNow: "CURRENT_TIMESTAMP", defaultUTCNow: "(now() AT TIME ZONE 'utc')",
		defaultToday: "CURRENT_DATE", defaultNewGUID: "gen_random_uuid()",
	},
}

// postgres appends casts to literal defaults: 'abc'::character varying
var castSuffix = regexp.MustCompile(`^('(?:[^']|'')*'|-?\d+(?:\.\d+)?)::[\w\s]+(?:\[\])?$`)

// sequence defaults belong to identity columns and cannot be carried across dialects
var nextvalDefault = regexp.MustCompile(`(?i)^nextval\(`)

// TranslateDefault rewrites a column default expression for the dialect.
// Known date/time and GUID functions are mapped, SqlServer's wrapping
// parentheses and PostgreSQL literal casts are removed, and anything else
// passes through unchanged.
func TranslateDefault(d dialect.Dialect, expr string) string {
	expr = stripParens(strings.TrimSpace(expr))
	if expr == "" || strings.EqualFold(expr, "NULL") {
		return ""
	}
	if nextvalDefault.MatchString(expr) {
		return ""
	}
	if m := castSuffix.FindStringSubmatch(expr); m != nil {
		expr = m[1]
	}

	key := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if kind, ok := knownDefaults[key]; ok {
		if spelled, ok := defaultSpellings[d][kind]; ok {
			return spelled
		}
	}

	switch strings.ToLower(expr) {
	case "true", "false":
		if d != dialect.PostgreSQL {
			if strings.EqualFold(expr, "true") {
				return "1"
			}
			return "0"
		}
		return strings.ToUpper(expr)
	}
	if (d == dialect.SQLite || d == dialect.MySQL) && strings.Contains(expr, "(") && !strings.HasPrefix(expr, "'") {
		return "(" + expr + ")"
	}
	return expr
}

// stripParens removes redundant outer parentheses: ((0)) becomes 0
func stripParens(expr string) string {
	for enclosed(expr) {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}
