package dialect

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
)

// Escaper quotes identifiers for one dialect.
// When Raw is set names are emitted exactly as given.
type Escaper struct {
	Dialect Dialect
	Raw     bool
}

// NewEscaper returns an escaper for the dialect
func NewEscaper(d Dialect, escapeNames bool) Escaper {
	return Escaper{Dialect: d, Raw: !escapeNames}
}

// Escape quotes a single identifier with the dialect's delimiter.
// Embedded closing delimiters are doubled.
func (e Escaper) Escape(name string) string {
	if e.Raw || name == "" {
		return name
	}

	switch e.Dialect {
	case SQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	case MySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case PostgreSQL:
		return pgx.Identifier{name}.Sanitize()
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// Qualify escapes owner.name, dropping the owner on dialects without schemas
func (e Escaper) Qualify(owner, name string) string {
	if owner == "" || !e.Dialect.SupportsSchemas() {
		return e.Escape(name)
	}
	return e.Escape(owner) + "." + e.Escape(name)
}

// EscapeList escapes and comma-joins names
func (e Escaper) EscapeList(names []string) string {
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = e.Escape(n)
	}
	return strings.Join(escaped, ", ")
}

// MaxNameLength returns the dialect's identifier length limit
func (e Escaper) MaxNameLength() int {
	return e.Dialect.MaxNameLength()
}

// ShortenName fits a generated name into the dialect's length limit.
// Long names keep a prefix and get an 8 hex digit FNV-32a hash of the full name,
// so distinct long names stay distinct and the result is stable between runs.
func (e Escaper) ShortenName(name string) string {
	return ShortenName(name, e.MaxNameLength())
}

// ShortenName truncates name to max bytes using the hash suffix scheme
func ShortenName(name string, max int) string {
	if len(name) <= max {
		return name
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	suffix := fmt.Sprintf("_%08x", h.Sum32())

	keep := max - len(suffix)
	if keep <= 0 {
		return suffix[len(suffix)-max:]
	}
	for keep > 0 && !utf8.RuneStart(name[keep]) {
		keep--
	}
	return name[:keep] + suffix
}
