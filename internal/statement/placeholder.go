package statement

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tordrt/schemascript/internal/dialect"
)

// Placeholder renders bind parameters for one driver family.
// Named placeholders are Char followed by the parameter name; numeric ones
// are Char followed by a 1-based counter; otherwise Char alone is used.
type Placeholder struct {
	Char    string
	Named   bool
	Numeric bool
}

// PlaceholderFor returns the bind style of the dialect's Go drivers
func PlaceholderFor(d dialect.Dialect) Placeholder {
	switch d {
	case dialect.SQLServer:
		return Placeholder{Char: "@", Named: true}
	case dialect.Oracle:
		return Placeholder{Char: ":", Named: true}
	case dialect.PostgreSQL:
		return Placeholder{Char: "$", Numeric: true}
	default:
		return Placeholder{Char: "?"}
	}
}

// render returns the placeholder for the n-th (1-based) parameter called name
func (p Placeholder) render(n int, name string) string {
	switch {
	case p.Named:
		return p.Char + name
	case p.Numeric:
		return p.Char + strconv.Itoa(n)
	}
	return p.Char
}

// paramName turns a column name into a bind-safe identifier: anything that is
// not a letter, digit or underscore becomes an underscore, and a leading digit
// gets a "p" prefix. "Order Date" becomes "Order_Date".
func paramName(column string) string {
	var sb strings.Builder
	for _, r := range column {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	name := sb.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "p" + name
	}
	return name
}
