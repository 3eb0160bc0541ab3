package script

import (
	"regexp"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
)

var (
	setTerm = regexp.MustCompile(`(?i)^SET\s+TERM\s+(\S+)\s*(\S*)$`)
	// PL/SQL units run until a line holding only "/"
	plsqlUnit = regexp.MustCompile(`(?is)^\s*(CREATE\s+(OR\s+REPLACE\s+)?(TRIGGER|PROCEDURE|FUNCTION|PACKAGE|TYPE\s+BODY)|DECLARE|BEGIN)\b`)
)

// Split breaks a script into executable statements without terminators.
// Comments are dropped, quoted text is kept intact, and the dialect's batch
// conventions are honoured: GO lines on SqlServer, "/" after PL/SQL on
// Oracle and SET TERM on Firebird.
func Split(text string, d dialect.Dialect) []string {
	return SplitSeparator(text, d, d.BatchSeparator())
}

// SplitSeparator is Split with an explicit batch separator line
func SplitSeparator(text string, d dialect.Dialect, separator string) []string {
	s := &splitter{d: d, separator: separator, term: ";"}
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		s.line(line)
	}
	s.flush()
	return s.out
}

type splitter struct {
	d         dialect.Dialect
	separator string
	term      string

	cur          strings.Builder
	out          []string
	quote        byte
	blockComment bool
}

func (s *splitter) line(line string) {
	if s.quote == 0 && !s.blockComment && s.directive(strings.TrimSpace(line)) {
		return
	}

	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case s.blockComment:
			if strings.HasPrefix(line[i:], "*/") {
				s.blockComment = false
				i += 2
			} else {
				i++
			}
		case s.quote != 0:
			s.cur.WriteByte(c)
			i++
			if c == '\\' && s.quote != '`' && s.d == dialect.MySQL && i < len(line) {
				// backslash escape
				s.cur.WriteByte(line[i])
				i++
				continue
			}
			if c != s.quote {
				continue
			}
			if i < len(line) && line[i] == s.quote {
				// doubled quote
				s.cur.WriteByte(c)
				i++
			} else {
				s.quote = 0
			}
		case strings.HasPrefix(line[i:], "--"):
			i = len(line)
		case strings.HasPrefix(line[i:], "/*"):
			s.blockComment = true
			i += 2
		case c == '\'' || c == '"' || c == '`':
			s.quote = c
			s.cur.WriteByte(c)
			i++
		case c == '[' && s.d == dialect.SQLServer:
			s.quote = ']'
			s.cur.WriteByte(c)
			i++
		case strings.HasPrefix(line[i:], s.term) && !s.inPLSQL():
			s.flush()
			i += len(s.term)
		default:
			s.cur.WriteByte(c)
			i++
		}
	}
	s.cur.WriteByte('\n')
}

// directive handles whole-line batch markers and reports whether line was one
func (s *splitter) directive(line string) bool {
	switch {
	case line == "":
		return false
	case s.separator != "" && strings.EqualFold(line, s.separator):
		s.flush()
		return true
	case s.d == dialect.Oracle && line == "/":
		s.flush()
		return true
	}
	if strings.TrimSpace(s.cur.String()) != "" {
		return false
	}
	if m := setTerm.FindStringSubmatch(line); m != nil {
		next := m[1]
		if m[2] == "" {
			next = strings.TrimSuffix(next, s.term)
		}
		if next != "" {
			s.term = next
		}
		return true
	}
	return false
}

func (s *splitter) inPLSQL() bool {
	return s.d == dialect.Oracle && plsqlUnit.MatchString(s.cur.String())
}

func (s *splitter) flush() {
	if text := strings.TrimSpace(s.cur.String()); text != "" {
		s.out = append(s.out, text)
	}
	s.cur.Reset()
}
