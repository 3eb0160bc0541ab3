// Package script assembles dialect writers, the table orderer and the
// statement builder into complete SQL scripts.
package script

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tordrt/schemascript/internal/ddl"
	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

var (
	// ErrNilSchema is returned when a required schema snapshot is missing
	ErrNilSchema = errors.New("schema is nil")
	// ErrNilTable is returned when a data script has no table
	ErrNilTable = errors.New("table is nil")
)

// Options are shared by every script kind
type Options struct {
	// IncludeSchema qualifies table names with their owner.
	IncludeSchema bool
	// RawNames emits identifiers without quoting.
	RawNames bool
	// BatchSeparator overrides the dialect's separator line ("GO" on SqlServer).
	// On other dialects a non-empty value is written after each terminated statement.
	BatchSeparator string
	// Logger receives schema integrity warnings. Nil discards them.
	Logger logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (o Options) writer(d dialect.Dialect, s *schema.Schema) (ddl.Writer, error) {
	w, err := ddl.New(d, ddl.Options{IncludeSchema: o.IncludeSchema, RawNames: o.RawNames, Schema: s})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s writer: %w", d, err)
	}
	return w, nil
}

// Script collects statements and renders them with the dialect's terminators
type Script struct {
	d          dialect.Dialect
	separator  string
	statements []ddl.Statement
}

// New returns an empty script. An empty separator selects the dialect default.
func New(d dialect.Dialect, separator string) *Script {
	if separator == "" {
		separator = d.BatchSeparator()
	}
	return &Script{d: d, separator: separator}
}

// Add appends statements
func (s *Script) Add(stmts ...ddl.Statement) {
	s.statements = append(s.statements, stmts...)
}

// Statements returns the collected statements
func (s *Script) Statements() []ddl.Statement {
	return s.statements
}

// Len counts executable statements, leaving comments out
func (s *Script) Len() int {
	n := 0
	for _, stmt := range s.statements {
		if stmt.Kind != ddl.KindComment {
			n++
		}
	}
	return n
}

// String renders the script. SqlServer ends every statement with its batch
// separator line; Oracle ends PL/SQL blocks with "/"; Firebird wraps PSQL
// blocks in SET TERM; everything else ends with ";".
func (s *Script) String() string {
	var sb strings.Builder
	for _, stmt := range s.statements {
		sb.WriteString(s.render(stmt))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (s *Script) render(stmt ddl.Statement) string {
	text := strings.TrimRight(stmt.Text, " \t\n")
	if stmt.Kind == ddl.KindComment {
		return text
	}

	if s.d == dialect.SQLServer {
		if s.separator == "" {
			return terminate(text)
		}
		return text + "\n" + s.separator
	}

	var out string
	switch {
	case stmt.Kind == ddl.KindBlock && s.d == dialect.Oracle:
		out = text + "\n/"
	case stmt.Kind == ddl.KindBlock && s.d == dialect.Firebird:
		out = "SET TERM ^ ;\n" + text + "^\nSET TERM ; ^"
	default:
		out = terminate(text)
	}
	if s.separator != "" {
		out += "\n" + s.separator
	}
	return out
}

func terminate(text string) string {
	if strings.HasSuffix(text, ";") {
		return text
	}
	return text + ";"
}

// entry returns the logger with dialect and table fields
func entry(opts Options, d dialect.Dialect, t *schema.Table) logrus.FieldLogger {
	log := opts.logger().WithField("dialect", d)
	if t != nil {
		log = log.WithField("table", t.Name)
	}
	return log
}

// warn records an integrity problem as a TODO comment and a log line
func warn(sc *Script, log logrus.FieldLogger, w schema.Warning) {
	sc.Add(ddl.Comment("TODO: %s", w))
	log.WithFields(logrus.Fields{"table": w.Table, "column": w.Column}).Warn(w.Message)
}
