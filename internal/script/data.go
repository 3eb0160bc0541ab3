package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/tordrt/schemascript/internal/ddl"
	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/literal"
	"github.com/tordrt/schemascript/internal/schema"
	"github.com/tordrt/schemascript/internal/statement"
)

// DataOptions configures a data script
type DataOptions struct {
	Options
	// IncludeIdentity writes identity values explicitly and resets the
	// generator afterwards. Without it identity columns are left out.
	IncludeIdentity bool
	// IncludeBlobs writes large binary columns.
	IncludeBlobs bool
	// MaxRows stops after that many rows. Zero writes all of them.
	MaxRows int
	// Schema is the snapshot the table belongs to. It names identity
	// sequences consistently with the create script. May be nil.
	Schema *schema.Schema
}

// DataScript renders one literal INSERT per row of t.
//
// Self-referencing foreign keys are suspended around the inserts so rows can
// arrive in any order. Row keys match column names ignoring case; a missing
// key inserts NULL.
func DataScript(ctx context.Context, t *schema.Table, rows []schema.Row, d dialect.Dialect, opts DataOptions) (string, error) {
	if t == nil {
		return "", ErrNilTable
	}
	s := opts.Schema
	if s == nil {
		s = &schema.Schema{Tables: []*schema.Table{t}}
	}
	w, err := opts.writer(d, s)
	if err != nil {
		return "", err
	}
	b, err := statement.New(d, statement.Options{IncludeSchema: opts.IncludeSchema, RawNames: opts.RawNames})
	if err != nil {
		return "", fmt.Errorf("failed to create %s statement builder: %w", d, err)
	}
	log := entry(opts.Options, d, t)

	sc := New(d, opts.BatchSeparator)
	for _, warning := range t.Validate(s) {
		warn(sc, log, warning)
	}

	selfRefs := t.SelfReferencingForeignKeys()
	if len(selfRefs) > 0 {
		if d == dialect.SQLite {
			sc.Add(ddl.DDL("PRAGMA foreign_keys = OFF"))
		} else {
			for _, fk := range selfRefs {
				sc.Add(w.DropConstraint(t, fk)...)
			}
		}
	}

	identity := opts.IncludeIdentity && t.IdentityColumn() != nil
	if identity && d == dialect.SQLServer {
		sc.Add(ddl.DDL("SET IDENTITY_INSERT %s ON", b.Table(t)))
	}

	cols := statement.InsertColumns(t, statement.InsertOptions{IncludeIdentity: opts.IncludeIdentity, IncludeBlobs: opts.IncludeBlobs})
	if len(cols) == 0 {
		sc.Add(ddl.Comment("%s has no insertable columns", t.Name))
		rows = nil
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES (", b.Table(t), w.Escaper().EscapeList(names))

	written := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("failed to build data script: %w", err)
		}
		if opts.MaxRows > 0 && written == opts.MaxRows {
			sc.Add(ddl.Comment("stopped after %d of %d rows", written, len(rows)))
			log.WithField("rows", len(rows)).Warnf("row limit %d reached", opts.MaxRows)
			break
		}
		values := make([]string, len(cols))
		for i, c := range cols {
			values[i] = literal.ToLiteral(d, lookup(row, c.Name), w.MapType(c))
		}
		sc.Add(ddl.Statement{Kind: ddl.KindDDL, Text: prefix + strings.Join(values, ", ") + ")"})
		written++
	}

	if identity {
		if d == dialect.SQLServer {
			sc.Add(ddl.DDL("SET IDENTITY_INSERT %s OFF", b.Table(t)))
		}
		sc.Add(w.WriteIdentityReset(t)...)
	}

	if len(selfRefs) > 0 {
		if d == dialect.SQLite {
			sc.Add(ddl.DDL("PRAGMA foreign_keys = ON"))
		} else {
			for _, fk := range selfRefs {
				sc.Add(w.AddConstraint(t, fk)...)
			}
		}
	}

	log.WithField("rows", written).Debug("data script built")
	return sc.String(), nil
}

// lookup finds the row value for a column, exact key first
func lookup(row schema.Row, column string) any {
	if v, ok := row[column]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return nil
}
