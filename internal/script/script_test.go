package script

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tordrt/schemascript/internal/ddl"
	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

func TestScriptRender(t *testing.T) {
	stmts := []ddl.Statement{
		ddl.Comment("start"),
		ddl.DDL("DROP TABLE t"),
		ddl.Block("BEGIN\n  NULL;\nEND;"),
	}

	tests := []struct {
		name      string
		dialect   dialect.Dialect
		separator string
		want      string
	}{
		{
			name:    "sqlserver batches",
			dialect: dialect.SQLServer,
			want:    "-- start\nDROP TABLE t\nGO\nBEGIN\n  NULL;\nEND;\nGO\n",
		},
		{
			name:    "oracle slash after blocks",
			dialect: dialect.Oracle,
			want:    "-- start\nDROP TABLE t;\nBEGIN\n  NULL;\nEND;\n/\n",
		},
		{
			name:    "firebird set term",
			dialect: dialect.Firebird,
			want:    "-- start\nDROP TABLE t;\nSET TERM ^ ;\nBEGIN\n  NULL;\nEND;^\nSET TERM ; ^\n",
		},
		{
			name:    "postgres semicolons",
			dialect: dialect.PostgreSQL,
			want:    "-- start\nDROP TABLE t;\nBEGIN\n  NULL;\nEND;\n",
		},
		{
			name:      "custom separator",
			dialect:   dialect.MySQL,
			separator: "-- next",
			want:      "-- start\nDROP TABLE t;\n-- next\nBEGIN\n  NULL;\nEND;\n-- next\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := New(tt.dialect, tt.separator)
			sc.Add(stmts...)
			assert.Equal(t, tt.want, sc.String())
			assert.Equal(t, 2, sc.Len())
			assert.Len(t, sc.Statements(), 3)
		})
	}
}

func TestWarnAddsTodoComment(t *testing.T) {
	logger, hook := newTestLogger()
	sc := New(dialect.PostgreSQL, "")

	warn(sc, logger, schema.Warning{Table: "Audit", Message: "must add a primary key"})

	assert.Equal(t, "-- TODO: Audit: must add a primary key\n", sc.String())
	if assert.Len(t, hook.Entries, 1) {
		assert.Equal(t, "must add a primary key", hook.LastEntry().Message)
		assert.Equal(t, "Audit", hook.LastEntry().Data["table"])
	}
}
