package ddl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/schemascript/internal/dialect"
	"github.com/tordrt/schemascript/internal/schema"
)

// IdentityState is how a table's autonumber column is realized in the target dialect
type IdentityState int

const (
	NoIdentity IdentityState = iota
	// NativeIdentity uses the dialect's own identity/autoincrement syntax.
	NativeIdentity
	// EmulatedViaSequenceTrigger creates a sequence and a BEFORE INSERT trigger.
	EmulatedViaSequenceTrigger
	// ExistingTriggerDetected means the table already has a trigger filling the column.
	ExistingTriggerDetected
)

func (s IdentityState) String() string {
	switch s {
	case NativeIdentity:
		return "native"
	case EmulatedViaSequenceTrigger:
		return "sequence+trigger"
	case ExistingTriggerDetected:
		return "existing trigger"
	default:
		return "none"
	}
}

// IdentityPlan is the identity decision for one table
type IdentityPlan struct {
	State  IdentityState
	Column *schema.Column

	// SequenceName and TriggerName are the shortened, unique names of new objects
	// when State is EmulatedViaSequenceTrigger.
	SequenceName string
	TriggerName  string

	// Trigger is the detected trigger and SequenceRef the sequence name its body
	// draws from, when State is ExistingTriggerDetected. ExistingSequence is nil
	// when that name does not resolve in the schema.
	Trigger          *schema.Trigger
	SequenceRef      string
	ExistingSequence *schema.Sequence
}

// PlanIdentity decides how the table's identity column is produced.
// Trigger detection runs before any new name is chosen.
func PlanIdentity(d dialect.Dialect, s *schema.Schema, t *schema.Table) IdentityPlan {
	col := t.IdentityColumn()
	if col == nil {
		return IdentityPlan{State: NoIdentity}
	}
	if d.NativeIdentity() {
		return IdentityPlan{State: NativeIdentity, Column: col}
	}

	if trigger, seq, ok := DetectIdentityTrigger(t, col.Name); ok {
		return IdentityPlan{
			State:            ExistingTriggerDetected,
			Column:           col,
			Trigger:          trigger,
			SequenceRef:      seq,
			ExistingSequence: s.FindSequence(seq),
		}
	}

	limit := d.MaxNameLength()
	return IdentityPlan{
		State:        EmulatedViaSequenceTrigger,
		Column:       col,
		SequenceName: uniqueName(t.Name+"_SEQ", limit, s.HasSequence),
		TriggerName:  uniqueName(t.Name+"_INS_TRG", limit, s.HasTrigger),
	}
}

// uniqueName appends 1, 2, ... until the shortened name is not taken
func uniqueName(base string, limit int, taken func(string) bool) string {
	for i := 0; ; i++ {
		candidate := base
		if i > 0 {
			candidate += strconv.Itoa(i)
		}
		candidate = dialect.ShortenName(candidate, limit)
		if !taken(candidate) {
			return candidate
		}
	}
}

var (
	// SELECT "SEQ".NEXTVAL INTO :NEW."ID" FROM DUAL
	oracleSelectInto = regexp.MustCompile(`(?is)([\w$#".]+)\s*\.\s*NEXTVAL\s+INTO\s+:NEW\s*\.\s*"?([\w$#]+)"?`)
	// :NEW."ID" := "SEQ".NEXTVAL
	oracleAssign = regexp.MustCompile(`(?is):NEW\s*\.\s*"?([\w$#]+)"?\s*:=\s*([\w$#".]+)\s*\.\s*NEXTVAL`)
	// NEW."ID" = NEXT VALUE FOR "SEQ" or NEW.ID = GEN_ID(SEQ, 1)
	firebirdAssign = regexp.MustCompile(`(?is)NEW\s*\.\s*"?([\w$]+)"?\s*=\s*(?:NEXT\s+VALUE\s+FOR\s+([\w$"]+)|GEN_ID\s*\(\s*([\w$"]+)\s*,)`)
)

// DetectIdentityTrigger looks for a trigger on t that assigns a sequence value
// to column. It is a text heuristic: triggers written in another style are
// missed, and a body that merely contains the pattern (in a comment, say) is
// reported as a match.
func DetectIdentityTrigger(t *schema.Table, column string) (*schema.Trigger, string, bool) {
	for _, tr := range t.Triggers {
		if seq, ok := matchIdentityBody(tr.TriggerBody, column); ok {
			return tr, seq, true
		}
	}
	return nil, "", false
}

func matchIdentityBody(body, column string) (string, bool) {
	for _, m := range oracleSelectInto.FindAllStringSubmatch(body, -1) {
		if strings.EqualFold(m[2], column) {
			return cleanSequenceName(m[1]), true
		}
	}
	for _, m := range oracleAssign.FindAllStringSubmatch(body, -1) {
		if strings.EqualFold(m[1], column) {
			return cleanSequenceName(m[2]), true
		}
	}
	for _, m := range firebirdAssign.FindAllStringSubmatch(body, -1) {
		if strings.EqualFold(m[1], column) {
			seq := m[2]
			if seq == "" {
				seq = m[3]
			}
			return cleanSequenceName(seq), true
		}
	}
	return "", false
}

// cleanSequenceName drops quotes and any owner prefix
func cleanSequenceName(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// identitySequence returns the escaped sequence behind an emulated identity
func identitySequence(b *base, t *schema.Table) (string, *schema.Column, bool) {
	plan := PlanIdentity(b.d, b.opts.Schema, t)
	switch plan.State {
	case EmulatedViaSequenceTrigger:
		return b.quote(plan.SequenceName), plan.Column, true
	case ExistingTriggerDetected:
		if plan.ExistingSequence != nil {
			return b.objectName(plan.ExistingSequence.Name), plan.Column, true
		}
	}
	return "", plan.Column, false
}

func (w *oracleWriter) WriteIdentityReset(t *schema.Table) []Statement {
	seq, col, ok := identitySequence(w.base, t)
	if !ok {
		if col != nil {
			return w.unsupported("identity sequence of %s is unknown; reset it by hand", t.Name)
		}
		return nil
	}
	return []Statement{Block(fmt.Sprintf(`DECLARE
  next_id NUMBER;
BEGIN
  SELECT NVL(MAX(%s), 0) + 1 INTO next_id FROM %s;
  EXECUTE IMMEDIATE 'ALTER SEQUENCE %s RESTART START WITH ' || next_id;
END;`, w.quote(col.Name), w.table(t), strings.ReplaceAll(seq, "'", "''")))}
}

func (w *firebirdWriter) WriteIdentityReset(t *schema.Table) []Statement {
	seq, col, ok := identitySequence(w.base, t)
	if !ok {
		if col != nil {
			return w.unsupported("generator of %s is unknown; reset it by hand", t.Name)
		}
		return nil
	}
	// RESTART WITH sets the current value; the next one adds the increment
	return []Statement{Block(fmt.Sprintf(`EXECUTE BLOCK AS
DECLARE VARIABLE last_id BIGINT;
BEGIN
  SELECT COALESCE(MAX(%s), 0) FROM %s INTO :last_id;
  EXECUTE STATEMENT 'ALTER SEQUENCE %s RESTART WITH ' || :last_id;
END`, w.quote(col.Name), w.table(t), strings.ReplaceAll(seq, "'", "''")))}
}

func (w *sqlServerWriter) WriteIdentityReset(t *schema.Table) []Statement {
	if t.IdentityColumn() == nil {
		return nil
	}
	return []Statement{DDL("DBCC CHECKIDENT ('%s')", strings.ReplaceAll(w.table(t), "'", "''"))}
}

func (w *postgresWriter) WriteIdentityReset(t *schema.Table) []Statement {
	col := t.IdentityColumn()
	if col == nil {
		return nil
	}
	return []Statement{DDL("SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE(MAX(%s), 0) + 1, false) FROM %s",
		strings.ReplaceAll(w.table(t), "'", "''"), strings.ReplaceAll(col.Name, "'", "''"), w.quote(col.Name), w.table(t))}
}

func (w *mySQLWriter) WriteIdentityReset(t *schema.Table) []Statement {
	if t.IdentityColumn() == nil {
		return nil
	}
	return []Statement{Comment("AUTO_INCREMENT of %s continues after the highest inserted value", t.Name)}
}

func (w *sqliteWriter) WriteIdentityReset(t *schema.Table) []Statement {
	if t.IdentityColumn() == nil {
		return nil
	}
	return []Statement{Comment("rowid of %s continues after the highest inserted value", t.Name)}
}
