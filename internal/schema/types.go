package schema

import "strings"

// Schema represents a complete database schema snapshot
type Schema struct {
	Name      string      `yaml:"name,omitempty"`
	Tables    []*Table    `yaml:"tables"`
	Sequences []*Sequence `yaml:"sequences,omitempty"`
}

// Table represents a database table
type Table struct {
	Name               string        `yaml:"name"`
	SchemaOwner        string        `yaml:"owner,omitempty"`
	Columns            []*Column     `yaml:"columns"`
	PrimaryKey         *Constraint   `yaml:"primary_key,omitempty"`
	ForeignKeys        []*Constraint `yaml:"foreign_keys,omitempty"`
	UniqueKeys         []*Constraint `yaml:"unique_keys,omitempty"`
	CheckConstraints   []*Constraint `yaml:"check_constraints,omitempty"`
	DefaultConstraints []*Constraint `yaml:"default_constraints,omitempty"`
	Indexes            []*Index      `yaml:"indexes,omitempty"`
	Triggers           []*Trigger    `yaml:"triggers,omitempty"`
}

// Column represents a table column.
// DbDataType is the vendor-neutral type name ("VARCHAR", "NUMBER", "DATETIME2", ...).
// ProviderType optionally carries the reader's native type tag and is used to
// disambiguate names that mean different things per vendor (TIMESTAMP).
type Column struct {
	Name               string `yaml:"name"`
	Ordinal            int    `yaml:"ordinal,omitempty"`
	DbDataType         string `yaml:"type"`
	ProviderType       string `yaml:"provider_type,omitempty"`
	Length             *int   `yaml:"length,omitempty"`
	Precision          *int   `yaml:"precision,omitempty"`
	Scale              *int   `yaml:"scale,omitempty"`
	Nullable           bool   `yaml:"nullable"`
	DefaultValue       string `yaml:"default,omitempty"`
	IsIdentity         bool   `yaml:"identity,omitempty"`
	IdentitySeed       int64  `yaml:"identity_seed,omitempty"`
	IdentityIncrement  int64  `yaml:"identity_increment,omitempty"`
	IsComputed         bool   `yaml:"computed,omitempty"`
	ComputedDefinition string `yaml:"computed_definition,omitempty"`
}

// ConstraintType identifies the kind of a table constraint
type ConstraintType string

const (
	PrimaryKey ConstraintType = "PRIMARY KEY"
	ForeignKey ConstraintType = "FOREIGN KEY"
	UniqueKey  ConstraintType = "UNIQUE"
	Check      ConstraintType = "CHECK"
	Default    ConstraintType = "DEFAULT"
)

// Constraint represents a primary key, foreign key, unique, check or default constraint.
// Column order is significant for composite keys.
type Constraint struct {
	Name            string         `yaml:"name,omitempty"`
	Type            ConstraintType `yaml:"type"`
	TableName       string         `yaml:"table,omitempty"`
	SchemaOwner     string         `yaml:"owner,omitempty"`
	Columns         []string       `yaml:"columns,omitempty"`
	RefersToTable   string         `yaml:"refers_to_table,omitempty"`
	RefersToSchema  string         `yaml:"refers_to_schema,omitempty"`
	RefersToColumns []string       `yaml:"refers_to_columns,omitempty"`
	DeleteRule      string         `yaml:"delete_rule,omitempty"`
	UpdateRule      string         `yaml:"update_rule,omitempty"`
	Expression      string         `yaml:"expression,omitempty"`
}

// Index represents a database index
type Index struct {
	Name      string        `yaml:"name"`
	Columns   []IndexColumn `yaml:"columns"`
	IsUnique  bool          `yaml:"unique,omitempty"`
	IndexType string        `yaml:"index_type,omitempty"`
}

// IndexColumn is one column of an index in key order
type IndexColumn struct {
	Name       string `yaml:"name"`
	Ordinal    int    `yaml:"ordinal,omitempty"`
	Descending bool   `yaml:"descending,omitempty"`
}

// Trigger represents a table trigger with its source text
type Trigger struct {
	Name         string `yaml:"name"`
	TableName    string `yaml:"table,omitempty"`
	TriggerBody  string `yaml:"body,omitempty"`
	TriggerEvent string `yaml:"event,omitempty"`
	TriggerType  string `yaml:"timing,omitempty"`
}

// Sequence represents a standalone sequence (Oracle, Firebird generators, PostgreSQL)
type Sequence struct {
	Name        string `yaml:"name"`
	SchemaOwner string `yaml:"owner,omitempty"`
	Start       int64  `yaml:"start,omitempty"`
	Increment   int64  `yaml:"increment,omitempty"`
	MinValue    *int64 `yaml:"min_value,omitempty"`
	MaxValue    *int64 `yaml:"max_value,omitempty"`
	Cycle       bool   `yaml:"cycle,omitempty"`
}

// Row is one data row keyed by column name
type Row map[string]any

// FindTable looks a table up by name, ignoring case. An empty owner matches any owner.
func (s *Schema) FindTable(owner, name string) *Table {
	if s == nil {
		return nil
	}
	for _, t := range s.Tables {
		if !strings.EqualFold(t.Name, name) {
			continue
		}
		if owner == "" || t.SchemaOwner == "" || strings.EqualFold(t.SchemaOwner, owner) {
			return t
		}
	}
	return nil
}

// FindSequence looks a sequence up by name, ignoring case and any owner prefix
func (s *Schema) FindSequence(name string) *Sequence {
	if s == nil {
		return nil
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	for _, seq := range s.Sequences {
		if strings.EqualFold(seq.Name, name) {
			return seq
		}
	}
	return nil
}

// HasSequence reports whether a sequence with the given name exists
func (s *Schema) HasSequence(name string) bool {
	return s.FindSequence(name) != nil
}

// HasTrigger reports whether any table carries a trigger with the given name
func (s *Schema) HasTrigger(name string) bool {
	if s == nil {
		return false
	}
	for _, t := range s.Tables {
		for _, tr := range t.Triggers {
			if strings.EqualFold(tr.Name, name) {
				return true
			}
		}
	}
	return false
}

// FindColumn returns the named column, ignoring case
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// IdentityColumn returns the first identity column, or nil
func (t *Table) IdentityColumn() *Column {
	for _, c := range t.Columns {
		if c.IsIdentity {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns returns the key columns in declared key order.
// Names that do not resolve to a column are skipped.
func (t *Table) PrimaryKeyColumns() []*Column {
	if t.PrimaryKey == nil {
		return nil
	}
	var cols []*Column
	for _, name := range t.PrimaryKey.Columns {
		if c := t.FindColumn(name); c != nil {
			cols = append(cols, c)
		}
	}
	return cols
}

// IsPrimaryKeyColumn reports whether the column takes part in the primary key
func (t *Table) IsPrimaryKeyColumn(name string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// IsSelfReference reports whether the foreign key points back at its own table
func (t *Table) IsSelfReference(fk *Constraint) bool {
	if !strings.EqualFold(fk.RefersToTable, t.Name) {
		return false
	}
	return fk.RefersToSchema == "" || t.SchemaOwner == "" || strings.EqualFold(fk.RefersToSchema, t.SchemaOwner)
}

// SelfReferencingForeignKeys returns the foreign keys that point back at this table
func (t *Table) SelfReferencingForeignKeys() []*Constraint {
	var fks []*Constraint
	for _, fk := range t.ForeignKeys {
		if t.IsSelfReference(fk) {
			fks = append(fks, fk)
		}
	}
	return fks
}

// Constraints returns every constraint of the table, primary key first
func (t *Table) Constraints() []*Constraint {
	var all []*Constraint
	if t.PrimaryKey != nil {
		all = append(all, t.PrimaryKey)
	}
	all = append(all, t.ForeignKeys...)
	all = append(all, t.UniqueKeys...)
	all = append(all, t.CheckConstraints...)
	all = append(all, t.DefaultConstraints...)
	return all
}

// IntValue dereferences an optional length/precision/scale
func IntValue(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Int returns a pointer to v, for building columns in code
func Int(v int) *int {
	return &v
}
