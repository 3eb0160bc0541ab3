package schema

import "fmt"

// Warning describes a schema integrity problem that generation degrades around
type Warning struct {
	Table   string
	Column  string
	Message string
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s.%s: %s", w.Table, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Table, w.Message)
}

// Validate checks the invariants generation relies on and returns warnings
// instead of failing. The caller decides how to surface them.
func (t *Table) Validate(s *Schema) []Warning {
	var warnings []Warning

	if t.PrimaryKey == nil || len(t.PrimaryKey.Columns) == 0 {
		warnings = append(warnings, Warning{Table: t.Name, Message: "must add a primary key"})
	} else {
		for _, name := range t.PrimaryKey.Columns {
			if t.FindColumn(name) == nil {
				warnings = append(warnings, Warning{Table: t.Name, Column: name, Message: "primary key column does not exist"})
			}
		}
	}

	seen := make(map[int]string)
	for _, c := range t.Columns {
		if c.Ordinal == 0 {
			continue
		}
		if other, ok := seen[c.Ordinal]; ok {
			warnings = append(warnings, Warning{
				Table:   t.Name,
				Column:  c.Name,
				Message: fmt.Sprintf("ordinal %d already used by %s", c.Ordinal, other),
			})
			continue
		}
		seen[c.Ordinal] = c.Name
	}

	for _, fk := range t.ForeignKeys {
		if s != nil && s.FindTable(fk.RefersToSchema, fk.RefersToTable) == nil {
			warnings = append(warnings, Warning{
				Table:   t.Name,
				Message: fmt.Sprintf("foreign key %s refers to unknown table %s", fk.Name, fk.RefersToTable),
			})
		}
	}

	return warnings
}
