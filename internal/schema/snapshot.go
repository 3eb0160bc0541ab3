package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Load decodes a YAML schema snapshot
func Load(r io.Reader) (*Schema, error) {
	var s Schema
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode schema snapshot: %w", err)
	}
	s.fillBackReferences()
	return &s, nil
}

// LoadFile reads a YAML schema snapshot from disk
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Save encodes the schema as a YAML snapshot
func Save(w io.Writer, s *Schema) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode schema snapshot: %w", err)
	}
	return enc.Close()
}

// fillBackReferences restores the table name/owner on constraints and triggers,
// which snapshots usually omit because they are implied by nesting.
func (s *Schema) fillBackReferences() {
	for _, t := range s.Tables {
		if t.PrimaryKey != nil && t.PrimaryKey.Type == "" {
			t.PrimaryKey.Type = PrimaryKey
		}
		setType(t.ForeignKeys, ForeignKey)
		setType(t.UniqueKeys, UniqueKey)
		setType(t.CheckConstraints, Check)
		setType(t.DefaultConstraints, Default)

		for _, c := range t.Constraints() {
			if c.TableName == "" {
				c.TableName = t.Name
			}
			if c.SchemaOwner == "" {
				c.SchemaOwner = t.SchemaOwner
			}
		}
		for _, tr := range t.Triggers {
			if tr.TableName == "" {
				tr.TableName = t.Name
			}
		}
		for i, c := range t.Columns {
			if c.Ordinal == 0 {
				c.Ordinal = i + 1
			}
		}
	}
}

func setType(constraints []*Constraint, typ ConstraintType) {
	for _, c := range constraints {
		if c.Type == "" {
			c.Type = typ
		}
	}
}
