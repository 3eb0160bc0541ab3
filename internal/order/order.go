// Package order sorts tables so that foreign key targets come before the
// tables that reference them.
package order

import (
	"context"
	"fmt"
	"sort"

	"github.com/tordrt/schemascript/internal/schema"
)

// Result is a table order plus how it was reached
type Result struct {
	Tables []*schema.Table
	// Fallback is set when the foreign key graph had a cycle. Tables are then
	// sorted by ascending foreign key count, which does NOT guarantee that every
	// referenced table precedes its referrers.
	Fallback bool
}

// Order returns the tables with dependencies first. See Sort.
func Order(ctx context.Context, tables []*schema.Table) ([]*schema.Table, error) {
	res, err := Sort(ctx, tables)
	if err != nil {
		return nil, err
	}
	return res.Tables, nil
}

// Sort runs Kahn's algorithm over outgoing foreign key edges. Each round takes
// every table whose targets are already placed, in input order. Self references
// and targets outside tables are ignored. When a round frees nothing the graph
// is cyclic and the whole input is instead ordered by foreign key count.
// The returned slice holds the input pointers; nothing is modified.
func Sort(ctx context.Context, tables []*schema.Table) (Result, error) {
	deps := dependencies(tables)

	placed := make(map[*schema.Table]bool, len(tables))
	remaining := append([]*schema.Table(nil), tables...)
	sorted := make([]*schema.Table, 0, len(tables))

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("failed to order tables: %w", err)
		}

		var free, blocked []*schema.Table
		for _, t := range remaining {
			if allPlaced(deps[t], placed) {
				free = append(free, t)
			} else {
				blocked = append(blocked, t)
			}
		}
		if len(free) == 0 {
			return Result{Tables: byForeignKeyCount(tables, deps), Fallback: true}, nil
		}
		for _, t := range free {
			placed[t] = true
		}
		sorted = append(sorted, free...)
		remaining = blocked
	}
	return Result{Tables: sorted}, nil
}

// Reverse returns a reversed copy, for drop scripts
func Reverse(tables []*schema.Table) []*schema.Table {
	out := make([]*schema.Table, len(tables))
	for i, t := range tables {
		out[len(tables)-1-i] = t
	}
	return out
}

// dependencies resolves each table's foreign key targets within tables
func dependencies(tables []*schema.Table) map[*schema.Table][]*schema.Table {
	lookup := &schema.Schema{Tables: tables}
	deps := make(map[*schema.Table][]*schema.Table, len(tables))
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			target := lookup.FindTable(fk.RefersToSchema, fk.RefersToTable)
			if target == nil || target == t {
				continue
			}
			deps[t] = append(deps[t], target)
		}
	}
	return deps
}

func allPlaced(targets []*schema.Table, placed map[*schema.Table]bool) bool {
	for _, target := range targets {
		if !placed[target] {
			return false
		}
	}
	return true
}

// byForeignKeyCount is the cycle fallback: ascending count of resolved
// foreign keys, ties kept in input order
func byForeignKeyCount(tables []*schema.Table, deps map[*schema.Table][]*schema.Table) []*schema.Table {
	out := append([]*schema.Table(nil), tables...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(deps[out[i]]) < len(deps[out[j]])
	})
	return out
}
