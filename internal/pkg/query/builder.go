package query

import (
	"fmt"
	"strings"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

type orderKey struct {
	column    string
	direction Direction
}

// Builder constructs parameterized SELECT statements for Postgres.
// Every method returns a new Builder, so a base query can be shared and
// extended. Values only ever travel as arguments; table, column and join
// text must come from code, never from user input.
type Builder struct {
	table        string
	joins        []string
	selectCols   []string
	whereClauses []Condition
	orderBy      []orderKey
	limitVal     int64
	offsetVal    int64
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select specifies the columns to retrieve.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// LeftJoin appends a LEFT JOIN clause, e.g. LeftJoin("categories c ON c.id = p.category_id").
func (b *Builder) LeftJoin(clause string) *Builder {
	nb := b.clone()
	nb.joins = append(nb.joins, "LEFT JOIN "+clause)
	return nb
}

// Where adds a WHERE condition.
// Multiple calls are combined with AND logic.
func (b *Builder) Where(condition Condition) *Builder {
	nb := b.clone()
	nb.whereClauses = append(nb.whereClauses, condition)
	return nb
}

// OrderBy appends a sort key. Keys apply in the order they were added.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderBy = append(nb.orderBy, orderKey{column: column, direction: direction})
	return nb
}

// Limit sets the maximum number of rows to return.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offsetVal = offset
	return nb
}

// Count returns a builder for COUNT(*) over the same FROM, JOIN and WHERE
// clauses, with ordering and pagination dropped.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.orderBy = nil
	nb.limitVal = 0
	nb.offsetVal = 0
	return nb
}

// Build renders the SQL text and its positional arguments.
func (b *Builder) Build() (string, []any) {
	var sql strings.Builder
	args := []any{}

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	for _, join := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(join)
	}

	if len(b.whereClauses) > 0 {
		sql.WriteString(" WHERE ")
		parts := make([]string, 0, len(b.whereClauses))
		for _, condition := range b.whereClauses {
			fragment, condArgs := condition.SQL(len(args) + 1)
			parts = append(parts, fragment)
			args = append(args, condArgs...)
		}
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		keys := make([]string, 0, len(b.orderBy))
		for _, key := range b.orderBy {
			if key.direction == Desc {
				keys = append(keys, key.column+" DESC")
			} else {
				keys = append(keys, key.column+" ASC")
			}
		}
		sql.WriteString(strings.Join(keys, ", "))
	}

	if b.limitVal > 0 {
		args = append(args, b.limitVal)
		fmt.Fprintf(&sql, " LIMIT $%d", len(args))
	}

	if b.offsetVal > 0 {
		args = append(args, b.offsetVal)
		fmt.Fprintf(&sql, " OFFSET $%d", len(args))
	}

	return sql.String(), args
}

// clone creates a copy of the builder for immutability.
func (b *Builder) clone() *Builder {
	nb := &Builder{
		table:     b.table,
		limitVal:  b.limitVal,
		offsetVal: b.offsetVal,
	}
	nb.joins = append([]string(nil), b.joins...)
	nb.selectCols = append([]string(nil), b.selectCols...)
	nb.whereClauses = append([]Condition(nil), b.whereClauses...)
	nb.orderBy = append([]orderKey(nil), b.orderBy...)
	return nb
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	sql, args := b.Build()
	return fmt.Sprintf("SQL: %s\nArgs: %v", sql, args)
}
