package query

import (
	"fmt"
	"strings"
)

// Condition represents a WHERE clause condition.
// Implementations render a SQL fragment using Postgres positional
// placeholders ($1, $2, ...) starting at argIndex.
type Condition interface {
	// SQL returns the fragment and the arguments it binds, in placeholder order.
	SQL(argIndex int) (string, []any)
}

type compareCondition struct {
	field string
	op    string
	value any
}

func (c *compareCondition) SQL(argIndex int) (string, []any) {
	return fmt.Sprintf("%s %s $%d", c.field, c.op, argIndex), []any{c.value}
}

// Eq creates an equality condition.
// Example: Eq("category_id", id) generates "category_id = $1"
func Eq(field string, value any) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Gt creates a strictly-greater condition
func Gt(field string, value any) Condition {
	return &compareCondition{field: field, op: ">", value: value}
}

// Gte creates a greater-or-equal condition
func Gte(field string, value any) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// Lte creates a less-or-equal condition
func Lte(field string, value any) Condition {
	return &compareCondition{field: field, op: "<=", value: value}
}

// Overlaps matches array columns sharing at least one element with value.
// Example: Overlaps("tags", []string{"a"}) generates "tags && $1"
func Overlaps(field string, value any) Condition {
	return &compareCondition{field: field, op: "&&", value: value}
}

// EqFold matches field against value ignoring case.
// Example: EqFold("brand", "acme") generates "LOWER(brand) = LOWER($1)"
func EqFold(field string, value string) Condition {
	return &eqFoldCondition{field: field, value: value}
}

type eqFoldCondition struct {
	field string
	value string
}

func (c *eqFoldCondition) SQL(argIndex int) (string, []any) {
	return fmt.Sprintf("LOWER(%s) = LOWER($%d)", c.field, argIndex), []any{c.value}
}

// ContainsFold matches any of the fields containing term, ignoring case.
// The term is bound once and reused by every field.
func ContainsFold(term string, fields ...string) Condition {
	return &containsFoldCondition{term: term, fields: fields}
}

type containsFoldCondition struct {
	term   string
	fields []string
}

func (c *containsFoldCondition) SQL(argIndex int) (string, []any) {
	parts := make([]string, 0, len(c.fields))
	for _, field := range c.fields {
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", field, argIndex))
	}
	return "(" + strings.Join(parts, " OR ") + ")", []any{"%" + escapeLike(c.term) + "%"}
}

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
