package content

import (
	"fmt"
	"slices"
	"strings"
)

type ClauseOp int

const (
	// OpMatchNone matches no item.
	OpMatchNone ClauseOp = iota + 1
	// OpIDsOrdered restricts to IDs and orders results by their position.
	OpIDsOrdered
	// OpTenantVisible keeps items whose allowed tenants are empty or contain TenantID.
	OpTenantVisible
)

type Clause struct {
	Op       ClauseOp
	IDs      []ID
	TenantID string
}

func (c Clause) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s|", c.Op, c.TenantID)
	for _, id := range c.IDs {
		fmt.Fprintf(&b, "%d,", id)
	}
	return b.String()
}

// Matches evaluates the clause against a single item.
func (c Clause) Matches(it Item) bool {
	switch c.Op {
	case OpMatchNone:
		return false
	case OpIDsOrdered:
		return slices.Contains(c.IDs, it.ID)
	case OpTenantVisible:
		return len(it.AllowedTenants) == 0 || slices.Contains(it.AllowedTenants, c.TenantID)
	}
	return true
}

// Query is a listing request; clauses are ANDed.
type Query struct {
	Kind    Kind
	Limit   int
	Clauses []Clause

	marks map[string]struct{}
}

func NewQuery(kind Kind) *Query { return &Query{Kind: kind} }

// Mark records name on the query and reports whether it was new.
func (q *Query) Mark(name string) bool {
	if q.marks == nil {
		q.marks = map[string]struct{}{}
	}
	if _, ok := q.marks[name]; ok {
		return false
	}
	q.marks[name] = struct{}{}
	return true
}

func (q *Query) Marked(name string) bool {
	_, ok := q.marks[name]
	return ok
}

// AddClause appends c unless an identical clause is already present.
func (q *Query) AddClause(c Clause) bool {
	k := c.key()
	for _, existing := range q.Clauses {
		if existing.key() == k {
			return false
		}
	}
	q.Clauses = append(q.Clauses, c)
	return true
}

// Matches reports whether it satisfies the kind and every clause.
func (q *Query) Matches(it Item) bool {
	if q.Kind != "" && it.Kind != q.Kind {
		return false
	}
	for _, c := range q.Clauses {
		if !c.Matches(it) {
			return false
		}
	}
	return true
}

// Ordering returns the first ordered id list, if any.
func (q *Query) Ordering() []ID {
	for _, c := range q.Clauses {
		if c.Op == OpIDsOrdered {
			return c.IDs
		}
	}
	return nil
}
