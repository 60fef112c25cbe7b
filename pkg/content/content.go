// Package content models portal items and the listing queries run against them.
package content

import (
	"context"
	"errors"
	"strconv"
)

var ErrNotFound = errors.New("content item not found")

type ID = int64

// Kind is the closed set of item kinds the portal serves.
type Kind string

const (
	KindFlow     Kind = "flow"
	KindResource Kind = "resource"
	KindRep      Kind = "rep"
	KindPost     Kind = "post"
)

// Kinds lists every kind; assignment-based kinds come first.
var Kinds = []Kind{KindFlow, KindResource, KindRep, KindPost}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Assigned reports whether visibility comes from the tenant's per-kind list.
func (k Kind) Assigned() bool {
	return k == KindFlow || k == KindResource || k == KindRep
}

// Plural is the tenant metadata key holding the assignment list.
func (k Kind) Plural() string {
	switch k {
	case KindFlow:
		return "flows"
	case KindResource:
		return "resources"
	case KindRep:
		return "reps"
	}
	return ""
}

type Item struct {
	ID             ID       `json:"id"`
	Kind           Kind     `json:"kind"`
	Title          string   `json:"title"`
	AllowedTenants []string `json:"allowed_tenants,omitempty"` // posts only; empty means everyone
}

type Repository interface {
	Item(ctx context.Context, id ID) (Item, error)
	Find(ctx context.Context, q *Query) ([]Item, error)
	Put(ctx context.Context, item Item) error
}

// ParseIDs converts stored id strings, skipping anything non-numeric.
func ParseIDs(values []string) []ID {
	out := make([]ID, 0, len(values))
	for _, v := range values {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}

func FormatIDs(ids []ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}
