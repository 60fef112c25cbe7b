package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddClauseDeduplicates(t *testing.T) {
	q := NewQuery(KindFlow)
	assert.True(t, q.AddClause(Clause{Op: OpIDsOrdered, IDs: []ID{3, 1}}))
	assert.False(t, q.AddClause(Clause{Op: OpIDsOrdered, IDs: []ID{3, 1}}))
	assert.True(t, q.AddClause(Clause{Op: OpIDsOrdered, IDs: []ID{1, 3}}))
	assert.Len(t, q.Clauses, 2)
}

func TestMark(t *testing.T) {
	q := NewQuery(KindPost)
	assert.False(t, q.Marked("access"))
	assert.True(t, q.Mark("access"))
	assert.False(t, q.Mark("access"))
	assert.True(t, q.Marked("access"))
}

func TestClauseMatches(t *testing.T) {
	post := Item{ID: 5, Kind: KindPost}
	scoped := Item{ID: 6, Kind: KindPost, AllowedTenants: []string{"acme"}}

	vis := Clause{Op: OpTenantVisible, TenantID: "acme"}
	assert.True(t, vis.Matches(post))
	assert.True(t, vis.Matches(scoped))
	assert.False(t, Clause{Op: OpTenantVisible, TenantID: "globex"}.Matches(scoped))

	assert.False(t, Clause{Op: OpMatchNone}.Matches(post))
	assert.True(t, Clause{Op: OpIDsOrdered, IDs: []ID{5}}.Matches(post))
	assert.False(t, Clause{Op: OpIDsOrdered, IDs: []ID{}}.Matches(post))
}

func TestQueryMatchesKind(t *testing.T) {
	q := NewQuery(KindFlow)
	assert.False(t, q.Matches(Item{ID: 1, Kind: KindRep}))
	assert.True(t, q.Matches(Item{ID: 1, Kind: KindFlow}))
}

func TestParseKindAndPlural(t *testing.T) {
	k, ok := ParseKind("resource")
	assert.True(t, ok)
	assert.Equal(t, KindResource, k)
	assert.Equal(t, "resources", k.Plural())
	assert.True(t, k.Assigned())
	assert.False(t, KindPost.Assigned())
	assert.Equal(t, "", KindPost.Plural())

	_, ok = ParseKind("page")
	assert.False(t, ok)
}

func TestParseIDs(t *testing.T) {
	assert.Equal(t, []ID{4, 2}, ParseIDs([]string{"4", "x", "-1", "2"}))
	assert.Equal(t, []string{"4", "2"}, FormatIDs([]ID{4, 2}))
}
