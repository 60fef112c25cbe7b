package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	owner := TenantOwner("acme")

	require.NoError(t, s.Put(ctx, owner, KeyFlows, []string{"3", "1", "2"}))
	v, err := s.Get(ctx, owner, KeyFlows)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, v)

	v[0] = "mutated"
	again, _ := s.Get(ctx, owner, KeyFlows)
	assert.Equal(t, "3", again[0])

	require.NoError(t, s.Put(ctx, owner, KeyFlows, nil))
	v, _ = s.Get(ctx, owner, KeyFlows)
	assert.Empty(t, v)
}

func TestMemoryPutManyAppliesEveryKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	owner := TenantOwner("acme")
	require.NoError(t, s.Put(ctx, owner, KeyAllowedDomains, []string{"acme.com"}))

	require.NoError(t, s.PutMany(ctx, owner, map[string][]string{
		KeyAccessType:     {"email"},
		KeyAllowedEmails:  {"bob@acme.com"},
		KeyAllowedDomains: nil,
	}))
	all, err := s.GetAll(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		KeyAccessType:    {"email"},
		KeyAllowedEmails: {"bob@acme.com"},
	}, all)
}

func TestMemoryGetAllAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	owner := TenantOwner("acme")
	require.NoError(t, s.Put(ctx, owner, KeyTitle, []string{"Acme"}))
	require.NoError(t, s.Put(ctx, owner, KeyAllowedDomains, []string{"acme.com"}))

	all, err := s.GetAll(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Acme", First(all[KeyTitle]))
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, owner, KeyTitle))
	all, _ = s.GetAll(ctx, owner)
	assert.Len(t, all, 1)
}

func TestMemoryOwnersSortedAndPrefixed(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Put(ctx, TenantOwner("b"), KeyAllowedDomains, []string{"shared.com"}))
	require.NoError(t, s.Put(ctx, TenantOwner("a"), KeyAllowedDomains, []string{"x.com", "shared.com"}))
	require.NoError(t, s.Put(ctx, ItemOwner(5), KeyAllowedDomains, []string{"shared.com"}))

	owners, err := s.Owners(ctx, TenantPrefix, KeyAllowedDomains, "shared.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant:a", "tenant:b"}, owners)

	all, err := s.OwnersWithPrefix(ctx, TenantPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant:a", "tenant:b"}, all)
}

func TestOwnerHelpers(t *testing.T) {
	assert.Equal(t, "item:42", ItemOwner(42))
	assert.Equal(t, "tenant:acme", TenantOwner("acme"))
	assert.Equal(t, "", First(nil))
}
