package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenantportal/pkg/config"
	"tenantportal/pkg/content"
)

func TestMustOpenMemoryWithSeeds(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		TenantSeedJSON:    `[{"id":"acme","name":"Acme","allowed_domains":["acme.com"],"flows":[1]}]`,
		ContentSeedJSON:   `[{"id":1,"kind":"flow","title":"One"},{"id":9,"kind":"post","title":"News","allowed_tenants":["acme"]}]`,
		AccountSeedEmails: "a@acme.com, B@acme.com",
	}
	s := MustOpen(ctx, cfg, zap.NewNop().Sugar())
	defer s.Close()
	assert.Nil(t, s.Pool)

	tn, err := s.Tenants.TenantByID(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []content.ID{1}, tn.Assigned(content.KindFlow))

	it, err := s.Content.Item(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, it.AllowedTenants)

	_, err = s.Accounts.AccountByEmail(ctx, "b@acme.com")
	assert.NoError(t, err)
}
