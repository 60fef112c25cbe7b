package content

import (
	"context"
	"encoding/json"

	"tenantportal/pkg/metadata"
)

// SeedFromJSON loads items from CONTENT_SEED_JSON:
//
//	[{"id":10,"kind":"flow","title":"Onboarding"},{"id":20,"kind":"post","title":"News","allowed_tenants":["acme"]}]
func SeedFromJSON(ctx context.Context, repo Repository, meta metadata.Store, jsonSeed string) error {
	if jsonSeed == "" {
		return nil
	}
	var entries []Item
	if err := json.Unmarshal([]byte(jsonSeed), &entries); err != nil {
		return err
	}
	for _, e := range entries {
		if _, ok := ParseKind(string(e.Kind)); !ok || e.ID <= 0 {
			continue
		}
		if err := repo.Put(ctx, e); err != nil {
			return err
		}
		if err := meta.Put(ctx, metadata.ItemOwner(e.ID), metadata.KeyTitle, []string{e.Title}); err != nil {
			return err
		}
		if e.Kind == KindPost {
			if err := meta.Put(ctx, metadata.ItemOwner(e.ID), metadata.KeyAllowedTenants, e.AllowedTenants); err != nil {
				return err
			}
		}
	}
	return nil
}
