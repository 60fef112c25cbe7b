package tenants

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"tenantportal/pkg/content"
	"tenantportal/pkg/metadata"
)

var ErrNotFound = errors.New("tenant not found")

type Provider interface {
	TenantByID(ctx context.Context, id string) (Tenant, error)
	// FindByEmail returns the first tenant (by id) using email access whose allow-list holds email.
	FindByEmail(ctx context.Context, email string) (string, error)
	// FindByDomain returns the first tenant (by id) using domain access whose allow-list holds domain.
	FindByDomain(ctx context.Context, domain string) (string, error)
	List(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, t Tenant) error
}

// metaProvider reads tenants from the key-value-by-owner store.
type metaProvider struct {
	meta metadata.Store
	log  *zap.SugaredLogger
}

func NewProvider(meta metadata.Store, log *zap.SugaredLogger) Provider {
	return &metaProvider{meta: meta, log: log}
}

func (p *metaProvider) TenantByID(ctx context.Context, id string) (Tenant, error) {
	if strings.TrimSpace(id) == "" {
		return Tenant{}, ErrNotFound
	}
	kv, err := p.meta.GetAll(ctx, metadata.TenantOwner(id))
	if err != nil {
		return Tenant{}, err
	}
	if len(kv) == 0 {
		return Tenant{}, ErrNotFound
	}
	t := Tenant{
		ID:             id,
		Name:           metadata.First(kv[metadata.KeyTitle]),
		AccessType:     ParseAccessType(metadata.First(kv[metadata.KeyAccessType])),
		AllowedDomains: kv[metadata.KeyAllowedDomains],
		AllowedEmails:  kv[metadata.KeyAllowedEmails],
		LogoURL:        metadata.First(kv[metadata.KeyLogoURL]),
		Assignments:    map[content.Kind][]content.ID{},
	}
	for _, k := range content.Kinds {
		if k.Assigned() {
			t.Assignments[k] = content.ParseIDs(kv[k.Plural()])
		}
	}
	return t, nil
}

func (p *metaProvider) FindByEmail(ctx context.Context, email string) (string, error) {
	return p.find(ctx, metadata.KeyAllowedEmails, AccessEmail, email)
}

func (p *metaProvider) FindByDomain(ctx context.Context, domain string) (string, error) {
	return p.find(ctx, metadata.KeyAllowedDomains, AccessDomain, domain)
}

func (p *metaProvider) find(ctx context.Context, key string, want AccessType, value string) (string, error) {
	owners, err := p.meta.Owners(ctx, metadata.TenantPrefix, key, Normalize(value))
	if err != nil {
		return "", err
	}
	for _, owner := range owners {
		id := strings.TrimPrefix(owner, metadata.TenantPrefix)
		at, err := p.meta.Get(ctx, owner, metadata.KeyAccessType)
		if err != nil {
			return "", err
		}
		if ParseAccessType(metadata.First(at)) == want {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (p *metaProvider) List(ctx context.Context) ([]Tenant, error) {
	owners, err := p.meta.OwnersWithPrefix(ctx, metadata.TenantPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Tenant, 0, len(owners))
	for _, owner := range owners {
		t, err := p.TenantByID(ctx, strings.TrimPrefix(owner, metadata.TenantPrefix))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Save writes every tenant field; allow-lists are normalized first.
func (p *metaProvider) Save(ctx context.Context, t Tenant) error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("tenant id required")
	}
	if t.AccessType == "" {
		t.AccessType = AccessDomain
	}
	owner := metadata.TenantOwner(t.ID)
	writes := map[string][]string{
		metadata.KeyTitle:          nonEmpty(t.Name),
		metadata.KeyAccessType:     {string(t.AccessType)},
		metadata.KeyAllowedDomains: NormalizeList(t.AllowedDomains),
		metadata.KeyAllowedEmails:  NormalizeList(t.AllowedEmails),
		metadata.KeyLogoURL:        nonEmpty(t.LogoURL),
	}
	for _, k := range content.Kinds {
		if k.Assigned() {
			writes[k.Plural()] = content.FormatIDs(t.Assignments[k])
		}
	}
	if err := p.meta.PutMany(ctx, owner, writes); err != nil {
		return err
	}
	p.log.Debugw("tenant saved", "tenant_id", t.ID, "access_type", t.AccessType)
	return nil
}

func nonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []string{s}
}
