package tenants

import (
	"context"
	"encoding/json"

	"tenantportal/pkg/content"
)

// Spec is the document form of a tenant used by seeds, registry files and
// the admin API.
type Spec struct {
	ID             string       `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name" validate:"required"`
	AccessType     string       `json:"access_type" yaml:"access_type" validate:"omitempty,oneof=domain email"`
	AllowedDomains []string     `json:"allowed_domains" yaml:"allowed_domains" validate:"dive,fqdn"`
	AllowedEmails  []string     `json:"allowed_emails" yaml:"allowed_emails" validate:"dive,email"`
	Flows          []content.ID `json:"flows" yaml:"flows" validate:"dive,gt=0"`
	Resources      []content.ID `json:"resources" yaml:"resources" validate:"dive,gt=0"`
	Reps           []content.ID `json:"reps" yaml:"reps" validate:"dive,gt=0"`
	LogoURL        string       `json:"logo_url" yaml:"logo_url" validate:"omitempty,uri"`
}

// Normalize lower-cases the access type and allow-lists in place.
func (s *Spec) Normalize() {
	s.AccessType = Normalize(s.AccessType)
	s.AllowedDomains = NormalizeList(s.AllowedDomains)
	s.AllowedEmails = NormalizeList(s.AllowedEmails)
}

func (s Spec) Tenant() Tenant {
	return Tenant{
		ID: s.ID, Name: s.Name, AccessType: ParseAccessType(s.AccessType),
		AllowedDomains: s.AllowedDomains, AllowedEmails: s.AllowedEmails, LogoURL: s.LogoURL,
		Assignments: map[content.Kind][]content.ID{
			content.KindFlow:     s.Flows,
			content.KindResource: s.Resources,
			content.KindRep:      s.Reps,
		},
	}
}

// SpecOf is the inverse of Spec.Tenant.
func SpecOf(t Tenant) Spec {
	return Spec{
		ID: t.ID, Name: t.Name, AccessType: string(t.AccessType),
		AllowedDomains: t.AllowedDomains, AllowedEmails: t.AllowedEmails, LogoURL: t.LogoURL,
		Flows:     t.Assigned(content.KindFlow),
		Resources: t.Assigned(content.KindResource),
		Reps:      t.Assigned(content.KindRep),
	}
}

// SeedFromJSON ingests initial tenants (TENANT_SEED_JSON):
//
//	[
//	  {"id":"acme","name":"Acme","access_type":"domain","allowed_domains":["acme.com"],
//	   "flows":[10,11],"resources":[20],"reps":[],"logo_url":"https://..."}
//	]
func SeedFromJSON(ctx context.Context, prov Provider, jsonSeed string) error {
	if jsonSeed == "" {
		return nil
	}
	var entries []Spec
	if err := json.Unmarshal([]byte(jsonSeed), &entries); err != nil {
		return err
	}
	for _, e := range entries {
		if err := prov.Save(ctx, e.Tenant()); err != nil {
			return err
		}
	}
	return nil
}
