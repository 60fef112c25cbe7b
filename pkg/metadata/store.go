// Package metadata is the key-value-by-owner store backing tenant records and
// per-item visibility lists. Every key holds an ordered list of strings;
// scalar values are single-element lists.
package metadata

import (
	"context"
	"strconv"
)

const (
	KeyTitle          = "title"
	KeyAccessType     = "access_type"
	KeyAllowedDomains = "allowed_domains"
	KeyAllowedEmails  = "allowed_emails"
	KeyFlows          = "flows"
	KeyResources      = "resources"
	KeyReps           = "reps"
	KeyLogoURL        = "logo_url"
	KeyAllowedTenants = "allowed_tenants"
)

const (
	TenantPrefix = "tenant:"
	ItemPrefix   = "item:"
)

type Store interface {
	Get(ctx context.Context, owner, key string) ([]string, error)
	GetAll(ctx context.Context, owner string) (map[string][]string, error)
	// Put replaces the list stored under key; an empty list removes it.
	Put(ctx context.Context, owner, key string, values []string) error
	// PutMany applies Put for every key atomically: readers see all of the
	// writes or none of them.
	PutMany(ctx context.Context, owner string, writes map[string][]string) error
	Delete(ctx context.Context, owner, key string) error
	// Owners lists owners starting with prefix whose key contains value, sorted by owner id.
	Owners(ctx context.Context, prefix, key, value string) ([]string, error)
	// OwnersWithPrefix lists every owner id starting with prefix, sorted.
	OwnersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

func TenantOwner(id string) string { return TenantPrefix + id }

func ItemOwner(id int64) string { return ItemPrefix + strconv.FormatInt(id, 10) }

// First returns the first value or "".
func First(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
