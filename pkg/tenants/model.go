package tenants

import (
	"net/mail"
	"slices"
	"strings"

	"tenantportal/pkg/content"
)

type AccessType string

const (
	AccessDomain AccessType = "domain" // default
	AccessEmail  AccessType = "email"
)

func ParseAccessType(s string) AccessType {
	if AccessType(strings.ToLower(strings.TrimSpace(s))) == AccessEmail {
		return AccessEmail
	}
	return AccessDomain
}

// Tenant represents an organization whose members share content visibility.
type Tenant struct {
	ID             string
	Name           string
	AccessType     AccessType
	AllowedDomains []string // lower-cased; authoritative when AccessType is domain
	AllowedEmails  []string // lower-cased; authoritative when AccessType is email
	Assignments    map[content.Kind][]content.ID
	LogoURL        string
}

// Assigned returns the ordered item ids assigned for kind.
func (t Tenant) Assigned(kind content.Kind) []content.ID {
	return t.Assignments[kind]
}

// Admits reports whether email is on the allow-list selected by the access type.
// The other list is ignored even when populated.
func (t Tenant) Admits(email string) bool {
	email = Normalize(email)
	switch t.AccessType {
	case AccessEmail:
		return slices.Contains(t.AllowedEmails, email)
	default:
		domain, ok := Domain(email)
		if !ok {
			return false
		}
		return slices.Contains(t.AllowedDomains, domain)
	}
}

func Normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// NormalizeList lower-cases, trims and drops empty or duplicate entries.
func NormalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = Normalize(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// ValidEmail accepts a bare addr-spec with a dotted domain.
func ValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	_, ok := Domain(email)
	return ok
}

// Domain returns the part after the single "@" of email.
func Domain(email string) (string, bool) {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "", false
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}
	return domain, true
}
