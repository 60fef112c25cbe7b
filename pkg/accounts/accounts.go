// Package accounts looks up local portal accounts by email.
package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("account not found")

type Account struct {
	ID    string
	Email string
}

type Directory interface {
	AccountByEmail(ctx context.Context, email string) (Account, error)
	Ensure(ctx context.Context, email string) (Account, error)
}

type memDirectory struct {
	mu      sync.RWMutex
	byEmail map[string]Account
}

// NewMemory seeds the directory with the given addresses.
func NewMemory(emails ...string) Directory {
	d := &memDirectory{byEmail: map[string]Account{}}
	for _, e := range emails {
		_, _ = d.Ensure(context.Background(), e)
	}
	return d
}

func (d *memDirectory) AccountByEmail(_ context.Context, email string) (Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if a, ok := d.byEmail[normalize(email)]; ok {
		return a, nil
	}
	return Account{}, ErrNotFound
}

func (d *memDirectory) Ensure(_ context.Context, email string) (Account, error) {
	email = normalize(email)
	if email == "" {
		return Account{}, errors.New("empty email")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if a, ok := d.byEmail[email]; ok {
		return a, nil
	}
	a := Account{ID: uuid.NewString(), Email: email}
	d.byEmail[email] = a
	return a, nil
}

// SeedEmails splits ACCOUNT_SEED_EMAILS (comma separated).
func SeedEmails(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := normalize(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
