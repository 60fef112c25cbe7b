package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewMemory(SeedEmails(" Alice@Acme.com , ,bob@globex.io")...)

	a, err := d.AccountByEmail(ctx, "alice@acme.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@acme.com", a.Email)
	assert.NotEmpty(t, a.ID)

	again, err := d.Ensure(ctx, "ALICE@acme.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, again.ID)

	_, err = d.AccountByEmail(ctx, "nobody@acme.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.Ensure(ctx, "  ")
	assert.Error(t, err)
}
