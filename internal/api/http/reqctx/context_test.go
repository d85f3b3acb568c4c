package reqctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdesk/paperdesk/internal/model"
)

func TestIdentityFrom(t *testing.T) {
	identity := model.Identity{Username: "jsmith", Email: "jsmith@example.com", Role: model.RoleAuthor}
	ctx := WithIdentity(context.Background(), identity)

	got, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)
}

func TestIdentityFrom_Missing(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)
}

func TestIdentityFrom_Zero(t *testing.T) {
	ctx := WithIdentity(context.Background(), model.Identity{})
	_, ok := IdentityFrom(ctx)
	assert.False(t, ok)
}
