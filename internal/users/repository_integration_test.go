//go:build integration

package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
	"github.com/joao-fontenele/minimarket-pos/internal/pgtest"
)

func TestRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := pgtest.Postgres(ctx, t)
	repo := NewRepository(db)

	u, err := repo.Create(ctx, SeedEmail(1), "123456")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.True(t, CheckPassword(*u, "123456"))

	_, err = repo.Create(ctx, SeedEmail(1), "123456")
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "test_user1@test.com", list[0].Email)

	res, err := Seed(ctx, repo, 2, "123456")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, u.ID, res.Users[0].ID)
}
