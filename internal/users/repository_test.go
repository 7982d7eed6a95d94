package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/joao-fontenele/minimarket-pos/internal/domain"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "123456", hash)
	assert.True(t, CheckPassword(domain.User{PasswordHash: hash}, "123456"))
	assert.False(t, CheckPassword(domain.User{PasswordHash: hash}, "654321"))
}

func TestSeedEmail(t *testing.T) {
	assert.Equal(t, "test_user1@test.com", SeedEmail(1))
	assert.Equal(t, "test_user12@test.com", SeedEmail(12))
}
