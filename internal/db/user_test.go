package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/carlog/internal/models"
)

func TestMongoUserCollection_InsertAndFind(t *testing.T) {
	d := testDatabase(t)
	ctx := context.Background()
	require.NoError(t, d.EnsureIndexes(ctx))

	user := &models.User{Name: "Test User", Email: "Test@Example.com", PasswordHash: "hashedpassword"}
	require.NoError(t, d.Users.InsertUser(ctx, user))

	found, err := d.Users.FindUserByEmail(ctx, "test@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", found.Email)
	assert.True(t, found.IsActive)
	assert.NotZero(t, found.CreatedAt)

	byID, err := d.Users.FindUserByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Test User", byID.Name)
}

func TestMongoUserCollection_DuplicateEmail(t *testing.T) {
	d := testDatabase(t)
	ctx := context.Background()
	require.NoError(t, d.EnsureIndexes(ctx))

	require.NoError(t, d.Users.InsertUser(ctx, &models.User{Name: "A", Email: "dup@example.com"}))
	err := d.Users.InsertUser(ctx, &models.User{Name: "B", Email: "DUP@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMongoUserCollection_Updates(t *testing.T) {
	d := testDatabase(t)
	ctx := context.Background()

	user := &models.User{Name: "A", Email: "a@example.com", PasswordHash: "old"}
	require.NoError(t, d.Users.InsertUser(ctx, user))

	require.NoError(t, d.Users.UpdatePassword(ctx, user.ID.Hex(), "new"))
	require.NoError(t, d.Users.UpdateLastLogin(ctx, user.ID.Hex()))

	found, err := d.Users.FindUserByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "new", found.PasswordHash)
	require.NotNil(t, found.LastLogin)
}

func TestMongoUserCollection_NotFound(t *testing.T) {
	d := testDatabase(t)
	ctx := context.Background()

	_, err := d.Users.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.Users.FindUserByID(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidID)
}
