package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/carlog/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string) error
}

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
}

func (c *MongoUserCollection) store() *Store[models.User, *models.User] {
	return NewStore[models.User](c.Collection)
}

// InsertUser inserts a new active user. Emails are stored lower-cased.
func (c *MongoUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	user.IsActive = true
	return c.store().Insert(ctx, user)
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return c.store().FindByID(ctx, id)
}

// FindUserByEmail finds a user by their email, ignoring case.
func (c *MongoUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// UpdatePassword stores a new password hash.
func (c *MongoUserCollection) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return c.store().UpdateFields(ctx, id, bson.M{"password_hash": passwordHash})
}

// UpdateLastLogin updates the last login time for a user
func (c *MongoUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	return c.store().UpdateFields(ctx, id, bson.M{"last_login": time.Now().UTC()})
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
