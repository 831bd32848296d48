package repository

import (
	"context"
	"time"

	"presto/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

// StoreRepository persists one store blob per user. The blob is read and
// replaced wholesale; there is no partial update.
type StoreRepository interface {
	GetStore(ctx context.Context, userID uuid.UUID) (models.Store, error)
	ReplaceStore(ctx context.Context, userID uuid.UUID, store models.Store) error
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}
