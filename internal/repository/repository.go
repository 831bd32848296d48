package repository

import (
	redisapp "presto/internal/storage/redis"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	User  UserRepository
	Store StoreRepository
	Token TokenRepository
}

func NewRepository(db *pgxpool.Pool, rdb *redisapp.Client) *Repository {
	return &Repository{
		User:  NewUserRepository(db),
		Store: NewStoreRepository(db),
		Token: NewRedisTokenRepo(rdb),
	}
}
