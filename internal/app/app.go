package app

import (
	"context"
	"log/slog"

	"presto/internal/config"
	"presto/internal/repository"
	"presto/internal/storage/postgresql"
	redisapp "presto/internal/storage/redis"
	httprouters "presto/internal/transport/http"

	httpapp "presto/internal/app/http"
	storeservice "presto/internal/services/store_service"
	tokenservice "presto/internal/services/token_service"
	userservice "presto/internal/services/user_service"
)

type App struct {
	HTTPServer *httpapp.Server

	db  *postgresql.Storage
	rdb *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	rdb := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	repo := repository.NewRepository(db.Pool(), rdb)

	tokens := tokenservice.NewTokenService(repo.Token, cfg.Secret, cfg.TokenTTL, cfg.RefreshTTL)
	users := userservice.NewUserService(log, repo.User, tokens)
	stores := storeservice.NewStoreService(log, repo.Store)

	routers := httprouters.NewRouter(log, users, tokens, stores)

	server := httpapp.New(log, cfg.Secret, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return &App{
		HTTPServer: server,
		db:         db,
		rdb:        rdb,
	}, nil
}

func (a *App) Stop() {
	a.HTTPServer.Stop()
	a.db.Stop()
	a.rdb.Close()
}
