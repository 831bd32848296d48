package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"presto/internal/domain/models"
	"presto/internal/lib/logger/sl"
	"presto/internal/metrics"
	"presto/internal/repository"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// StoreService serves each user's store blob with a read-through cache in
// front of the repository. Replaces refresh the cache so a reader right
// after a write sees its own data.
type StoreService struct {
	log   *slog.Logger
	repo  repository.StoreRepository
	cache *cache.Cache
}

func NewStoreService(log *slog.Logger, repo repository.StoreRepository) *StoreService {
	return &StoreService{
		log:   log,
		repo:  repo,
		cache: cache.New(cacheTTL, cacheCleanup),
	}
}

func (s *StoreService) GetStore(ctx context.Context, userID uuid.UUID) (models.Store, error) {
	const op = "store_service.GetStore"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID.String()),
	)

	if cached, ok := s.cache.Get(userID.String()); ok {
		// hand out a copy so cached state can't be mutated from outside
		return cached.(models.Store).Clone(), nil
	}

	store, err := s.repo.GetStore(ctx, userID)
	if err != nil {
		log.Error("failed to get store", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(userID.String(), store.Clone(), cache.DefaultExpiration)

	return store, nil
}

func (s *StoreService) ReplaceStore(ctx context.Context, userID uuid.UUID, store models.Store) error {
	const op = "store_service.ReplaceStore"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID.String()),
	)

	if store == nil {
		store = models.Store{}
	}

	if err := s.repo.ReplaceStore(ctx, userID, store); err != nil {
		log.Error("failed to replace store", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(userID.String(), store.Clone(), cache.DefaultExpiration)
	metrics.StoreReplacesTotal.Inc()

	log.Info("store replaced", slog.Int("presentations", len(store)))

	return nil
}
