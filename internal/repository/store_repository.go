package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"presto/internal/domain/models"
)

const userStoresTable = "user_stores"

type PgStoreRepository struct {
	db *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) *PgStoreRepository {
	return &PgStoreRepository{db: db}
}

// GetStore returns the user's store blob. A user who has never written a
// store gets an empty one, matching the wire contract for fresh accounts.
func (r *PgStoreRepository) GetStore(ctx context.Context, userID uuid.UUID) (models.Store, error) {
	const op = "repository.store.GetStore"

	query, args, err := sq.Select("store").
		From(userStoresTable).
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var raw []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Store{}, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var store models.Store
	if err := json.Unmarshal(raw, &store); err != nil {
		return nil, fmt.Errorf("%s: decode store: %w", op, err)
	}

	if store == nil {
		store = models.Store{}
	}

	return store, nil
}

// ReplaceStore overwrites the user's blob wholesale.
func (r *PgStoreRepository) ReplaceStore(ctx context.Context, userID uuid.UUID, store models.Store) error {
	const op = "repository.store.ReplaceStore"

	raw, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("%s: encode store: %w", op, err)
	}

	query, args, err := sq.Insert(userStoresTable).
		Columns("user_id", "store", "updated_at").
		Values(userID, raw, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET store = EXCLUDED.store, updated_at = NOW()").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
