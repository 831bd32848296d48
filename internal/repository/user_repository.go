package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"presto/internal/domain/models"
	"presto/internal/storage"
)

const usersTable = "users"

type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) SaveUser(ctx context.Context, user models.User) (uuid.UUID, error) {
	const op = "repository.user.SaveUser"

	query, args, err := sq.Insert(usersTable).
		Columns("name", "email", "password", "registration_date").
		Values(user.Name, user.Email, user.Password, time.Now()).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PgUserRepository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "repository.user.UserByEmail"

	query, args, err := sq.Select("id", "name", "email", "password", "registration_date").
		From(usersTable).
		Where(sq.Eq{"email": email}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, query, args...).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.RegistrationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *PgUserRepository) UserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "repository.user.UserByID"

	query, args, err := sq.Select("id", "name", "email", "password", "registration_date").
		From(usersTable).
		Where(sq.Eq{"id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, query, args...).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.RegistrationDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *PgUserRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.user.TouchLastLogin"

	query, args, err := sq.Update(usersTable).
		Set("last_login", time.Now()).
		Where(sq.Eq{"id": userID}).
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
