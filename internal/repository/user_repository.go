package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidtube/api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `id, user_name, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, user_name, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.UserName,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.AvatarURL,
		user.CoverImageURL,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// FindByIdentifier resolves a login identifier: username match is
// case-insensitive, email match is exact.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE LOWER(user_name) = LOWER($1) OR email = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, identifier))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE LOWER(user_name) = LOWER($1) OR email = $2
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userName, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) error {
	const query = `
		UPDATE users SET full_name = $2, email = $3, updated_at = NOW() WHERE id = $1
	`
	return r.exec(ctx, query, id, fullName, email)
}

func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id, url string) error {
	const query = `
		UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1
	`
	return r.exec(ctx, query, id, url)
}

func (r *UserRepository) UpdateCoverImageURL(ctx context.Context, id, url string) error {
	const query = `
		UPDATE users SET cover_image_url = $2, updated_at = NOW() WHERE id = $1
	`
	return r.exec(ctx, query, id, url)
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id string, hash []byte) error {
	const query = `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`
	return r.exec(ctx, query, id, hash)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrUserExists
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.UserName,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CoverImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
