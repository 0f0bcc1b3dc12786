package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidtube/api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Replace installs session as the account's single active session,
// discarding any prior one in the same statement.
func (r *SessionRepository) Replace(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, refresh_token_hash, created_at, expires_at
		) VALUES (
			$1, $2, $3, NOW(), $4
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			id = EXCLUDED.id,
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			created_at = NOW(),
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		session.ExpiresAt,
	)
	return err
}

func (r *SessionRepository) GetByUser(ctx context.Context, userID string) (models.Session, error) {
	const query = `
		SELECT id, user_id, refresh_token_hash, created_at, expires_at
		FROM user_sessions
		WHERE user_id = $1
	`

	row := r.pool.QueryRow(ctx, query, userID)
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshTokenHash,
		&session.CreatedAt,
		&session.ExpiresAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

// Rotate swaps the stored refresh hash for newHash only while it still
// equals oldHash. The conditional update makes concurrent refreshes of the
// same token single-winner: the statement that loses sees zero rows.
func (r *SessionRepository) Rotate(ctx context.Context, session models.Session, oldHash []byte) error {
	const query = `
		UPDATE user_sessions
		SET refresh_token_hash = $3, expires_at = $4
		WHERE user_id = $1 AND refresh_token_hash = $2
	`

	cmd, err := r.pool.Exec(ctx, query,
		session.UserID,
		oldHash,
		session.RefreshTokenHash,
		session.ExpiresAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteByUser is idempotent: deleting an absent session is not an error.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM user_sessions WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM user_sessions WHERE expires_at < NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
