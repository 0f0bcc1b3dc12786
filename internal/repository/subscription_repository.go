package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidtube/api/internal/models"
)

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes if the edge
// already exists. Returns the resulting subscribed state.
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	const deleteQuery = `
		DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
	`
	cmd, err := r.pool.Exec(ctx, deleteQuery, subscriberID, channelID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return false, nil
	}

	const insertQuery = `
		INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, insertQuery, subscriberID, channelID); err != nil {
		return false, err
	}
	return true, nil
}

// GetChannelProfile joins the subscription edges in both directions for the
// named channel and reports whether the viewer is among its subscribers.
func (r *SubscriptionRepository) GetChannelProfile(ctx context.Context, userName, viewerID string) (models.ChannelProfile, error) {
	const query = `
		SELECT
			u.id, u.user_name, u.email, u.full_name, u.avatar_url, u.cover_image_url,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscriber_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
			EXISTS (
				SELECT 1 FROM subscriptions s
				WHERE s.channel_id = u.id AND s.subscriber_id = $2
			) AS is_subscribed
		FROM users u
		WHERE LOWER(u.user_name) = LOWER($1)
	`

	row := r.pool.QueryRow(ctx, query, userName, viewerID)
	var profile models.ChannelProfile
	if err := row.Scan(
		&profile.User.ID,
		&profile.User.UserName,
		&profile.User.Email,
		&profile.User.FullName,
		&profile.User.AvatarURL,
		&profile.User.CoverImageURL,
		&profile.SubscriberCount,
		&profile.SubscribedTo,
		&profile.IsSubscribed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrUserNotFound
		}
		return models.ChannelProfile{}, err
	}
	return profile, nil
}
