package service

import (
	"context"
	"io"

	"vidtube/api/internal/models"
)

// Persistence and storage collaborators, satisfied by the repository and
// storage packages. Tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	ExistsByUserNameOrEmail(ctx context.Context, userName, email string) (bool, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) error
	UpdateAvatarURL(ctx context.Context, id, url string) error
	UpdateCoverImageURL(ctx context.Context, id, url string) error
	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
}

type SessionStore interface {
	Replace(ctx context.Context, session models.Session) error
	Rotate(ctx context.Context, session models.Session, oldHash []byte) error
	DeleteByUser(ctx context.Context, userID string) error
}

type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	GetChannelProfile(ctx context.Context, userName, viewerID string) (models.ChannelProfile, error)
}

type MediaStore interface {
	Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) (string, error)
}
