package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vidtube/api/internal/apperr"
	"vidtube/api/internal/ids"
	"vidtube/api/internal/media/sniffer"
	"vidtube/api/internal/models"
	"vidtube/api/internal/repository"
	"vidtube/api/internal/security"
)

// ImageUpload is a profile image held in memory; avatars and covers are
// small enough that buffering them whole is fine.
type ImageUpload struct {
	Data     []byte
	FileName string
}

type UserService struct {
	users UserStore
	subs  SubscriptionStore
	media MediaStore
	log   zerolog.Logger
}

func NewUserService(users UserStore, subs SubscriptionStore, media MediaStore, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		subs:  subs,
		media: media,
		log:   log,
	}
}

type RegisterInput struct {
	FullName   string
	UserName   string
	Email      string
	Password   string
	Avatar     *ImageUpload
	CoverImage *ImageUpload
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (models.Sanitized, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.UserName = strings.ToLower(strings.TrimSpace(input.UserName))
	input.Email = strings.TrimSpace(input.Email)

	if input.FullName == "" || input.UserName == "" || input.Email == "" || input.Password == "" {
		return models.Sanitized{}, apperr.New(apperr.InvalidInput, "all fields are required")
	}
	if input.Avatar == nil || len(input.Avatar.Data) == 0 {
		return models.Sanitized{}, apperr.New(apperr.InvalidInput, "avatar image is required")
	}

	exists, err := s.users.ExistsByUserNameOrEmail(ctx, input.UserName, input.Email)
	if err != nil {
		return models.Sanitized{}, fmt.Errorf("check uniqueness: %w", err)
	}
	if exists {
		return models.Sanitized{}, apperr.New(apperr.Conflict, "username or email already exists")
	}

	userID := ids.New()

	avatarURL, err := s.storeImage(ctx, userID, "avatar", input.Avatar)
	if err != nil {
		return models.Sanitized{}, err
	}

	coverURL := ""
	if input.CoverImage != nil && len(input.CoverImage.Data) > 0 {
		coverURL, err = s.storeImage(ctx, userID, "cover", input.CoverImage)
		if err != nil {
			return models.Sanitized{}, err
		}
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.Sanitized{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:            userID,
		UserName:      input.UserName,
		Email:         input.Email,
		FullName:      input.FullName,
		PasswordHash:  passwordHash,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return models.Sanitized{}, apperr.New(apperr.Conflict, "username or email already exists")
		}
		return models.Sanitized{}, fmt.Errorf("create user: %w", err)
	}

	return user.Sanitize(), nil
}

func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email string) (models.Sanitized, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return models.Sanitized{}, apperr.New(apperr.InvalidInput, "full name and email are required")
	}

	if err := s.users.UpdateAccount(ctx, userID, fullName, email); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return models.Sanitized{}, apperr.New(apperr.NotFound, "user does not exist")
		case errors.Is(err, repository.ErrUserExists):
			return models.Sanitized{}, apperr.New(apperr.Conflict, "email already in use")
		}
		return models.Sanitized{}, fmt.Errorf("update account: %w", err)
	}

	return s.sanitizedByID(ctx, userID)
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID string, upload *ImageUpload) (models.Sanitized, error) {
	if upload == nil || len(upload.Data) == 0 {
		return models.Sanitized{}, apperr.New(apperr.InvalidInput, "avatar image is required")
	}

	url, err := s.storeImage(ctx, userID, "avatar", upload)
	if err != nil {
		return models.Sanitized{}, err
	}
	if err := s.users.UpdateAvatarURL(ctx, userID, url); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Sanitized{}, apperr.New(apperr.NotFound, "user does not exist")
		}
		return models.Sanitized{}, fmt.Errorf("update avatar: %w", err)
	}
	return s.sanitizedByID(ctx, userID)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, upload *ImageUpload) (models.Sanitized, error) {
	if upload == nil || len(upload.Data) == 0 {
		return models.Sanitized{}, apperr.New(apperr.InvalidInput, "cover image is required")
	}

	url, err := s.storeImage(ctx, userID, "cover", upload)
	if err != nil {
		return models.Sanitized{}, err
	}
	if err := s.users.UpdateCoverImageURL(ctx, userID, url); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Sanitized{}, apperr.New(apperr.NotFound, "user does not exist")
		}
		return models.Sanitized{}, fmt.Errorf("update cover image: %w", err)
	}
	return s.sanitizedByID(ctx, userID)
}

func (s *UserService) GetChannelProfile(ctx context.Context, userName, viewerID string) (models.ChannelProfile, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return models.ChannelProfile{}, apperr.New(apperr.InvalidInput, "username is required")
	}

	profile, err := s.subs.GetChannelProfile(ctx, userName, viewerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.ChannelProfile{}, apperr.New(apperr.NotFound, "channel does not exist")
		}
		return models.ChannelProfile{}, fmt.Errorf("channel profile: %w", err)
	}
	return profile, nil
}

// ToggleSubscription flips the viewer's subscription to the named channel
// and returns the resulting state.
func (s *UserService) ToggleSubscription(ctx context.Context, viewerID, channelUserName string) (bool, error) {
	channel, err := s.users.FindByIdentifier(ctx, channelUserName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, apperr.New(apperr.NotFound, "channel does not exist")
		}
		return false, fmt.Errorf("find channel: %w", err)
	}
	if channel.ID == viewerID {
		return false, apperr.New(apperr.InvalidInput, "cannot subscribe to your own channel")
	}

	subscribed, err := s.subs.Toggle(ctx, viewerID, channel.ID)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}
	return subscribed, nil
}

func (s *UserService) sanitizedByID(ctx context.Context, userID string) (models.Sanitized, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.Sanitized{}, fmt.Errorf("reload user: %w", err)
	}
	return user.Sanitize(), nil
}

// storeImage validates the upload by magic bytes and writes it to the
// object store, returning the durable URL.
func (s *UserService) storeImage(ctx context.Context, userID, kind string, upload *ImageUpload) (string, error) {
	head := upload.Data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", apperr.New(apperr.InvalidInput, "unsupported image format")
	}

	objectKey := fmt.Sprintf("%s/%s-%s.%s", userID, kind, ids.New(), result.Type)
	url, err := s.media.Upload(ctx, objectKey, bytes.NewReader(upload.Data), int64(len(upload.Data)), result.MIME)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "image upload failed", err)
	}
	return url, nil
}
