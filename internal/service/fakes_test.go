package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"vidtube/api/internal/models"
	"vidtube/api/internal/repository"
)

// In-memory fakes for the store interfaces. The session fake reproduces the
// conditional-update semantics of the real repository so rotation races can
// be exercised without Postgres.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.UserName, user.UserName) || existing.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByIdentifier(_ context.Context, identifier string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.UserName, identifier) || user.Email == identifier {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) ExistsByUserNameOrEmail(_ context.Context, userName, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.UserName, userName) || user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateAccount(_ context.Context, id, fullName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.FullName = fullName
	user.Email = email
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdateAvatarURL(_ context.Context, id, url string) error {
	return f.updateField(id, func(u *models.User) { u.AvatarURL = url })
}

func (f *fakeUserStore) UpdateCoverImageURL(_ context.Context, id, url string) error {
	return f.updateField(id, func(u *models.User) { u.CoverImageURL = url })
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id string, hash []byte) error {
	return f.updateField(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f *fakeUserStore) updateField(id string, apply func(*models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	apply(&user)
	f.users[id] = user
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session // keyed by user id
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.Session)}
}

func (f *fakeSessionStore) Replace(_ context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.UserID] = session
	return nil
}

func (f *fakeSessionStore) Rotate(_ context.Context, session models.Session, oldHash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.sessions[session.UserID]
	if !ok || !bytes.Equal(current.RefreshTokenHash, oldHash) {
		return repository.ErrSessionNotFound
	}
	f.sessions[session.UserID] = session
	return nil
}

func (f *fakeSessionStore) DeleteByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

func (f *fakeSessionStore) get(userID string) (models.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[userID]
	return session, ok
}

type fakeSubscriptionStore struct {
	mu    sync.Mutex
	users *fakeUserStore
	edges map[string]struct{} // "subscriber->channel"
}

func newFakeSubscriptionStore(users *fakeUserStore) *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		users: users,
		edges: make(map[string]struct{}),
	}
}

func edgeKey(subscriberID, channelID string) string {
	return subscriberID + "->" + channelID
}

func (f *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := edgeKey(subscriberID, channelID)
	if _, ok := f.edges[key]; ok {
		delete(f.edges, key)
		return false, nil
	}
	f.edges[key] = struct{}{}
	return true, nil
}

func (f *fakeSubscriptionStore) GetChannelProfile(ctx context.Context, userName, viewerID string) (models.ChannelProfile, error) {
	channel, err := f.users.FindByIdentifier(ctx, userName)
	if err != nil {
		return models.ChannelProfile{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	profile := models.ChannelProfile{User: channel.Sanitize()}
	for key := range f.edges {
		parts := strings.SplitN(key, "->", 2)
		if parts[1] == channel.ID {
			profile.SubscriberCount++
			if parts[0] == viewerID {
				profile.IsSubscribed = true
			}
		}
		if parts[0] == channel.ID {
			profile.SubscribedTo++
		}
	}
	return profile, nil
}

type fakeMediaStore struct {
	mu      sync.Mutex
	uploads []string
	fail    error
}

func (f *fakeMediaStore) Upload(_ context.Context, objectKey string, r io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return "", f.fail
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, objectKey)
	return fmt.Sprintf("https://media.test/%s", objectKey), nil
}
