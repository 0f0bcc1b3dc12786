package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube/api/internal/apperr"
)

var pngImage = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)

func newUserServiceFixture() (*UserService, *fakeUserStore, *fakeSubscriptionStore, *fakeMediaStore) {
	users := newFakeUserStore()
	subs := newFakeSubscriptionStore(users)
	media := &fakeMediaStore{}
	svc := NewUserService(users, subs, media, zerolog.Nop())
	return svc, users, subs, media
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName: "Alice Smith",
		UserName: "Alice",
		Email:    "alice@x.com",
		Password: "secret1",
		Avatar:   &ImageUpload{Data: pngImage, FileName: "avatar.png"},
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a sanitized record with a lowercased username", func(t *testing.T) {
		svc, _, _, media := newUserServiceFixture()

		user, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)

		assert.Equal(t, "alice", user.UserName)
		assert.Equal(t, "alice@x.com", user.Email)
		assert.NotEmpty(t, user.ID)
		assert.True(t, strings.HasPrefix(user.AvatarURL, "https://media.test/"))
		assert.Empty(t, user.CoverImageURL)
		assert.Len(t, media.uploads, 1)
	})

	t.Run("stores the optional cover image", func(t *testing.T) {
		svc, _, _, media := newUserServiceFixture()

		input := validRegisterInput()
		input.CoverImage = &ImageUpload{Data: pngImage, FileName: "cover.png"}

		user, err := svc.Register(ctx, input)
		require.NoError(t, err)
		assert.NotEmpty(t, user.CoverImageURL)
		assert.Len(t, media.uploads, 2)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		svc, _, _, _ := newUserServiceFixture()

		for _, mutate := range []func(*RegisterInput){
			func(in *RegisterInput) { in.FullName = "  " },
			func(in *RegisterInput) { in.UserName = "" },
			func(in *RegisterInput) { in.Email = "" },
			func(in *RegisterInput) { in.Password = "" },
		} {
			input := validRegisterInput()
			mutate(&input)
			_, err := svc.Register(ctx, input)
			assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
		}
	})

	t.Run("rejects a missing avatar", func(t *testing.T) {
		svc, _, _, _ := newUserServiceFixture()

		input := validRegisterInput()
		input.Avatar = nil
		_, err := svc.Register(ctx, input)
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})

	t.Run("rejects a non-image avatar", func(t *testing.T) {
		svc, _, _, _ := newUserServiceFixture()

		input := validRegisterInput()
		input.Avatar = &ImageUpload{Data: []byte("<script>alert(1)</script>"), FileName: "avatar.png"}
		_, err := svc.Register(ctx, input)
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})

	t.Run("duplicate username conflicts case-insensitively", func(t *testing.T) {
		svc, _, _, _ := newUserServiceFixture()

		_, err := svc.Register(ctx, validRegisterInput())
		require.NoError(t, err)

		dup := validRegisterInput()
		dup.UserName = "ALICE"
		dup.Email = "other@x.com"
		_, err = svc.Register(ctx, dup)
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

		dup = validRegisterInput()
		dup.UserName = "bob"
		dup.Email = "alice@x.com"
		_, err = svc.Register(ctx, dup)
		assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	})
}

func TestUserService_UpdateAccount(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newUserServiceFixture()

	registered, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	updated, err := svc.UpdateAccount(ctx, registered.ID, "Alice Jones", "alice.jones@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", updated.FullName)
	assert.Equal(t, "alice.jones@x.com", updated.Email)

	_, err = svc.UpdateAccount(ctx, registered.ID, "", "alice.jones@x.com")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	_, err = svc.UpdateAccount(ctx, "missing-id", "Alice Jones", "alice.jones@x.com")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUserService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newUserServiceFixture()

	registered, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	originalURL := registered.AvatarURL

	updated, err := svc.UpdateAvatar(ctx, registered.ID, &ImageUpload{Data: pngImage, FileName: "new.png"})
	require.NoError(t, err)
	assert.NotEqual(t, originalURL, updated.AvatarURL)

	_, err = svc.UpdateAvatar(ctx, registered.ID, nil)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestUserService_ChannelProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newUserServiceFixture()

	alice, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	bobInput := validRegisterInput()
	bobInput.UserName = "bob"
	bobInput.Email = "bob@x.com"
	bob, err := svc.Register(ctx, bobInput)
	require.NoError(t, err)

	t.Run("missing channel is not found", func(t *testing.T) {
		_, err := svc.GetChannelProfile(ctx, "nobody", bob.ID)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})

	t.Run("counts subscribers and reports membership", func(t *testing.T) {
		subscribed, err := svc.ToggleSubscription(ctx, bob.ID, "Alice")
		require.NoError(t, err)
		assert.True(t, subscribed)

		profile, err := svc.GetChannelProfile(ctx, "ALICE", bob.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, profile.User.ID)
		assert.Equal(t, 1, profile.SubscriberCount)
		assert.Equal(t, 0, profile.SubscribedTo)
		assert.True(t, profile.IsSubscribed)

		// another viewer is not a member
		profile, err = svc.GetChannelProfile(ctx, "alice", "someone-else")
		require.NoError(t, err)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("toggle unsubscribes on the second call", func(t *testing.T) {
		subscribed, err := svc.ToggleSubscription(ctx, bob.ID, "alice")
		require.NoError(t, err)
		assert.False(t, subscribed)

		profile, err := svc.GetChannelProfile(ctx, "alice", bob.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, profile.SubscriberCount)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("self-subscription is rejected", func(t *testing.T) {
		_, err := svc.ToggleSubscription(ctx, alice.ID, "alice")
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	})
}
