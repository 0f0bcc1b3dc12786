package models

import "time"

type User struct {
	ID            string
	UserName      string
	Email         string
	FullName      string
	PasswordHash  []byte
	AvatarURL     string
	CoverImageURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Sanitized is the outward view of a user record. The password hash never
// leaves the process.
type Sanitized struct {
	ID            string `json:"id"`
	UserName      string `json:"userName"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	AvatarURL     string `json:"avatarUrl"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
}

func (u User) Sanitize() Sanitized {
	return Sanitized{
		ID:            u.ID,
		UserName:      u.UserName,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
}

// Session is the single active session for an account. Login replaces it,
// refresh rotates the stored hash, logout deletes it.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash []byte
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// ChannelProfile is the subscriber-graph projection of a user.
type ChannelProfile struct {
	User            Sanitized `json:"user"`
	SubscriberCount int       `json:"subscriberCount"`
	SubscribedTo    int       `json:"subscribedToCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
}
