package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vidtube/api/internal/apperr"
	"vidtube/api/internal/ids"
	"vidtube/api/internal/models"
	"vidtube/api/internal/repository"
	"vidtube/api/internal/security"
)

// User-facing failure messages. Token verification sub-reasons are
// deliberately collapsed into one message.
const (
	msgInvalidCredentials = "invalid credentials"
	msgStaleSession       = "invalid or expired session"
	msgTooManyAttempts    = "too many login attempts, try again later"
)

type AuthService struct {
	users         UserStore
	sessions      SessionStore
	issuer        *security.TokenIssuer
	cache         *redis.Client
	maxAttempts   int
	attemptWindow time.Duration
	log           zerolog.Logger
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	issuer *security.TokenIssuer,
	cache *redis.Client,
	maxAttempts int,
	attemptWindow time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		issuer:        issuer,
		cache:         cache,
		maxAttempts:   maxAttempts,
		attemptWindow: attemptWindow,
		log:           log,
	}
}

type AuthResult struct {
	User         models.Sanitized
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return AuthResult{}, apperr.New(apperr.InvalidInput, "username or email and password are required")
	}

	if s.throttled(ctx, identifier) {
		return AuthResult{}, apperr.New(apperr.Unauthorized, msgTooManyAttempts)
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.New(apperr.NotFound, "user does not exist")
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		s.recordFailure(ctx, identifier)
		return AuthResult{}, apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}

	result, err := s.startSession(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	s.clearFailures(ctx, identifier)
	return result, nil
}

// startSession issues a fresh token pair and installs it as the account's
// only active session, displacing any previous one.
func (s *AuthService) startSession(ctx context.Context, user models.User) (AuthResult, error) {
	accessToken, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		RefreshTokenHash: security.HashToken(refreshToken),
		ExpiresAt:        time.Now().Add(s.issuer.RefreshTTL()),
	}
	if err := s.sessions.Replace(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("persist session: %w", err)
	}

	return AuthResult{
		User:         user.Sanitize(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh rotates the token pair. The presented token must verify against
// the refresh secret AND hash-match the persisted session; the rotation is
// a conditional update, so of two concurrent refreshes with the same token
// at most one wins.
func (s *AuthService) Refresh(ctx context.Context, presented string) (AuthResult, error) {
	if presented == "" {
		return AuthResult{}, apperr.New(apperr.Unauthorized, msgStaleSession)
	}

	claims, err := s.issuer.Verify(presented, security.TokenKindRefresh)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh token rejected")
		return AuthResult{}, apperr.New(apperr.Unauthorized, msgStaleSession)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.New(apperr.Unauthorized, msgStaleSession)
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	accessToken, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue refresh token: %w", err)
	}

	rotated := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		RefreshTokenHash: security.HashToken(refreshToken),
		ExpiresAt:        time.Now().Add(s.issuer.RefreshTTL()),
	}
	if err := s.sessions.Rotate(ctx, rotated, security.HashToken(presented)); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return AuthResult{}, apperr.New(apperr.Unauthorized, msgStaleSession)
		}
		return AuthResult{}, fmt.Errorf("rotate session: %w", err)
	}

	return AuthResult{
		User:         user.Sanitize(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout is idempotent: clearing an already-cleared session succeeds.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ChangePassword re-verifies the current password before accepting the new
// one, then revokes the active session so stolen refresh tokens die with
// the old password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if strings.TrimSpace(next) == "" {
		return apperr.New(apperr.InvalidInput, "new password is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.New(apperr.NotFound, "user does not exist")
		}
		return fmt.Errorf("find user: %w", err)
	}

	if !security.VerifyPassword(current, user.PasswordHash) {
		return apperr.New(apperr.Unauthorized, msgInvalidCredentials)
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("revoke sessions after password change failed")
	}
	return nil
}

// Login throttling is advisory: if redis is down the login path proceeds.

func (s *AuthService) throttled(ctx context.Context, identifier string) bool {
	if s.cache == nil || s.maxAttempts <= 0 {
		return false
	}
	count, err := s.cache.Get(ctx, attemptKey(identifier)).Int()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Msg("login throttle lookup failed")
		}
		return false
	}
	return count >= s.maxAttempts
}

func (s *AuthService) recordFailure(ctx context.Context, identifier string) {
	if s.cache == nil {
		return
	}
	key := attemptKey(identifier)
	count, err := s.cache.Incr(ctx, key).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle incr failed")
		return
	}
	if count == 1 {
		s.cache.Expire(ctx, key, s.attemptWindow)
	}
}

func (s *AuthService) clearFailures(ctx context.Context, identifier string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, attemptKey(identifier))
}

func attemptKey(identifier string) string {
	return "login_attempts:" + strings.ToLower(identifier)
}
