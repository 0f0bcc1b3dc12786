package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vidtube/api/internal/config"
	"vidtube/api/internal/middleware"
	"vidtube/api/internal/repository"
	"vidtube/api/internal/security"
	"vidtube/api/internal/service"
	"vidtube/api/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService *service.AuthService
	userService *service.UserService
	issuer      *security.TokenIssuer
	db          *pgxpool.Pool
	cache       *redis.Client
	users       *repository.UserRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	issuer := security.NewTokenIssuer(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	auth := service.NewAuthService(userRepo, sessionRepo, issuer, cache, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginAttemptWindow, log)
	users := service.NewUserService(userRepo, subscriptionRepo, store, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		userService: users,
		issuer:      issuer,
		db:          db,
		cache:       cache,
		users:       userRepo,
	}
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	users := v1.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh-token", h.RefreshToken)

		authed := users.Group("")
		authed.Use(middleware.Auth(h.issuer, h.users))
		authed.POST("/logout", h.Logout)
		authed.POST("/change-password", h.ChangePassword)
		authed.GET("/current-user", h.CurrentUser)
		authed.PATCH("/update-account", h.UpdateAccount)
		authed.PATCH("/avatar", h.UpdateAvatar)
		authed.PATCH("/cover-image", h.UpdateCoverImage)
		authed.GET("/c/:username", h.ChannelProfile)
		authed.POST("/c/:username/subscribe", h.ToggleSubscription)
	}
}
