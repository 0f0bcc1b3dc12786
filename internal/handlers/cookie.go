package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidtube/api/internal/config"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// Both auth cookies are httpOnly; secure comes from config so local
// development over plain http still works.

func setAuthCookies(c *gin.Context, cfg config.AuthConfig, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, accessToken, int(cfg.AccessTokenTTL/time.Second), "/", cfg.CookieDomain, cfg.CookieSecure, true)
	c.SetCookie(refreshTokenCookie, refreshToken, int(cfg.RefreshTokenTTL/time.Second), "/", cfg.CookieDomain, cfg.CookieSecure, true)
}

func clearAuthCookies(c *gin.Context, cfg config.AuthConfig) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", cfg.CookieDomain, cfg.CookieSecure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", cfg.CookieDomain, cfg.CookieSecure, true)
}

// refreshTokenFromRequest accepts the refresh token from the cookie or,
// for non-browser clients, the request body.
func refreshTokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(refreshTokenCookie); err == nil && token != "" {
		return token
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}
