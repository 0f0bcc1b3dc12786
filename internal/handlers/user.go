package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/api/internal/middleware"
	"vidtube/api/internal/models"
)

var errImageTooLarge = errors.New("image exceeds the 5 MB limit")

// currentUser pulls the authenticated user placed by the auth middleware.
// A miss means the route was wired without the middleware; treat it as
// unauthorized rather than panicking.
func currentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(middleware.CurrentUserKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiErrorResponse{
			StatusCode: http.StatusUnauthorized,
			Message:    "invalid or expired session",
			Success:    false,
			Errors:     []string{},
		})
		return models.User{}, false
	}

	user, ok := val.(models.User)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiErrorResponse{
			StatusCode: http.StatusUnauthorized,
			Message:    "invalid or expired session",
			Success:    false,
			Errors:     []string{},
		})
		return models.User{}, false
	}
	return user, true
}

func (h HandlerSet) CurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user.Sanitize()}, "current user")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h HandlerSet) UpdateAccount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateAccount(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": updated}, "account updated")
}

func (h HandlerSet) UpdateAvatar(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	upload, err := readImageFile(c, "avatar")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	updated, err := h.userService.UpdateAvatar(c.Request.Context(), user.ID, upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": updated}, "avatar updated")
}

func (h HandlerSet) UpdateCoverImage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	upload, err := readImageFile(c, "coverImage")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	updated, err := h.userService.UpdateCoverImage(c.Request.Context(), user.ID, upload)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": updated}, "cover image updated")
}

func (h HandlerSet) ChannelProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetChannelProfile(c.Request.Context(), c.Param("username"), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, profile, "channel profile")
}

func (h HandlerSet) ToggleSubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	subscribed, err := h.userService.ToggleSubscription(c.Request.Context(), user.ID, c.Param("username"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respond(c, http.StatusOK, gin.H{"subscribed": subscribed}, message)
}
