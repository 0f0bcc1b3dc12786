package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/api/internal/service"
)

// Profile images above this size are rejected before hitting the store.
const maxImageBytes = 5 << 20

type authPayload struct {
	User         any    `json:"user,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h HandlerSet) Register(c *gin.Context) {
	input := service.RegisterInput{
		FullName: c.PostForm("fullName"),
		UserName: c.PostForm("userName"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	avatar, err := readImageFile(c, "avatar")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	input.Avatar = avatar

	cover, err := readImageFile(c, "coverImage")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	input.CoverImage = cover

	user, err := h.userService.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"user": user}, "user registered successfully")
}

type loginRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	identifier := req.UserName
	if identifier == "" {
		identifier = req.Email
	}

	result, err := h.authService.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	setAuthCookies(c, h.cfg.Auth, result.AccessToken, result.RefreshToken)
	respond(c, http.StatusOK, gin.H{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "login successful")
}

func (h HandlerSet) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}

	clearAuthCookies(c, h.cfg.Auth)
	respond(c, http.StatusOK, gin.H{}, "logged out")
}

func (h HandlerSet) RefreshToken(c *gin.Context) {
	presented := refreshTokenFromRequest(c)

	result, err := h.authService.Refresh(c.Request.Context(), presented)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	setAuthCookies(c, h.cfg.Auth, result.AccessToken, result.RefreshToken)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}

	// the active session was revoked; the client must log in again
	clearAuthCookies(c, h.cfg.Auth)
	respond(c, http.StatusOK, gin.H{}, "password changed")
}

// readImageFile buffers an optional multipart image field. Absent field
// returns nil without error; the service decides whether it was required.
func readImageFile(c *gin.Context, field string) (*service.ImageUpload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return bufferImage(fileHeader)
}

func bufferImage(fileHeader *multipart.FileHeader) (*service.ImageUpload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, errImageTooLarge
	}

	return &service.ImageUpload{
		Data:     data,
		FileName: fileHeader.Filename,
	}, nil
}
