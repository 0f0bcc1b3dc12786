package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vidtube/api/internal/apperr"
)

// Response envelopes. The HTTP status always mirrors statusCode.

type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type apiErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// respondError maps the error taxonomy to its status and user-facing
// message. Unclassified errors become a logged 500 with a generic message.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.JSON(status, apiErrorResponse{
		StatusCode: status,
		Message:    apperr.MessageOf(err),
		Success:    false,
		Errors:     []string{},
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(400, apiErrorResponse{
		StatusCode: 400,
		Message:    message,
		Success:    false,
		Errors:     []string{},
	})
}
