package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldlane/fieldlane-auth/internal/service"
)

// Envelope is the shape every endpoint responds with.
type Envelope struct {
	Status  bool                 `json:"status"`
	Message string               `json:"message"`
	Data    any                  `json:"data,omitempty"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

// Success writes a 200 envelope without a payload.
func Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Status: true, Message: message})
}

// SuccessWithData writes a 200 envelope carrying a payload.
func SuccessWithData(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Status: true, Message: message, Data: data})
}

// Unauthorized writes a 401 envelope.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Envelope{Status: false, Message: message})
}

// InternalErrorMessage is the only text unexpected failures expose. The
// underlying cause stays in the logs.
const InternalErrorMessage = "Internal Server Error."

// FromError maps a flow error onto the envelope, defaulting to a 500.
func FromError(c *gin.Context, err error) {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		c.JSON(authErr.Status, Envelope{
			Status:  false,
			Message: authErr.Message,
			Errors:  authErr.Fields,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Envelope{Status: false, Message: InternalErrorMessage})
}
