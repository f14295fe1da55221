package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string      `json:"error"`             // human-readable message
	Code    string      `json:"code"`              // machine code (codes.go)
	Details interface{} `json:"details,omitempty"` // field map or passthrough detail text
}

// exposeInternalDetails controls whether 500 responses carry the underlying
// error text. Set once at startup, before the router serves requests.
var exposeInternalDetails = true

func SetExposeInternalDetails(expose bool) {
	exposeInternalDetails = expose
}

// RespondWithError writes an error reply with the given status and code.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: message,
		Code:  errorCode,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

// InternalError replies 500; err's text is passed through as details unless
// running in production.
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "Internal server error"
	}
	resp := ErrorResponse{
		Error: message,
		Code:  InternalServerError,
	}
	if err != nil && exposeInternalDetails {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}

// RespondWithValidationError replies 400 with one message per invalid field.
func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Code:    ValidationInvalidInput,
		Details: fields,
	})
}
