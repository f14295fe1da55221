package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the HTTP shape of a store error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError maps store errors that escaped the service layer to a status and
// code. context names the failed action, e.g. "create product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: defaultMessage(context),
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: "Resource not found"}
	}

	errLower := strings.ToLower(err.Error())

	// Unique violations: translated by gorm, or raw text from drivers that are not.
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		if strings.Contains(errLower, "code") || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrorInfo{Status: http.StatusConflict, Code: ProductCodeConflict, Message: "Product code already exists"}
		}
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "Resource already exists"}
	}

	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: "Input violates a store constraint"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "bad connection") {
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalDatabaseError, Message: "Database unavailable"}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: defaultMessage(context),
	}
}

func defaultMessage(context string) string {
	if context == "" {
		return "Internal server error"
	}
	return "Failed to " + context
}

// ParseAndRespond parses err and writes the reply; 500s carry details per
// SetExposeInternalDetails.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	resp := ErrorResponse{Error: info.Message, Code: info.Code}
	if info.Status == http.StatusInternalServerError && err != nil && exposeInternalDetails {
		resp.Details = err.Error()
	}
	c.JSON(info.Status, resp)
}
