// internal/utils/response.go
package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every endpoint that is not part of the
// relay contract
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError describes why a request failed
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

const codeValidation = "VALIDATION_ERROR"

var errorCodes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusInternalServerError: "INTERNAL_SERVER_ERROR",
	http.StatusBadGateway:          "PRINTER_UNAVAILABLE",
	http.StatusServiceUnavailable:  "SERVICE_UNAVAILABLE",
}

// SuccessResponse writes data inside the envelope
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	respond(c, statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes an error envelope. err, when set, becomes the details.
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	apiError := &APIError{
		Code:    ErrorCode(statusCode),
		Message: message,
	}
	if err != nil {
		apiError.Details = err.Error()
	}

	respond(c, statusCode, APIResponse{
		Message: message,
		Error:   apiError,
	})
}

// ValidationErrorResponse writes a 400 naming each rejected field
func ValidationErrorResponse(c *gin.Context, fields map[string]string) {
	respond(c, http.StatusBadRequest, APIResponse{
		Message: "Validation failed",
		Error: &APIError{
			Code:    codeValidation,
			Message: "Request validation failed",
			Fields:  fields,
		},
	})
}

// ErrorCode returns the machine readable code for an HTTP status
func ErrorCode(statusCode int) string {
	if code, ok := errorCodes[statusCode]; ok {
		return code
	}
	return "UNKNOWN_ERROR"
}

func respond(c *gin.Context, statusCode int, response APIResponse) {
	response.Timestamp = time.Now().UTC()
	response.RequestID = c.GetString("request_id")
	c.JSON(statusCode, response)
}
