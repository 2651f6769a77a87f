package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standardized API envelope: {success, error_code?, message,
// data?}. Every handler, including denials and internal failures, answers
// with this shape; nothing propagates as an unstructured error.
type Response struct {
	Success   bool              `json:"success"`
	ErrorCode ErrCode           `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   true,
		Message:   "ok",
		Data:      data,
		RequestID: c.GetString(ContextKeyRequestID),
	})
}

// Fail sends an error response with an error code and no field-level details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Response{
		Success:   false,
		ErrorCode: code,
		Message:   GetMessage(code),
		RequestID: c.GetString(ContextKeyRequestID),
	})
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, Response{
		Success:   false,
		ErrorCode: code,
		Message:   GetMessage(code),
		Fields:    fields,
		RequestID: c.GetString(ContextKeyRequestID),
	})
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success:   false,
		ErrorCode: code,
		Message:   GetMessage(code),
		RequestID: c.GetString(ContextKeyRequestID),
	})
}

// Internal is the catch-all for unexpected failures.
func Internal(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, ErrInternal)
}
