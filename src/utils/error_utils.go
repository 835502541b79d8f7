// error_utils.go
package utils

import (
	"log/slog"

	"Backend-PMS/src/models"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/oops"
)

// Error codes carried by oops errors across the service layer.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeDuplicateEmail = "DUPLICATE_EMAIL"
	CodeNotFound       = "NOT_FOUND"
	CodeAuthFailure    = "AUTH_FAILURE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeForbidden      = "FORBIDDEN"
	CodeInternal       = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	CodeValidation:     fiber.StatusBadRequest,
	CodeDuplicateEmail: fiber.StatusBadRequest,
	CodeNotFound:       fiber.StatusNotFound,
	CodeAuthFailure:    fiber.StatusUnauthorized,
	CodeRateLimited:    fiber.StatusTooManyRequests,
	CodeForbidden:      fiber.StatusForbidden,
}

// ValidationError builds a VALIDATION_ERROR with a client-facing message.
func ValidationError(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

// NotFoundError builds a NOT_FOUND error.
func NotFoundError(format string, args ...any) error {
	return oops.Code(CodeNotFound).Errorf(format, args...)
}

// AuthFailure builds an AUTH_FAILURE error.
func AuthFailure(format string, args ...any) error {
	return oops.Code(CodeAuthFailure).Errorf(format, args...)
}

// ForbiddenError builds a FORBIDDEN error.
func ForbiddenError(format string, args ...any) error {
	return oops.Code(CodeForbidden).Errorf(format, args...)
}

// ErrorCode extracts the oops code of err, or "" for plain errors.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// HasCode reports whether err carries code.
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// StatusFromError maps an error to its HTTP status; unknown errors are 500.
func StatusFromError(err error) int {
	if status, ok := codeStatus[ErrorCode(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// HandleError writes err as {message, error?}. fallback is the message used for 500s,
// whose underlying error is passed through in "error".
func HandleError(c *fiber.Ctx, err error, fallback string) error {
	status := StatusFromError(err)
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed",
			"path", c.Path(),
			"method", c.Method(),
			"code", ErrorCode(err),
			"error", err.Error())
		return c.Status(status).JSON(models.ErrorResponse{
			Message: fallback,
			Error:   err.Error(),
		})
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Message: err.Error(),
	})
}
