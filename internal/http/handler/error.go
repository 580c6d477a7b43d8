package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"issueapi/internal/apperr"
	"issueapi/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

// errorEnvelope carries Field for single-field errors such as attachment
// rejections and Fields for per-field validation messages.
type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeEnvelope(c, status, errorEnvelope{Code: code, Message: message})
}

func writeEnvelope(c *fiber.Ctx, status int, env errorEnvelope) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error:     env,
	})
}

// writeAppError maps a core error to its HTTP status. Storage failures and
// untyped errors are logged with full context and answered generically.
func writeAppError(c *fiber.Ctx, log *zap.Logger, err error) error {
	e, ok := apperr.As(err)
	if !ok {
		logInternal(c, log, err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	switch e.Kind {
	case apperr.KindValidation:
		return writeEnvelope(c, fiber.StatusBadRequest, errorEnvelope{
			Code: string(e.Kind), Message: e.Message, Fields: e.Fields,
		})
	case apperr.KindAttachmentRejected:
		return writeEnvelope(c, fiber.StatusBadRequest, errorEnvelope{
			Code: string(e.Kind), Message: e.Field + ": " + e.Message, Field: e.Field,
		})
	case apperr.KindAuthorization:
		return writeError(c, fiber.StatusForbidden, string(e.Kind), e.Message)
	case apperr.KindNotFound:
		return writeError(c, fiber.StatusNotFound, string(e.Kind), e.Message)
	}

	logInternal(c, log, err)
	return writeError(c, fiber.StatusInternalServerError, string(apperr.KindStorage), "internal server error")
}

func logInternal(c *fiber.Ctx, log *zap.Logger, err error) {
	if log == nil {
		return
	}
	log.Error("request_failed",
		zap.String("request_id", middleware.RequestIDFrom(c)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
