package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/enterprise-suite/authgate/internal/auth"
)

// ErrNilEnv is returned by Init when the app or env is missing.
var ErrNilEnv = errors.New(ErrNilACDFatalLogMsg)

// ErrorHandler renders every error as a JSON {error, detail} body.
// Unknown errors become a generic 500, the cause is only logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return c.Status(authErr.Status).JSON(authErr.Payload())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error":  statusCode(fiberErr.Code),
			"detail": fiberErr.Message,
		})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":  "INTERNAL_ERROR",
		"detail": "Internal server error",
	})
}

// statusCode turns 404 into "NOT_FOUND".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}

	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
