package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Error writes the JSON error envelope used across the API.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// Internal logs the underlying cause and answers with a generic message,
// never leaking storage internals to the client.
func Internal(c *fiber.Ctx, err error, logMsg string) error {
	log.Error().Err(err).Msg(logMsg)

	return Error(c, fiber.StatusInternalServerError, "Internal server error")
}

// StorageError maps constraint violations from the database to the API
// error taxonomy: duplicates become 409 Conflict, missing rows 404 Not
// Found, anything else a logged 500.
func StorageError(c *fiber.Ctx, err error, conflictMsg, notFoundMsg, logMsg string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Error(c, fiber.StatusConflict, conflictMsg)
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, gorm.ErrForeignKeyViolated):
		return Error(c, fiber.StatusNotFound, notFoundMsg)
	default:
		return Internal(c, err, logMsg)
	}
}

// LookupError is StorageError for plain reads, where a duplicate key
// cannot occur: missing rows become 404 Not Found, anything else a
// logged 500.
func LookupError(c *fiber.Ctx, err error, notFoundMsg, logMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Error(c, fiber.StatusNotFound, notFoundMsg)
	}

	return Internal(c, err, logMsg)
}
