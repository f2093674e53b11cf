package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// subjectLocalsKey is where Authenticated stores the Subject in the
// request Locals.
const subjectLocalsKey = "subject"

// SubjectFromCtx returns the authenticated Subject placed in the request
// Locals by the Authenticated middleware, or nil when the request never
// passed through it.
func SubjectFromCtx(c *fiber.Ctx) *Subject {
	subject, ok := c.Locals(subjectLocalsKey).(*Subject)
	if !ok {
		return nil
	}

	return subject
}

// Authenticated creates Fiber middleware that rejects requests without a
// valid bearer token and stores the resolved Subject in the Locals for
// downstream handlers.
func Authenticated(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, err := authService.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
			}

			log.Error().Err(err).Msg("Failed to authenticate request")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}

		c.Locals(subjectLocalsKey, subject)

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific
// permission. It must run after Authenticated.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := SubjectFromCtx(c)
		if subject == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		err := authService.RequirePermission(subject.ID, permission)
		if errors.Is(err, ErrForbidden) {
			log.Warn().Uint64("user_id", subject.ID).Str("permission", permission).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: missing permission"})
		}

		if err != nil {
			log.Error().Err(err).Uint64("user_id", subject.ID).Str("permission", permission).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}

		return c.Next()
	}
}

// RequireAdmin creates Fiber middleware that requires the superuser
// role. It must run after Authenticated.
func RequireAdmin(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := SubjectFromCtx(c)
		if subject == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		err := authService.RequireAdmin(subject.ID)
		if errors.Is(err, ErrForbidden) {
			log.Warn().Uint64("user_id", subject.ID).Msg("User is not an admin")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: admin only"})
		}

		if err != nil {
			log.Error().Err(err).Uint64("user_id", subject.ID).Msg("Failed to check admin role")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}

		return c.Next()
	}
}
