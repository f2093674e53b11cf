// Package authn provides the signup, login and identity endpoints.
package authn

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
	"github.com/pressroom-io/pressroom/internal/web/handler"
)

const (
	// Path is the base path for authentication endpoints.
	Path = handler.APIPath + "/auth"
)

var (
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 8

// Service provides the authentication handlers.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	validator   *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// credentialsInput is the request body of signup and login.
type credentialsInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.validator = validator.New()

	app.Post(Path+"/signup", s.Signup)
	app.Post(Path+"/login", s.Login)
	app.Get(Path+"/me",
		auth.Authenticated(authService),
		s.Me,
	)
	app.Get(Path+"/has",
		auth.Authenticated(authService),
		s.Has,
	)
}

// Signup creates a new user account and best-effort assigns the default
// low-privilege role.
func (s *Service) Signup(c *fiber.Ctx) error {
	input := new(credentialsInput)

	if err := c.BodyParser(input); err != nil || input.Email == "" || input.Password == "" {
		return handler.Error(c, fiber.StatusBadRequest, "Email and password are required")
	}

	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Invalid email format")
	}

	if !validPassword(input.Password) {
		return handler.Error(c, fiber.StatusBadRequest,
			"Password must be at least 8 characters and contain both letters and numbers")
	}

	user := models.User{
		Email:    models.NormalizeEmail(input.Email),
		Password: models.HashPassword(input.Password),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return handler.StorageError(c, err,
			"Email already exists", "Not found", "signup: create user failed")
	}

	// Role assignment is best-effort: a missing default role must not
	// fail the signup response.
	s.assignDefaultRole(user.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}

// assignDefaultRole grants the configured signup role, falling back to
// "user" when it does not exist. Failures are logged, never surfaced.
func (s *Service) assignDefaultRole(userID uint64) {
	var role models.Role

	err := s.db.Where("name = ?", s.cfg.Auth.DefaultRole).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.Where("name = ?", "user").First(&role).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("role", s.cfg.Auth.DefaultRole).
			Msg("default role not found; new user created without an assigned role")
		return
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to look up default role")
		return
	}

	if err := s.db.Create(&models.UserRole{UserID: userID, RoleID: role.ID}).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Str("role", role.Name).
			Msg("failed to assign default role to new user")
	}
}

// Login verifies credentials and returns a bearer token valid for the
// configured token TTL.
func (s *Service) Login(c *fiber.Ctx) error {
	input := new(credentialsInput)

	if err := c.BodyParser(input); err != nil || input.Email == "" || input.Password == "" {
		return handler.Error(c, fiber.StatusBadRequest, "Email and password are required")
	}

	user, err := s.authService.Login(input.Email, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		// Identical shape for unknown email and wrong password.
		return handler.Error(c, fiber.StatusUnauthorized, "Invalid email or password")
	}

	if err != nil {
		return handler.Internal(c, err, "login failed")
	}

	token, err := s.authService.IssueToken(user.ID, user.Email)
	if err != nil {
		return handler.Internal(c, err, "failed to issue token")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// Me returns the authenticated subject with freshly resolved role names.
func (s *Service) Me(c *fiber.Ctx) error {
	subject := auth.SubjectFromCtx(c)

	roles := subject.Roles
	if roles == nil {
		roles = []string{}
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    subject.ID,
			"email": subject.Email,
			"roles": roles,
		},
	})
}

// Has answers whether the subject holds the queried permission.
func (s *Service) Has(c *fiber.Ctx) error {
	subject := auth.SubjectFromCtx(c)

	permission := c.Query("permission")
	if permission == "" {
		return handler.Error(c, fiber.StatusBadRequest, "permission query param is required")
	}

	allowed, err := s.authService.HasPermission(subject.ID, permission)
	if err != nil {
		return handler.Internal(c, err, "permission check failed")
	}

	return c.JSON(fiber.Map{"allowed": allowed})
}

func validPassword(password string) bool {
	return len(password) >= minPasswordLen &&
		hasLetter.MatchString(password) &&
		hasDigit.MatchString(password)
}
