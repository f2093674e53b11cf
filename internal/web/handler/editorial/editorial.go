// Package editorial provides handlers for published editorial content.
// Reads are public; mutations are gated on the journal permissions with
// ownership-scoped edit and delete.
package editorial

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
	"github.com/pressroom-io/pressroom/internal/web/handler"
)

const (
	// Path is the base path for editorial content.
	Path = handler.APIPath + "/editorials"
)

// Service provides the editorial content handlers.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

type editorialInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
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

	app.Get(Path, s.List)
	app.Get(Path+"/:id", s.Get)

	app.Post(Path,
		auth.Authenticated(authService),
		auth.RequirePermission(authService, auth.PermJournalCreate),
		s.Create,
	)
	app.Put(Path+"/:id",
		auth.Authenticated(authService),
		s.Update,
	)
	app.Delete(Path+"/:id",
		auth.Authenticated(authService),
		s.Delete,
	)
}

// List returns all editorials, newest first, with author emails.
func (s *Service) List(c *fiber.Ctx) error {
	var editorials []models.Editorial

	err := s.db.Preload("Author").Order("created_at DESC").Find(&editorials).Error
	if err != nil {
		return handler.Internal(c, err, "query editorials failed")
	}

	out := make([]fiber.Map, 0, len(editorials))
	for i := range editorials {
		out = append(out, render(&editorials[i]))
	}

	return c.JSON(out)
}

// Get returns a single editorial.
func (s *Service) Get(c *fiber.Ctx) error {
	editorialID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Not found")
	}

	var editorial models.Editorial
	if err := s.db.Preload("Author").First(&editorial, editorialID).Error; err != nil {
		return handler.LookupError(c, err, "Not found", "load editorial failed")
	}

	return c.JSON(render(&editorial))
}

// Create publishes a new editorial owned by the authenticated subject.
func (s *Service) Create(c *fiber.Ctx) error {
	subject := auth.SubjectFromCtx(c)

	input := new(editorialInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Title is required")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return handler.Error(c, fiber.StatusBadRequest, "Title is required")
	}

	editorial := models.Editorial{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: subject.ID,
	}

	if err := s.db.Create(&editorial).Error; err != nil {
		return handler.Internal(c, err, "create editorial failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        editorial.ID,
		"title":     editorial.Title,
		"content":   editorial.Content,
		"authorId":  editorial.AuthorID,
		"createdAt": editorial.CreatedAt,
	})
}

// Update modifies an editorial. Existence is checked before the
// ownership decision so a missing resource is a 404, not a 403.
func (s *Service) Update(c *fiber.Ctx) error {
	subject := auth.SubjectFromCtx(c)

	editorialID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Not found")
	}

	var editorial models.Editorial
	if err := s.db.First(&editorial, editorialID).Error; err != nil {
		return handler.LookupError(c, err, "Not found", "load editorial failed")
	}

	err = s.authService.RequireOwned(subject.ID, editorial.AuthorID,
		auth.PermJournalEditAny, auth.PermJournalEditOwn)
	if errors.Is(err, auth.ErrForbidden) {
		return handler.Error(c, fiber.StatusForbidden, "Forbidden")
	}

	if err != nil {
		return handler.Internal(c, err, "editorial edit permission check failed")
	}

	input := new(editorialInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Title is required")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return handler.Error(c, fiber.StatusBadRequest, "Title is required")
	}

	editorial.Title = input.Title
	editorial.Content = input.Content

	if err := s.db.Save(&editorial).Error; err != nil {
		return handler.Internal(c, err, "update editorial failed")
	}

	return c.JSON(fiber.Map{
		"id":        editorial.ID,
		"title":     editorial.Title,
		"content":   editorial.Content,
		"authorId":  editorial.AuthorID,
		"updatedAt": editorial.UpdatedAt,
	})
}

// Delete removes an editorial, subject to the same ownership decision
// as Update but on the delete permissions.
func (s *Service) Delete(c *fiber.Ctx) error {
	subject := auth.SubjectFromCtx(c)

	editorialID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Not found")
	}

	var editorial models.Editorial
	if err := s.db.First(&editorial, editorialID).Error; err != nil {
		return handler.LookupError(c, err, "Not found", "load editorial failed")
	}

	err = s.authService.RequireOwned(subject.ID, editorial.AuthorID,
		auth.PermJournalDeleteAny, auth.PermJournalDeleteOwn)
	if errors.Is(err, auth.ErrForbidden) {
		return handler.Error(c, fiber.StatusForbidden, "Forbidden")
	}

	if err != nil {
		return handler.Internal(c, err, "editorial delete permission check failed")
	}

	if err := s.db.Delete(&editorial).Error; err != nil {
		return handler.Internal(c, err, "delete editorial failed")
	}

	return c.JSON(fiber.Map{"message": "Deleted"})
}

func render(editorial *models.Editorial) fiber.Map {
	return fiber.Map{
		"id":        editorial.ID,
		"title":     editorial.Title,
		"content":   editorial.Content,
		"authorId":  editorial.AuthorID,
		"author":    fiber.Map{"id": editorial.Author.ID, "email": editorial.Author.Email},
		"createdAt": editorial.CreatedAt,
		"updatedAt": editorial.UpdatedAt,
	}
}

func parseID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}
