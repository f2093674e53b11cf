// Package permission provides handlers for managing the permission
// catalogue (admin only) and the authenticated reverse lookup of the
// roles a permission is mapped onto.
package permission

import (
	"strconv"
	"strings"

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
	// Path is the base path for permission management.
	Path = handler.APIPath + "/permissions"
)

// Service provides CRUD operations for permissions.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

type permissionInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// Init registers routes. Every route requires the superuser role.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validator = validator.New()

	guard := []fiber.Handler{
		auth.Authenticated(authService),
		auth.RequireAdmin(authService),
	}

	app.Post(Path, append(guard, s.Create)...)
	app.Get(Path, append(guard, s.List)...)
	app.Put(Path+"/:id", append(guard, s.Update)...)
	app.Delete(Path+"/:id", append(guard, s.Delete)...)

	// reverse lookup is readable by any authenticated user
	app.Get(Path+"/:id/roles",
		auth.Authenticated(authService),
		s.ListRoles,
	)
}

// Create adds a new permission to the catalogue.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(permissionInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Permission name is required")
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Permission name is required")
	}

	perm := models.Permission{Name: input.Name, Description: input.Description}

	if err := s.db.Create(&perm).Error; err != nil {
		return handler.StorageError(c, err,
			"Permission name already exists", "Not found", "create permission failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          perm.ID,
		"name":        perm.Name,
		"description": perm.Description,
		"createdAt":   perm.CreatedAt,
	})
}

// List returns the full permission catalogue.
func (s *Service) List(c *fiber.Ctx) error {
	permissions := make([]models.Permission, 0)
	if err := s.db.Order("name ASC").Find(&permissions).Error; err != nil {
		return handler.Internal(c, err, "query permissions failed")
	}

	return c.JSON(permissions)
}

// Update renames a permission or changes its description.
func (s *Service) Update(c *fiber.Ctx) error {
	permissionID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Permission not found")
	}

	input := new(permissionInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Permission name is required")
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Permission name is required")
	}

	var perm models.Permission
	if err := s.db.First(&perm, permissionID).Error; err != nil {
		return handler.LookupError(c, err, "Permission not found", "load permission failed")
	}

	perm.Name = input.Name
	if input.Description != "" {
		perm.Description = input.Description
	}

	if err := s.db.Save(&perm).Error; err != nil {
		return handler.StorageError(c, err,
			"Permission name already exists", "Permission not found", "update permission failed")
	}

	return c.JSON(fiber.Map{
		"id":          perm.ID,
		"name":        perm.Name,
		"description": perm.Description,
		"createdAt":   perm.CreatedAt,
	})
}

// Delete removes a permission; role mappings referencing it cascade away.
func (s *Service) Delete(c *fiber.Ctx) error {
	permissionID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Permission not found")
	}

	result := s.db.Delete(&models.Permission{}, permissionID)
	if result.Error != nil {
		return handler.Internal(c, result.Error, "delete permission failed")
	}

	if result.RowsAffected == 0 {
		return handler.Error(c, fiber.StatusNotFound, "Permission not found")
	}

	return c.JSON(fiber.Map{"message": "Permission deleted"})
}

// ListRoles returns a permission and every role it is mapped onto.
func (s *Service) ListRoles(c *fiber.Ctx) error {
	permissionID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Permission not found")
	}

	var perm models.Permission
	if err := s.db.First(&perm, permissionID).Error; err != nil {
		return handler.LookupError(c, err, "Permission not found", "load permission failed")
	}

	roles := make([]models.Role, 0)

	err = s.db.Table("roles").
		Joins("JOIN role_permissions ON role_permissions.role_id = roles.id").
		Where("role_permissions.permission_id = ?", perm.ID).
		Order("roles.name ASC").
		Find(&roles).Error
	if err != nil {
		return handler.Internal(c, err, "query permission roles failed")
	}

	return c.JSON(fiber.Map{
		"permission": fiber.Map{"id": perm.ID, "name": perm.Name},
		"roles":      roles,
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}
