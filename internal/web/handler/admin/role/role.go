// Package role provides handlers for managing roles and their
// permission mappings (admin only).
package role

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
	// Path is the base path for role management.
	Path = handler.APIPath + "/roles"
)

// Service provides CRUD operations for roles.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

type roleInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type mappingInput struct {
	PermissionID uint `json:"permissionId"`
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
	app.Get(Path+"/:id/permissions", append(guard, s.ListPermissions)...)
	app.Post(Path+"/:id/permissions", append(guard, s.AssignPermission)...)
	app.Delete(Path+"/:id/permissions/:permissionId", append(guard, s.RemovePermission)...)
}

// Create adds a new role.
func (s *Service) Create(c *fiber.Ctx) error {
	input := new(roleInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Role name is required")
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Role name is required")
	}

	role := models.Role{Name: input.Name, Description: input.Description}

	if err := s.db.Create(&role).Error; err != nil {
		return handler.StorageError(c, err,
			"Role name already exists", "Not found", "create role failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        role.ID,
		"name":      role.Name,
		"createdAt": role.CreatedAt,
	})
}

// List returns all roles with their assigned permissions.
func (s *Service) List(c *fiber.Ctx) error {
	var roles []models.Role
	if err := s.db.Order("created_at DESC").Find(&roles).Error; err != nil {
		return handler.Internal(c, err, "query roles failed")
	}

	out := make([]fiber.Map, 0, len(roles))

	for i := range roles {
		permissions, err := s.rolePermissions(roles[i].ID)
		if err != nil {
			return handler.Internal(c, err, "query role permissions failed")
		}

		out = append(out, fiber.Map{
			"id":          roles[i].ID,
			"name":        roles[i].Name,
			"createdAt":   roles[i].CreatedAt,
			"permissions": permissions,
		})
	}

	return c.JSON(out)
}

// Update renames a role.
func (s *Service) Update(c *fiber.Ctx) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Role not found")
	}

	input := new(roleInput)
	if err := c.BodyParser(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Role name is required")
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, "Role name is required")
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return handler.LookupError(c, err, "Role not found", "load role failed")
	}

	role.Name = input.Name
	if input.Description != "" {
		role.Description = input.Description
	}

	if err := s.db.Save(&role).Error; err != nil {
		return handler.StorageError(c, err,
			"Role name already exists", "Role not found", "update role failed")
	}

	return c.JSON(fiber.Map{
		"id":        role.ID,
		"name":      role.Name,
		"createdAt": role.CreatedAt,
	})
}

// Delete removes a role; its user assignments and permission mappings
// cascade away with it.
func (s *Service) Delete(c *fiber.Ctx) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Role not found")
	}

	result := s.db.Delete(&models.Role{}, roleID)
	if result.Error != nil {
		return handler.Internal(c, result.Error, "delete role failed")
	}

	if result.RowsAffected == 0 {
		return handler.Error(c, fiber.StatusNotFound, "Role not found")
	}

	return c.JSON(fiber.Map{"message": "Role deleted"})
}

// ListPermissions returns a role and its assigned permissions.
func (s *Service) ListPermissions(c *fiber.Ctx) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Role not found")
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return handler.LookupError(c, err, "Role not found", "load role failed")
	}

	permissions, err := s.rolePermissions(role.ID)
	if err != nil {
		return handler.Internal(c, err, "query role permissions failed")
	}

	return c.JSON(fiber.Map{
		"role":        fiber.Map{"id": role.ID, "name": role.Name},
		"permissions": permissions,
	})
}

// AssignPermission maps a permission onto a role. Each mapping is an
// independent unique-constrained insert; batch edits from the UI arrive
// as a sequence of these calls and are not atomic as a whole.
func (s *Service) AssignPermission(c *fiber.Ctx) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Role not found")
	}

	input := new(mappingInput)
	if err := c.BodyParser(input); err != nil || input.PermissionID == 0 {
		return handler.Error(c, fiber.StatusBadRequest, "permissionId is required")
	}

	// Verify both ends exist so FK errors don't leak as 500s.
	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return handler.LookupError(c, err, "Role or permission not found", "load role failed")
	}

	var perm models.Permission
	if err := s.db.First(&perm, input.PermissionID).Error; err != nil {
		return handler.LookupError(c, err, "Role or permission not found", "load permission failed")
	}

	mapping := models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
	if err := s.db.Create(&mapping).Error; err != nil {
		return handler.StorageError(c, err,
			"Permission already assigned to role", "Role or permission not found",
			"assign permission to role failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Permission assigned to role"})
}

// RemovePermission deletes a role-permission mapping.
func (s *Service) RemovePermission(c *fiber.Ctx) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Role or permission mapping not found")
	}

	permissionID, err := parseID(c, "permissionId")
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "Role or permission mapping not found")
	}

	result := s.db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{})
	if result.Error != nil {
		return handler.Internal(c, result.Error, "remove permission from role failed")
	}

	if result.RowsAffected == 0 {
		return handler.Error(c, fiber.StatusNotFound, "Role or permission mapping not found")
	}

	return c.JSON(fiber.Map{"message": "Permission removed from role"})
}

func (s *Service) rolePermissions(roleID uint) ([]models.Permission, error) {
	permissions := make([]models.Permission, 0)

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").
		Find(&permissions).Error

	return permissions, err
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	return uint(id), err
}
