// Package user provides handlers for the user directory: listing,
// deletion with safety guards and editor role grants.
package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
	"github.com/pressroom-io/pressroom/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.APIPath + "/users"

	editorRoleName = "editor"
)

// summaryRoles are always present in the role distribution, zero-filled
// when no user holds them.
var summaryRoles = []string{models.AdminRoleName, "editor", "viewer"}

// Service provides the user management handlers.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Listing and deletion require the superuser
// role; editor grants are gated on their dedicated permissions so the
// superuser bypass and explicit grants both work.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService

	adminGuard := []fiber.Handler{
		auth.Authenticated(authService),
		auth.RequireAdmin(authService),
	}

	app.Get(Path, append(adminGuard, s.List)...)
	app.Get(Path+"/summary", append(adminGuard, s.Summary)...)
	app.Delete(Path+"/:id", append(adminGuard, s.Delete)...)

	app.Post(Path+"/:id/grant-editor",
		auth.Authenticated(authService),
		auth.RequirePermission(authService, auth.PermUserGrantEditor),
		s.GrantEditor,
	)
	app.Post(Path+"/:id/revoke-editor",
		auth.Authenticated(authService),
		auth.RequirePermission(authService, auth.PermUserRevokeEditor),
		s.RevokeEditor,
	)
}

// List returns all users with their role names.
func (s *Service) List(c *fiber.Ctx) error {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return handler.Internal(c, err, "query users failed")
	}

	out := make([]fiber.Map, 0, len(users))

	for i := range users {
		roles, err := s.authService.RoleNames(users[i].ID)
		if err != nil {
			return handler.Internal(c, err, "query user roles failed")
		}

		out = append(out, fiber.Map{
			"id":        users[i].ID,
			"email":     users[i].Email,
			"createdAt": users[i].CreatedAt,
			"roles":     roles,
		})
	}

	return c.JSON(out)
}

// Summary returns the total user count and the distribution of users
// over the core roles.
func (s *Service) Summary(c *fiber.Ctx) error {
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return handler.Internal(c, err, "count users failed")
	}

	type roleCount struct {
		Name  string
		Count int64
	}

	var counts []roleCount

	err := s.db.Table("roles").
		Select("roles.name AS name, COUNT(user_roles.user_id) AS count").
		Joins("LEFT JOIN user_roles ON user_roles.role_id = roles.id").
		Group("roles.name").
		Scan(&counts).Error
	if err != nil {
		return handler.Internal(c, err, "count users per role failed")
	}

	byRole := make(map[string]int64, len(counts))
	for _, rc := range counts {
		byRole[rc.Name] = rc.Count
	}

	distribution := make(map[string]int64, len(summaryRoles))
	for _, name := range summaryRoles {
		distribution[name] = byRole[name]
	}

	return c.JSON(fiber.Map{
		"totalUsers": total,
		"byRole":     distribution,
	})
}

// Delete removes a user together with their role assignments and
// editorials. Self-deletion and removing the last remaining superuser
// are rejected.
func (s *Service) Delete(c *fiber.Ctx) error {
	userID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "User not found")
	}

	subject := auth.SubjectFromCtx(c)
	if subject != nil && subject.ID == userID {
		return handler.Error(c, fiber.StatusBadRequest, "Cannot delete yourself")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return handler.LookupError(c, err, "User not found", "load user failed")
	}

	lastAdmin, err := s.isLastAdmin(user.ID)
	if err != nil {
		return handler.Internal(c, err, "admin count check failed")
	}

	if lastAdmin {
		return handler.Error(c, fiber.StatusBadRequest, "Cannot delete the last admin")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		if err := tx.Where("author_id = ?", user.ID).Delete(&models.Editorial{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		return handler.Internal(c, err, "delete user failed")
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}

// isLastAdmin reports whether userID holds the superuser role and no
// other user does.
func (s *Service) isLastAdmin(userID uint64) (bool, error) {
	isAdmin, err := s.authService.IsAdmin(userID)
	if err != nil {
		return false, err
	}

	if !isAdmin {
		return false, nil
	}

	var admins int64

	err = s.db.Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", models.AdminRoleName).
		Count(&admins).Error
	if err != nil {
		return false, err
	}

	return admins <= 1, nil
}

// GrantEditor assigns the editor role to a user. Granting a role the
// user already holds succeeds without change.
func (s *Service) GrantEditor(c *fiber.Ctx) error {
	userID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "User not found")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return handler.LookupError(c, err, "User not found", "load user failed")
	}

	var role models.Role
	if err := s.db.Where("name = ?", editorRoleName).First(&role).Error; err != nil {
		return handler.LookupError(c, err, "Editor role not found", "load editor role failed")
	}

	mapping := models.UserRole{UserID: user.ID, RoleID: role.ID}

	if err := s.db.Create(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.JSON(fiber.Map{"message": "User already has editor role"})
		}

		return handler.Internal(c, err, "grant editor role failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Editor role granted"})
}

// RevokeEditor removes the editor role from a user. Revoking a role the
// user never held succeeds without change.
func (s *Service) RevokeEditor(c *fiber.Ctx) error {
	userID, err := parseID(c)
	if err != nil {
		return handler.Error(c, fiber.StatusNotFound, "User not found")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return handler.LookupError(c, err, "User not found", "load user failed")
	}

	var role models.Role
	if err := s.db.Where("name = ?", editorRoleName).First(&role).Error; err != nil {
		return handler.LookupError(c, err, "Editor role not found", "load editor role failed")
	}

	result := s.db.Where("user_id = ? AND role_id = ?", user.ID, role.ID).
		Delete(&models.UserRole{})
	if result.Error != nil {
		return handler.Internal(c, result.Error, "revoke editor role failed")
	}

	if result.RowsAffected == 0 {
		return c.JSON(fiber.Map{"message": "User did not have editor role"})
	}

	return c.JSON(fiber.Map{"message": "Editor role revoked"})
}

func parseID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}
