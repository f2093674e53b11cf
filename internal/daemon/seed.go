package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
)

// seedRoles is the canonical role catalogue.
var seedRoles = []models.Role{
	{Name: models.AdminRoleName, Description: "Full access to every resource"},
	{Name: "editor", Description: "Creates and maintains own editorials"},
	{Name: "viewer", Description: "Read-only access to editorials"},
}

// seedPermissions is the canonical permission catalogue.
var seedPermissions = []models.Permission{
	{Name: auth.PermDashboardAccess, Description: "View the management dashboard"},
	{Name: auth.PermRoleCreate, Description: "Create roles"},
	{Name: auth.PermRoleUpdate, Description: "Rename roles and edit their permission mappings"},
	{Name: auth.PermRoleDelete, Description: "Delete roles"},
	{Name: auth.PermPermissionView, Description: "List permissions"},
	{Name: auth.PermPermissionUpdate, Description: "Create, edit and delete permissions"},
	{Name: auth.PermUserGrantEditor, Description: "Grant the editor role"},
	{Name: auth.PermUserRevokeEditor, Description: "Revoke the editor role"},
	{Name: auth.PermJournalView, Description: "Read editorials"},
	{Name: auth.PermJournalCreate, Description: "Create editorials"},
	{Name: auth.PermJournalEditAny, Description: "Edit any editorial"},
	{Name: auth.PermJournalEditOwn, Description: "Edit own editorials"},
	{Name: auth.PermJournalDeleteAny, Description: "Delete any editorial"},
	{Name: auth.PermJournalDeleteOwn, Description: "Delete own editorials"},
}

// seedGrants maps each canonical role onto its permissions. Admin is
// granted the "any" scoped permissions explicitly even though the
// superuser bypass would cover it, so the mappings stay inspectable.
var seedGrants = map[string][]string{
	models.AdminRoleName: {
		auth.PermDashboardAccess,
		auth.PermRoleCreate,
		auth.PermRoleUpdate,
		auth.PermRoleDelete,
		auth.PermPermissionView,
		auth.PermPermissionUpdate,
		auth.PermUserGrantEditor,
		auth.PermUserRevokeEditor,
		auth.PermJournalView,
		auth.PermJournalCreate,
		auth.PermJournalEditAny,
		auth.PermJournalDeleteAny,
	},
	"editor": {
		auth.PermJournalView,
		auth.PermJournalCreate,
		auth.PermJournalEditOwn,
		auth.PermJournalDeleteOwn,
	},
	"viewer": {
		auth.PermJournalView,
	},
}

// Seed opens the configured database, migrates the schema and runs the
// idempotent seed. Used by the seed command; the daemon runs the same
// seed on startup.
func Seed(cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		return err
	}

	return seed(cfg, db)
}

// seed ensures the canonical roles, permissions, role-permission
// mappings and the bootstrap admin account exist. Existing rows are
// left untouched, so it is safe to run on every startup.
func seed(cfg *config.Config, db *gorm.DB) error {
	roleIDs := make(map[string]uint, len(seedRoles))

	for _, role := range seedRoles {
		if err := db.Where(models.Role{Name: role.Name}).
			Attrs(models.Role{Description: role.Description}).
			FirstOrCreate(&role).Error; err != nil {
			return err
		}

		roleIDs[role.Name] = role.ID
	}

	permissionIDs := make(map[string]uint, len(seedPermissions))

	for _, perm := range seedPermissions {
		if err := db.Where(models.Permission{Name: perm.Name}).
			Attrs(models.Permission{Description: perm.Description}).
			FirstOrCreate(&perm).Error; err != nil {
			return err
		}

		permissionIDs[perm.Name] = perm.ID
	}

	for roleName, grants := range seedGrants {
		for _, permName := range grants {
			mapping := models.RolePermission{
				RoleID:       roleIDs[roleName],
				PermissionID: permissionIDs[permName],
			}

			if err := db.Where(mapping).FirstOrCreate(&mapping).Error; err != nil {
				return err
			}
		}
	}

	return seedAdminUser(cfg, db, roleIDs[models.AdminRoleName])
}

// seedAdminUser creates the bootstrap admin account configured under
// [auth] and assigns it the superuser role. Without credentials in the
// configuration no account is created.
func seedAdminUser(cfg *config.Config, db *gorm.DB, adminRoleID uint) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		log.Info().Msg("no bootstrap admin credentials configured; skipping admin account seed")
		return nil
	}

	user := models.User{Email: models.NormalizeEmail(cfg.Auth.AdminEmail)}

	result := db.Where(models.User{Email: user.Email}).
		Attrs(models.User{Password: models.HashPassword(cfg.Auth.AdminPassword)}).
		FirstOrCreate(&user)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Info().Str("email", user.Email).Msg("bootstrap admin account created")
	}

	mapping := models.UserRole{UserID: user.ID, RoleID: adminRoleID}

	return db.Where(mapping).FirstOrCreate(&mapping).Error
}
