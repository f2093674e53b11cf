package auth

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
)

// Service provides authentication and authorization functionality.
// It holds no per-request state and caches nothing: every check is a
// fresh read of the database, so a role or mapping change is effective
// on the subject's next request.
type Service struct {
	db       *gorm.DB
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:       db,
		secret:   []byte(cfg.Auth.JWTSecret),
		tokenTTL: cfg.Auth.TokenTTL,
	}
}

// Access is a subject's resolved authorization state: the names of all
// assigned roles and the union of permission names across those roles.
type Access struct {
	Roles       map[string]bool
	Permissions map[string]bool
}

// IsAdmin reports whether the access set includes the superuser role.
func (a *Access) IsAdmin() bool {
	return a.Roles[models.AdminRoleName]
}

// Has reports whether the access set grants the permission, either via
// the superuser role or an explicit permission row. Names are matched
// exactly; there is no wildcard expansion.
func (a *Access) Has(permission string) bool {
	return a.IsAdmin() || a.Permissions[permission]
}

// Resolve walks user_roles -> roles -> role_permissions -> permissions
// and returns the union of permission names across all roles assigned to
// the user, together with the set of role names. The result reflects the
// database state at call time and must not be reused across requests.
func (s *Service) Resolve(userID uint64) (*Access, error) {
	var roleNames []string

	err := s.db.Table("roles").
		Select("roles.name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &roleNames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	var permissionNames []string

	err = s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Pluck("permissions.name", &permissionNames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	access := &Access{
		Roles:       make(map[string]bool, len(roleNames)),
		Permissions: make(map[string]bool, len(permissionNames)),
	}

	for _, name := range roleNames {
		access.Roles[name] = true
	}

	for _, name := range permissionNames {
		access.Permissions[name] = true
	}

	return access, nil
}

// HasPermission checks if a user has a specific permission. The admin
// role is an implicit superuser and passes every check, independent of
// explicit role_permissions rows.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	access, err := s.Resolve(userID)
	if err != nil {
		return false, err
	}

	return access.Has(permission), nil
}

// IsAdmin checks if a user holds the superuser role.
func (s *Service) IsAdmin(userID uint64) (bool, error) {
	access, err := s.Resolve(userID)
	if err != nil {
		return false, err
	}

	return access.IsAdmin(), nil
}

// RoleNames returns the names of all roles assigned to the user, freshly
// queried.
func (s *Service) RoleNames(userID uint64) ([]string, error) {
	var roleNames []string

	err := s.db.Table("roles").
		Select("roles.name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &roleNames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}

	return roleNames, nil
}
