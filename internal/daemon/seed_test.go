package daemon

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := migrate(db); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

func seedConfig() *config.Config {
	return &config.Config{
		Auth: config.Auth{
			AdminEmail:    "Admin@Example.com",
			AdminPassword: "changeme123",
		},
	}
}

func TestSeed_CreatesCatalogue(t *testing.T) {
	db := newTestDB(t)

	if err := seed(seedConfig(), db); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var roles, permissions, mappings int64

	db.Model(&models.Role{}).Count(&roles)
	db.Model(&models.Permission{}).Count(&permissions)
	db.Model(&models.RolePermission{}).Count(&mappings)

	if roles != 3 {
		t.Fatalf("expected 3 roles, got %d", roles)
	}

	if permissions != int64(len(seedPermissions)) {
		t.Fatalf("expected %d permissions, got %d", len(seedPermissions), permissions)
	}

	var wantMappings int
	for _, grants := range seedGrants {
		wantMappings += len(grants)
	}

	if mappings != int64(wantMappings) {
		t.Fatalf("expected %d role-permission mappings, got %d", wantMappings, mappings)
	}
}

func TestSeed_AdminAccount(t *testing.T) {
	db := newTestDB(t)
	cfg := seedConfig()

	if err := seed(cfg, db); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var admin models.User
	if err := db.Where("email = ?", "admin@example.com").First(&admin).Error; err != nil {
		t.Fatalf("admin account not created (email must be normalized): %v", err)
	}

	if !admin.VerifyPassword("changeme123") {
		t.Fatalf("admin password does not verify")
	}

	svc := auth.NewService(db, cfg)

	isAdmin, err := svc.IsAdmin(admin.ID)
	if err != nil || !isAdmin {
		t.Fatalf("expected seeded account to hold the admin role, got %v err=%v", isAdmin, err)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := newTestDB(t)
	cfg := seedConfig()

	if err := seed(cfg, db); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}

	var admin models.User
	if err := db.Where("email = ?", "admin@example.com").First(&admin).Error; err != nil {
		t.Fatalf("admin account not created: %v", err)
	}

	// Change the admin password out of band; a re-run must not touch it.
	newHash := models.HashPassword("operator-set")
	if err := db.Model(&admin).Update("password", newHash).Error; err != nil {
		t.Fatalf("failed to update password: %v", err)
	}

	if err := seed(cfg, db); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var roles, users int64

	db.Model(&models.Role{}).Count(&roles)
	db.Model(&models.User{}).Count(&users)

	if roles != 3 || users != 1 {
		t.Fatalf("expected seed to be idempotent, got %d roles and %d users", roles, users)
	}

	if err := db.First(&admin, admin.ID).Error; err != nil {
		t.Fatalf("failed to reload admin: %v", err)
	}

	if !admin.VerifyPassword("operator-set") {
		t.Fatalf("re-seeding must not overwrite an existing password")
	}
}

func TestSeed_WithoutAdminCredentials(t *testing.T) {
	db := newTestDB(t)

	if err := seed(&config.Config{}, db); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var users int64
	db.Model(&models.User{}).Count(&users)

	if users != 0 {
		t.Fatalf("expected no bootstrap account without credentials, got %d users", users)
	}
}
