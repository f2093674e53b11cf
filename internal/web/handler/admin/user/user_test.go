package user

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pressroom-io/pressroom/internal/auth"
	"github.com/pressroom-io/pressroom/internal/config"
	"github.com/pressroom-io/pressroom/internal/db/models"
)

// fixture bundles the wired app with the seeded accounts and roles the
// user management tests need.
type fixture struct {
	app        *fiber.App
	db         *gorm.DB
	admin      models.User
	regular    models.User
	adminRole  models.Role
	editorRole models.Role
	adminToken string
	userToken  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.Editorial{},
	)
	if err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	cfg := &config.Config{
		Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour},
	}
	app := fiber.New()
	authService := auth.NewService(db, cfg)

	var s Service
	s.Init(app, cfg, db, authService)

	f := &fixture{app: app, db: db}

	f.adminRole = models.Role{Name: models.AdminRoleName}
	f.editorRole = models.Role{Name: "editor"}
	viewerRole := models.Role{Name: "viewer"}

	for _, role := range []*models.Role{&f.adminRole, &f.editorRole, &viewerRole} {
		if err := db.Create(role).Error; err != nil {
			t.Fatalf("failed to create role %s: %v", role.Name, err)
		}
	}

	f.admin = models.User{Email: "admin@example.com", Password: models.HashPassword("passw0rd1")}
	f.regular = models.User{Email: "user@example.com", Password: models.HashPassword("passw0rd1")}

	for _, user := range []*models.User{&f.admin, &f.regular} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("failed to create user %s: %v", user.Email, err)
		}
	}

	if err := db.Create(&models.UserRole{UserID: f.admin.ID, RoleID: f.adminRole.ID}).Error; err != nil {
		t.Fatalf("failed to assign admin role: %v", err)
	}

	if f.adminToken, err = authService.IssueToken(f.admin.ID, f.admin.Email); err != nil {
		t.Fatalf("failed to issue admin token: %v", err)
	}

	if f.userToken, err = authService.IssueToken(f.regular.ID, f.regular.Email); err != nil {
		t.Fatalf("failed to issue user token: %v", err)
	}

	return f
}

func (f *fixture) do(t *testing.T, method, target, token string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer func() {
		_ = resp.Body.Close()
	}()

	out := make(map[string]interface{})
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	return out
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)

	t.Run("requires admin", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, Path, f.userToken)

		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	resp := f.do(t, http.MethodGet, Path, f.adminToken)

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var users []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("failed to decode users: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	for _, user := range users {
		roles, ok := user["roles"].([]interface{})
		if !ok {
			t.Fatalf("roles must serialize as an array, got %v", user["roles"])
		}

		if user["email"] == f.admin.Email && (len(roles) != 1 || roles[0] != models.AdminRoleName) {
			t.Fatalf("expected admin user to carry the admin role, got %v", roles)
		}
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, Path+"/summary", f.adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)

	if body["totalUsers"] != float64(2) {
		t.Fatalf("expected totalUsers=2, got %v", body["totalUsers"])
	}

	byRole, ok := body["byRole"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected byRole object, got %v", body["byRole"])
	}

	// editor and viewer have no members but must still appear.
	if byRole[models.AdminRoleName] != float64(1) ||
		byRole["editor"] != float64(0) ||
		byRole["viewer"] != float64(0) {
		t.Fatalf("unexpected role distribution: %v", byRole)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)

	t.Run("cannot delete yourself", func(t *testing.T) {
		target := fmt.Sprintf("%s/%d", Path, f.admin.ID)

		resp := f.do(t, http.MethodDelete, target, f.adminToken)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["error"] != "Cannot delete yourself" {
			t.Fatalf("unexpected error: %v", body["error"])
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, Path+"/99999", f.adminToken)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["error"] != "User not found" {
			t.Fatalf("unexpected error: %v", body["error"])
		}
	})

	t.Run("deleting a non-last admin is allowed", func(t *testing.T) {
		other := models.User{Email: "admin2@example.com", Password: models.HashPassword("passw0rd1")}
		if err := f.db.Create(&other).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if err := f.db.Create(&models.UserRole{UserID: other.ID, RoleID: f.adminRole.ID}).Error; err != nil {
			t.Fatalf("failed to assign admin role: %v", err)
		}

		target := fmt.Sprintf("%s/%d", Path, other.ID)

		resp := f.do(t, http.MethodDelete, target, f.adminToken)

		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 deleting a non-last admin, got %d", resp.StatusCode)
		}
	})
}

func TestIsLastAdmin(t *testing.T) {
	f := newFixture(t)

	cfg := &config.Config{Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour}}
	s := Service{cfg: cfg, db: f.db, authService: auth.NewService(f.db, cfg)}

	// f.admin is the sole admin.
	last, err := s.isLastAdmin(f.admin.ID)
	if err != nil || !last {
		t.Fatalf("expected sole admin to be the last admin, got %v err=%v", last, err)
	}

	// A non-admin is never the last admin.
	last, err = s.isLastAdmin(f.regular.ID)
	if err != nil || last {
		t.Fatalf("expected non-admin to not be the last admin, got %v err=%v", last, err)
	}

	// With a second admin neither is the last one.
	if err := f.db.Create(&models.UserRole{UserID: f.regular.ID, RoleID: f.adminRole.ID}).Error; err != nil {
		t.Fatalf("failed to promote regular user: %v", err)
	}

	last, err = s.isLastAdmin(f.admin.ID)
	if err != nil || last {
		t.Fatalf("expected admin to not be last with a peer, got %v err=%v", last, err)
	}
}

func TestDeleteUser_RemovesOwnedRows(t *testing.T) {
	f := newFixture(t)

	editorial := models.Editorial{Title: "Doomed", AuthorID: f.regular.ID}
	if err := f.db.Create(&editorial).Error; err != nil {
		t.Fatalf("failed to create editorial: %v", err)
	}

	if err := f.db.Create(&models.UserRole{UserID: f.regular.ID, RoleID: f.editorRole.ID}).Error; err != nil {
		t.Fatalf("failed to assign role: %v", err)
	}

	target := fmt.Sprintf("%s/%d", Path, f.regular.ID)

	resp := f.do(t, http.MethodDelete, target, f.adminToken)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != "User deleted" {
		t.Fatalf("unexpected body: %v", body)
	}

	var users, mappings, editorials int64

	f.db.Model(&models.User{}).Where("id = ?", f.regular.ID).Count(&users)
	f.db.Model(&models.UserRole{}).Where("user_id = ?", f.regular.ID).Count(&mappings)
	f.db.Model(&models.Editorial{}).Where("author_id = ?", f.regular.ID).Count(&editorials)

	if users != 0 || mappings != 0 || editorials != 0 {
		t.Fatalf("expected user, mappings and editorials gone, got %d/%d/%d",
			users, mappings, editorials)
	}
}

func TestGrantAndRevokeEditor(t *testing.T) {
	f := newFixture(t)

	grantTarget := fmt.Sprintf("%s/%d/grant-editor", Path, f.regular.ID)
	revokeTarget := fmt.Sprintf("%s/%d/revoke-editor", Path, f.regular.ID)

	t.Run("regular user may not grant", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, grantTarget, f.userToken)

		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("admin grants via superuser bypass", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, grantTarget, f.adminToken)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["message"] != "Editor role granted" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("granting again is a no-op", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, grantTarget, f.adminToken)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["message"] != "User already has editor role" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("revoke", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, revokeTarget, f.adminToken)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["message"] != "Editor role revoked" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("revoking again is a no-op", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, revokeTarget, f.adminToken)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["message"] != "User did not have editor role" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, Path+"/99999/grant-editor", f.adminToken)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["error"] != "User not found" {
			t.Fatalf("unexpected error: %v", body["error"])
		}
	})

	t.Run("missing editor role", func(t *testing.T) {
		if err := f.db.Delete(&models.Role{}, f.editorRole.ID).Error; err != nil {
			t.Fatalf("failed to delete editor role: %v", err)
		}

		resp := f.do(t, http.MethodPost, grantTarget, f.adminToken)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}

		body := decodeBody(t, resp)
		if body["error"] != "Editor role not found" {
			t.Fatalf("unexpected error: %v", body["error"])
		}
	})
}
