package auth

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"vms-backend/internal/middleware"
	"vms-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret"

func setupAuthDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Name:         "Reception One",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func setupAuthApp(db *gorm.DB) *fiber.App {
	app := fiber.New()
	h := &Handlers{UserFinder: &GormUserFinder{DB: db}, JWTSecret: testSecret}
	app.Post("/api/v1/auth/login", h.Login)
	app.Get("/api/v1/auth/me", middleware.RequireAuth(testSecret), h.Me)
	return app
}

func postLogin(t *testing.T, app *fiber.App, body map[string]string) (int, map[string]interface{}) {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestLoginSuccess(t *testing.T) {
	db := setupAuthDB(t)
	u := seedUser(t, db, "front.desk@acme.com", "s3cret!", models.RoleSecurity)
	app := setupAuthApp(db)

	code, out := postLogin(t, app, map[string]string{"email": "front.desk@acme.com", "password": "s3cret!"})
	require.Equal(t, 200, code)
	assert.Equal(t, "success", out["status"])

	data := out["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	user := data["user"].(map[string]interface{})
	assert.Equal(t, u.UserID.String(), user["user_id"])
	assert.Equal(t, models.RoleSecurity, user["role"])

	// issued token carries subject + role
	var claims middleware.Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, u.UserID.String(), claims.Subject)
	assert.Equal(t, models.RoleSecurity, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthDB(t)
	seedUser(t, db, "host@acme.com", "right-pass", models.RoleHost)
	app := setupAuthApp(db)

	code, out := postLogin(t, app, map[string]string{"email": "host@acme.com", "password": "wrong-pass"})
	require.Equal(t, 401, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Incorrect Password", errObj["message"])
}

func TestLoginUnknownEmail(t *testing.T) {
	db := setupAuthDB(t)
	app := setupAuthApp(db)

	code, out := postLogin(t, app, map[string]string{"email": "nobody@acme.com", "password": "x"})
	require.Equal(t, 401, code)
	errObj := out["error"].(map[string]interface{})
	assert.Equal(t, "Invalid Email", errObj["message"])
}

func TestLoginMissingFields(t *testing.T) {
	db := setupAuthDB(t)
	app := setupAuthApp(db)

	code, _ := postLogin(t, app, map[string]string{"email": "host@acme.com"})
	assert.Equal(t, 400, code)

	code, _ = postLogin(t, app, map[string]string{"password": "x"})
	assert.Equal(t, 400, code)
}

func TestMeRequiresBearer(t *testing.T) {
	db := setupAuthDB(t)
	app := setupAuthApp(db)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMeWithToken(t *testing.T) {
	db := setupAuthDB(t)
	u := seedUser(t, db, "admin@acme.com", "pw", models.RoleAdmin)
	app := setupAuthApp(db)

	token, err := IssueToken(testSecret, u)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].(map[string]interface{})
	assert.Equal(t, u.UserID.String(), data["user_id"])
	assert.Equal(t, models.RoleAdmin, data["role"])
}
