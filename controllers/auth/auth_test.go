package authController_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"classroom/config"
	authController "classroom/controllers/auth"
	"classroom/database"
	"classroom/middleware"
	"classroom/models"
	"classroom/routers/authRoutes"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newAuthApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTKey: testSecret, SaltRound: bcrypt.MinCost}
	ctl := authController.NewAuthController(db, cfg)

	app := fiber.New()
	authRoutes.SetupAuthRoutes(app, middleware.JWTMiddleware(testSecret), ctl)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, payload interface{}) (*http.Response, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func signup(t *testing.T, app *fiber.App, name, email, role string) {
	t.Helper()
	resp, env := doJSON(t, app, "POST", "/auth/signup", "", fiber.Map{
		"name": name, "email": email, "password": "hunter2hunter2", "role": role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
}

func login(t *testing.T, app *fiber.App, email, password string) (string, envelope) {
	t.Helper()
	_, env := doJSON(t, app, "POST", "/auth/login", "", fiber.Map{"email": email, "password": password})
	var data struct {
		Token string `json:"token"`
	}
	if env.Success {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return data.Token, env
}

func TestSignupCreatesUserAndStudentProfile(t *testing.T) {
	app, db := newAuthApp(t)

	resp, env := doJSON(t, app, "POST", "/auth/signup", "", fiber.Map{
		"name": "Ada Lovelace", "email": "ada@classroom.test", "password": "hunter2hunter2", "role": models.RoleStudent,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully.", env.Message)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@classroom.test").First(&user).Error)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.Password, "password must be stored hashed")

	var profile models.Student
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
}

func TestSignupCreatesTeacherProfile(t *testing.T) {
	app, db := newAuthApp(t)
	signup(t, app, "Grace Hopper", "grace@classroom.test", models.RoleTeacher)

	var user models.User
	require.NoError(t, db.Where("email = ?", "grace@classroom.test").First(&user).Error)

	var profile models.Teacher
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	app, db := newAuthApp(t)
	signup(t, app, "Ada Lovelace", "ada@classroom.test", models.RoleStudent)

	resp, env := doJSON(t, app, "POST", "/auth/signup", "", fiber.Map{
		"name": "Impostor", "email": "ada@classroom.test", "password": "hunter2hunter2", "role": models.RoleStudent,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email is already registered!", env.Message)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	app, _ := newAuthApp(t)

	resp, env := doJSON(t, app, "POST", "/auth/signup", "", fiber.Map{
		"name": "Al", "email": "not-an-email", "password": "short", "role": "ADMIN",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed!", env.Message)
}

func TestLoginReturnsUsableToken(t *testing.T) {
	app, _ := newAuthApp(t)
	signup(t, app, "Ada Lovelace", "ada@classroom.test", models.RoleStudent)

	token, env := login(t, app, "ada@classroom.test", "hunter2hunter2")
	assert.Equal(t, "Login successful.", env.Message)
	require.NotEmpty(t, token)

	// The issued token must pass the auth middleware on a protected route
	resp, env := doJSON(t, app, "PUT", "/auth/change/password", token, fiber.Map{
		"currentPassword": "hunter2hunter2", "newPassword": "correcthorsebattery", "cnfPassword": "correcthorsebattery",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	app, _ := newAuthApp(t)
	signup(t, app, "Ada Lovelace", "ada@classroom.test", models.RoleStudent)

	_, env := login(t, app, "ada@classroom.test", "wrongwrongwrong")
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid credentials!", env.Message)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	app, _ := newAuthApp(t)

	_, env := login(t, app, "ghost@classroom.test", "hunter2hunter2")
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid credentials!", env.Message)
}

func TestChangePasswordRotatesCredential(t *testing.T) {
	app, _ := newAuthApp(t)
	signup(t, app, "Ada Lovelace", "ada@classroom.test", models.RoleStudent)
	token, _ := login(t, app, "ada@classroom.test", "hunter2hunter2")

	resp, env := doJSON(t, app, "PUT", "/auth/change/password", token, fiber.Map{
		"currentPassword": "hunter2hunter2", "newPassword": "correcthorsebattery", "cnfPassword": "correcthorsebattery",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password changed successfully.", env.Message)

	_, env = login(t, app, "ada@classroom.test", "hunter2hunter2")
	assert.Equal(t, "Invalid credentials!", env.Message, "the old password must stop working")

	_, env = login(t, app, "ada@classroom.test", "correcthorsebattery")
	assert.Equal(t, "Login successful.", env.Message)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	app, _ := newAuthApp(t)
	signup(t, app, "Ada Lovelace", "ada@classroom.test", models.RoleStudent)
	token, _ := login(t, app, "ada@classroom.test", "hunter2hunter2")

	resp, env := doJSON(t, app, "PUT", "/auth/change/password", token, fiber.Map{
		"currentPassword": "nope-nope-nope", "newPassword": "correcthorsebattery", "cnfPassword": "correcthorsebattery",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Current password is incorrect!", env.Message)
}

func TestChangePasswordRequiresMatchingConfirmation(t *testing.T) {
	app, _ := newAuthApp(t)
	signup(t, app, "Ada Lovelace", "ada@classroom.test", models.RoleStudent)
	token, _ := login(t, app, "ada@classroom.test", "hunter2hunter2")

	resp, env := doJSON(t, app, "PUT", "/auth/change/password", token, fiber.Map{
		"currentPassword": "hunter2hunter2", "newPassword": "correcthorsebattery", "cnfPassword": "different",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed!", env.Message)
}
