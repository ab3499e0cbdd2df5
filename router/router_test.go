// file: router/router_test.go

package router_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"freelance-auth-api/app"
	"freelance-auth-api/config"
	"freelance-auth-api/logger"
	"freelance-auth-api/model"
	"freelance-auth-api/service"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var testApp *app.TestApp
var testRedisClient *redis.Client

func TestMain(m *testing.M) {
	logger.Init()
	config.LoadConfig("../")

	// --- Database Connection ---
	testDbConnStr := fmt.Sprintf("postgres://%s:%s@localhost:5434/%s_test?sslmode=disable",
		config.AppConfig.Database.User,
		config.AppConfig.Database.Password,
		config.AppConfig.Database.Name,
	)
	db, err := sql.Open("postgres", testDbConnStr)
	if err != nil {
		log.Fatalf("could not connect to test database: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		log.Fatalf("database not ready: %v", err)
	}
	runMigrations(testDbConnStr)

	// --- Redis Connection for the login limiter ---
	redisAddr := fmt.Sprintf("%s:%s", config.AppConfig.Redis.Host, config.AppConfig.Redis.Port)
	testRedisClient = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: config.AppConfig.Redis.Password,
		DB:       1, // Use a separate DB for test isolation.
	})
	if _, err := testRedisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("could not connect to test redis: %v", err)
	}

	testApp = app.NewTestApp(db, testRedisClient)

	exitCode := m.Run()

	db.Close()
	testRedisClient.Close()
	os.Exit(exitCode)
}

func runMigrations(connStr string) {
	migrationPath := "file://../db/migrations"
	mig, err := migrate.New(migrationPath, connStr)
	if err != nil {
		log.Fatalf("cannot create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("failed to run migrate up: %v", err)
	}
}

// --- Test Helper Functions ---

func clearRedis(t *testing.T) {
	err := testRedisClient.FlushDB(context.Background()).Err()
	assert.NoError(t, err)
}

func createUserForTest(t *testing.T, email, password string, role model.Role) model.User {
	hashedPassword, err := service.HashPassword(password)
	assert.NoError(t, err)
	user := model.User{
		Email:    email,
		Password: hashedPassword,
		Role:     string(role),
		Name:     "Test User",
	}
	err = testApp.DB.QueryRow(
		`INSERT INTO users (email, password_hash, role, name) VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Email, user.Password, user.Role, user.Name,
	).Scan(&user.ID)
	assert.NoError(t, err)
	return user
}

func cleanupUser(t *testing.T, email string) {
	_, err := testApp.DB.Exec("DELETE FROM users WHERE email = $1", email)
	assert.NoError(t, err, "Failed to clean up user")
}

func loginUserForTest(t *testing.T, email, password string) service.TokenPair {
	requestBody := fmt.Sprintf(`{"email": "%s", "password": "%s"}`, email, password)
	req, _ := http.NewRequest("POST", "/login", strings.NewReader(requestBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, "Login request should be successful")
	var response service.TokenPair
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	assert.NoError(t, err, "Should be able to unmarshal login response")
	assert.NotEmpty(t, response.AccessToken, "Access Token should not be empty")
	return response
}

// --- Test Suites ---

func TestHealthCheck_Integration(t *testing.T) {
	req, _ := http.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	expectedBody := `{"status":"API is healthy and running"}`
	assert.JSONEq(t, expectedBody, rr.Body.String())
}

func TestRegister_Integration(t *testing.T) {
	requestBody := `{"email":"integration@test.com","password":"password123","role":"freelancer","name":"Integration Test"}`
	req, _ := http.NewRequest("POST", "/register", strings.NewReader(requestBody))
	rr := httptest.NewRecorder()
	defer cleanupUser(t, "integration@test.com")
	testApp.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
	var role string
	err := testApp.DB.QueryRow("SELECT role FROM users WHERE email = $1", "integration@test.com").Scan(&role)
	assert.NoError(t, err)
	assert.Equal(t, "freelancer", role)
	assert.NotContains(t, rr.Body.String(), "password", "Password hash must not be serialized")
}

func TestLogin_Integration(t *testing.T) {
	clearRedis(t)
	email := "login.test@example.com"
	password := "password123"
	createUserForTest(t, email, password, model.RoleClient)
	defer cleanupUser(t, email)

	t.Run("successful login", func(t *testing.T) {
		pair := loginUserForTest(t, email, password)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "client", pair.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		requestBody := fmt.Sprintf(`{"email": "%s", "password": "wrongpassword"}`, email)
		req, _ := http.NewRequest("POST", "/login", strings.NewReader(requestBody))
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestValidate_Integration(t *testing.T) {
	clearRedis(t)
	email := "validate.test@example.com"
	user := createUserForTest(t, email, "password123", model.RoleFreelancer)
	defer cleanupUser(t, email)
	pair := loginUserForTest(t, email, "password123")

	t.Run("access token grants access to protected routes", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		var claims model.AppClaims
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &claims))
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "freelancer", claims.Role)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// TestAuthFlows_Integration walks the whole session lifecycle: login,
// rotation, replay defense and logout.
func TestAuthFlows_Integration(t *testing.T) {
	clearRedis(t)
	email := "authflow@test.com"
	password := "password123"
	createUserForTest(t, email, password, model.RoleClient)
	defer cleanupUser(t, email)
	pair := loginUserForTest(t, email, password)

	var rotated service.TokenPair
	t.Run("successful token refresh", func(t *testing.T) {
		refreshBody := fmt.Sprintf(`{"refresh_token": "%s"}`, pair.RefreshToken)
		req, _ := http.NewRequest("POST", "/refresh", strings.NewReader(refreshBody))
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rotated))
		assert.NotEmpty(t, rotated.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken, "Rotation must issue a new refresh token")
	})

	t.Run("replaying the old refresh token revokes the whole session family", func(t *testing.T) {
		refreshBody := fmt.Sprintf(`{"refresh_token": "%s"}`, pair.RefreshToken)
		req, _ := http.NewRequest("POST", "/refresh", strings.NewReader(refreshBody))
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		// The successor issued by the legitimate rotation is dead too.
		refreshBody = fmt.Sprintf(`{"refresh_token": "%s"}`, rotated.RefreshToken)
		req, _ = http.NewRequest("POST", "/refresh", strings.NewReader(refreshBody))
		rr = httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		fresh := loginUserForTest(t, email, password)
		logoutBody := fmt.Sprintf(`{"refresh_token": "%s"}`, fresh.RefreshToken)
		for i := 0; i < 2; i++ {
			req, _ := http.NewRequest("POST", "/logout", strings.NewReader(logoutBody))
			rr := httptest.NewRecorder()
			testApp.Router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusNoContent, rr.Code)
		}

		refreshBody := fmt.Sprintf(`{"refresh_token": "%s"}`, fresh.RefreshToken)
		req, _ := http.NewRequest("POST", "/refresh", strings.NewReader(refreshBody))
		rr := httptest.NewRecorder()
		testApp.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "Refresh token should be invalid after logout")
	})
}

func TestPasswordReset_Integration(t *testing.T) {
	clearRedis(t)
	email := "reset.test@example.com"
	createUserForTest(t, email, "oldPassword123", model.RoleClient)
	defer cleanupUser(t, email)

	requestBody := fmt.Sprintf(`{"email": "%s"}`, email)
	req, _ := http.NewRequest("POST", "/password-reset/request", strings.NewReader(requestBody))
	rr := httptest.NewRecorder()
	testApp.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Unknown emails get the exact same response shape.
	req, _ = http.NewRequest("POST", "/password-reset/request", strings.NewReader(`{"email": "ghost@example.com"}`))
	ghost := httptest.NewRecorder()
	testApp.Router.ServeHTTP(ghost, req)
	assert.Equal(t, http.StatusOK, ghost.Code)
	assert.JSONEq(t, rr.Body.String(), ghost.Body.String())

	var tokenHash string
	err := testApp.DB.QueryRow(
		`SELECT token_hash FROM password_resets WHERE used_at IS NULL AND user_id = (SELECT id FROM users WHERE email = $1)`,
		email,
	).Scan(&tokenHash)
	assert.NoError(t, err, "A reset token row should exist for the user")
}
