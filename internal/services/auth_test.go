package services

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/logging"
	"github.com/adstudio/backend/internal/middleware"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		BaseURL: "https://studio.example.com",
		JWT:     config.JWTConfig{SecretKey: "test-secret", ExpiryHours: 24},
		Argon2:  config.Argon2Config{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16},
	}
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestAuthService_Register(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("successful registration provisions credits", func(t *testing.T) {
		credits := new(MockProvisioner)
		credits.On("EnsureProvisioned", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
		service := NewAuthService(db, nil, credits, testAuthConfig(), logging.Discard())

		dbMock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (id, name, email, password, provider)")).
			WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", sqlmock.AnyArg(), "credentials").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		body := `{"name":"Ada","email":"Ada@Example.com","password":"correct-horse"}`
		w := httptest.NewRecorder()
		service.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body)))

		require.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ada@example.com", response.User.Email)
		assert.Equal(t, response.User.ID, parseClaims(t, response.Token)["user_id"])
		credits.AssertCalled(t, "EnsureProvisioned", mock.Anything, response.User.ID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())
		dbMock.ExpectQuery("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

		body := `{"name":"Ada","email":"ada@example.com","password":"correct-horse"}`
		w := httptest.NewRecorder()
		service.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())

		body := `{"name":"Ada","email":"ada@example.com","password":"short"}`
		w := httptest.NewRecorder()
		service.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Password")
	})

	t.Run("invalid request body", func(t *testing.T) {
		service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())

		w := httptest.NewRecorder()
		service.Register(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("invalid")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	loginColumns := []string{"id", "name", "email", "password", "image", "provider", "created_at"}

	t.Run("successful login survives a provisioning failure", func(t *testing.T) {
		credits := new(MockProvisioner)
		credits.On("EnsureProvisioned", mock.Anything, "user-1").Return(false, errors.New("ledger unavailable"))
		service := NewAuthService(db, nil, credits, testAuthConfig(), logging.Discard())

		hashedPassword, err := service.hashPassword("correct-horse")
		require.NoError(t, err)

		dbMock.ExpectQuery("SELECT id, name, email, password").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(loginColumns).
				AddRow("user-1", "Ada", "ada@example.com", hashedPassword, "", "credentials", time.Now()))

		body := `{"email":"ada@example.com","password":"correct-horse"}`
		w := httptest.NewRecorder()
		service.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body)))

		require.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		credits.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())
		hashedPassword, err := service.hashPassword("correct-horse")
		require.NoError(t, err)

		dbMock.ExpectQuery("SELECT id, name, email, password").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(loginColumns).
				AddRow("user-1", "Ada", "ada@example.com", hashedPassword, "", "credentials", time.Now()))

		body := `{"email":"ada@example.com","password":"battery-staple"}`
		w := httptest.NewRecorder()
		service.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("google-only account", func(t *testing.T) {
		service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())

		dbMock.ExpectQuery("SELECT id, name, email, password").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(loginColumns).
				AddRow("user-1", "Ada", "ada@example.com", nil, "https://lh3.example/ada.png", "google", time.Now()))

		body := `{"email":"ada@example.com","password":"anything"}`
		w := httptest.NewRecorder()
		service.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user not found", func(t *testing.T) {
		service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())

		dbMock.ExpectQuery("SELECT id, name, email, password").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		body := `{"email":"nobody@example.com","password":"correct-horse"}`
		w := httptest.NewRecorder()
		service.Login(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAuthService_Logout(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	service := NewAuthService(nil, rdb, nil, testAuthConfig(), logging.Discard())

	redisMock.ExpectSet(middleware.BlacklistKey("tok"), "1", 24*time.Hour).SetVal("OK")

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	r.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	service.Logout(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAuthService_GetUserAccount(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	service := NewAuthService(db, nil, nil, testAuthConfig(), logging.Discard())

	t.Run("found", func(t *testing.T) {
		dbMock.ExpectQuery("SELECT id, name, email").
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "image", "provider", "created_at"}).
				AddRow("user-1", "Ada", "ada@example.com", "", "credentials", time.Now()))

		w := httptest.NewRecorder()
		service.GetUserAccount(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/account", nil)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)
	})

	t.Run("missing", func(t *testing.T) {
		dbMock.ExpectQuery("SELECT id, name, email").WithArgs("user-1").WillReturnError(sql.ErrNoRows)

		w := httptest.NewRecorder()
		service.GetUserAccount(w, asUser(httptest.NewRequest(http.MethodGet, "/api/v1/auth/account", nil)))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		service.GetUserAccount(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/account", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthService_GoogleFlow(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"ya29.test","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			assert.Equal(t, "Bearer ya29.test", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"g-1","email":"Ada@Example.com","name":"Ada","picture":"https://lh3.example/ada.png"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer google.Close()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	rdb, redisMock := redismock.NewClientMock()

	cfg := testAuthConfig()
	cfg.Google = config.GoogleConfig{ClientID: "client", ClientSecret: "secret"}

	credits := new(MockProvisioner)
	credits.On("EnsureProvisioned", mock.Anything, "user-g").Return(true, nil)

	service := NewAuthService(db, rdb, credits, cfg, logging.Discard())
	service.oauth.Endpoint = oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token"}
	service.userInfoURL = google.URL + "/userinfo"
	service.newState = func() (string, error) { return "state-123", nil }

	t.Run("login redirects with stored state", func(t *testing.T) {
		redisMock.ExpectSet("oauth_state:state-123", "1", 10*time.Minute).SetVal("OK")

		w := httptest.NewRecorder()
		service.GoogleLogin(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil))

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "state=state-123")
	})

	t.Run("callback signs the user in", func(t *testing.T) {
		redisMock.ExpectDel("oauth_state:state-123").SetVal(1)
		dbMock.ExpectQuery("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", "https://lh3.example/ada.png", "google").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "image", "provider", "created_at"}).
				AddRow("user-g", "Ada", "ada@example.com", "https://lh3.example/ada.png", "google", time.Now()))

		w := httptest.NewRecorder()
		service.GoogleCallback(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=state-123&code=abc", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "user-g", response.User.ID)
		credits.AssertExpectations(t)
	})

	t.Run("replayed state is rejected", func(t *testing.T) {
		redisMock.ExpectDel("oauth_state:state-123").SetVal(0)

		w := httptest.NewRecorder()
		service.GoogleCallback(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=state-123&code=abc", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	service := NewAuthService(nil, nil, nil, testAuthConfig(), logging.Discard())

	w := httptest.NewRecorder()
	service.GoogleLogin(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPasswordHashing(t *testing.T) {
	service := NewAuthService(nil, nil, nil, testAuthConfig(), logging.Discard())

	hashed, err := service.hashPassword("testpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, hashed)

	assert.True(t, service.verifyPassword("testpassword", hashed))
	assert.False(t, service.verifyPassword("wrongpassword", hashed))
	assert.False(t, service.verifyPassword("testpassword", "not-a-hash"))
}
