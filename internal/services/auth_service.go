package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/adstudio/backend/internal/config"
	"github.com/adstudio/backend/internal/middleware"
	"github.com/adstudio/backend/internal/models"
)

const (
	oauthStateTTL      = 10 * time.Minute
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	providerCredential = "credentials"
	providerGoogle     = "google"
)

// Provisioner is called after every successful sign-in.
type Provisioner interface {
	EnsureProvisioned(ctx context.Context, userID string) (bool, error)
}

type AuthService struct {
	db          *sql.DB
	redis       *redis.Client
	validator   *ValidationHelper
	credits     Provisioner
	jwt         config.JWTConfig
	argon       config.Argon2Config
	oauth       *oauth2.Config
	userInfoURL string
	newState    func() (string, error)
	logger      logrus.FieldLogger
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"` // User email
	Password string `json:"password" validate:"required" example:"correct-horse"`     // User password
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"Ada Lovelace"`  // Display name
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"` // User email address
	Password string `json:"password" validate:"required,min=8" example:"correct-horse"` // User password
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token string      `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	User  models.User `json:"user"`                                                    // User information
}

type googleUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func NewAuthService(db *sql.DB, redisClient *redis.Client, credits Provisioner, cfg *config.Config, logger logrus.FieldLogger) *AuthService {
	s := &AuthService{
		db:          db,
		redis:       redisClient,
		validator:   NewValidationHelper(),
		credits:     credits,
		jwt:         cfg.JWT,
		argon:       cfg.Argon2,
		userInfoURL: googleUserInfoURL,
		newState:    randomState,
		logger:      logger.WithField("component", "auth"),
	}
	if cfg.Google.Enabled() {
		s.oauth = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.BaseURL + "/api/v1/auth/google/callback",
			Scopes:       []string{"email", "profile"},
		}
	}
	return s
}

// Register handles user registration
// @Summary Register a new user
// @Description Register with name, email and password. New accounts start with the welcome credit bonus.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 200 {object} AuthResponse "Registration successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.logger.WithError(err).Info("Registration failed - invalid request")
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(req.Email)
	log := s.logger.WithField("email", email)

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		log.WithError(err).Error("Password hashing failed")
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Email:    email,
		Provider: providerCredential,
	}
	err = s.db.QueryRowContext(r.Context(),
		`INSERT INTO users (id, name, email, password, provider) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		user.ID, user.Name, user.Email, hashedPassword, user.Provider).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			SendErrorResponse(w, "Email Already Exists", http.StatusConflict, nil)
			return
		}
		log.WithError(err).Error("User creation failed")
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	log.WithField("user_id", user.ID).Info("User registered")
	s.completeSignIn(w, r, user)
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticate user with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	email := strings.ToLower(req.Email)

	var user models.User
	var hashedPassword sql.NullString
	err := s.db.QueryRowContext(r.Context(),
		`SELECT id, name, email, password, COALESCE(image, ''), provider, created_at FROM users WHERE email = $1`,
		email).Scan(&user.ID, &user.Name, &user.Email, &hashedPassword, &user.Image, &user.Provider, &user.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.WithError(err).WithField("email", email).Error("User lookup failed")
		}
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	// OAuth-only accounts have no password
	if !hashedPassword.Valid || !s.verifyPassword(req.Password, hashedPassword.String) {
		s.logger.WithField("user_id", user.ID).Info("Invalid password")
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	s.completeSignIn(w, r, user)
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and blacklist token
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.BearerToken(r); ok && s.redis != nil {
		if err := s.redis.Set(r.Context(), middleware.BlacklistKey(token), "1", s.jwt.Expiry()).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to blacklist token")
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// GoogleLogin redirects to Google's consent screen
// @Summary Sign in with Google
// @Tags auth
// @Success 307
// @Failure 503 {object} ErrorResponse "Google sign-in is not configured"
// @Router /auth/google [get]
func (s *AuthService) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil || s.redis == nil {
		SendErrorResponse(w, "Google sign-in is not configured", http.StatusServiceUnavailable, nil)
		return
	}

	state, err := s.newState()
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate OAuth state")
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}
	if err := s.redis.Set(r.Context(), oauthStateKey(state), "1", oauthStateTTL).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store OAuth state")
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the Google sign-in
// @Summary Google OAuth callback
// @Tags auth
// @Produce json
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired state"
// @Failure 502 {object} ErrorResponse "Google sign-in failed"
// @Router /auth/google/callback [get]
func (s *AuthService) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil || s.redis == nil {
		SendErrorResponse(w, "Google sign-in is not configured", http.StatusServiceUnavailable, nil)
		return
	}

	ctx := r.Context()
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		SendErrorResponse(w, "Invalid or expired state", http.StatusBadRequest, nil)
		return
	}

	// Del doubles as the single-use check.
	n, err := s.redis.Del(ctx, oauthStateKey(state)).Result()
	if err != nil || n == 0 {
		SendErrorResponse(w, "Invalid or expired state", http.StatusBadRequest, nil)
		return
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.WithError(err).Warn("Google code exchange failed")
		SendErrorResponse(w, "Google sign-in failed", http.StatusBadGateway, nil)
		return
	}

	profile, err := s.fetchGoogleUser(ctx, token)
	if err != nil {
		s.logger.WithError(err).Warn("Google userinfo request failed")
		SendErrorResponse(w, "Google sign-in failed", http.StatusBadGateway, nil)
		return
	}

	var user models.User
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, image, provider) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET image = EXCLUDED.image,
			name = COALESCE(NULLIF(users.name, ''), EXCLUDED.name)
		RETURNING id, name, email, COALESCE(image, ''), provider, created_at`,
		uuid.NewString(), profile.Name, strings.ToLower(profile.Email), profile.Picture, providerGoogle,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Image, &user.Provider, &user.CreatedAt)
	if err != nil {
		s.logger.WithError(err).WithField("email", profile.Email).Error("Failed to upsert Google user")
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	s.completeSignIn(w, r, user)
}

// GetUserAccount retrieves the signed-in user
// @Summary Get user account details
// @Description Get authenticated user's account information
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User "User account details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/account [get]
func (s *AuthService) GetUserAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var user models.User
	err := s.db.QueryRowContext(r.Context(),
		`SELECT id, name, email, COALESCE(image, ''), provider, created_at FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.Image, &user.Provider, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		SendErrorResponse(w, "User not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to fetch user details")
		SendErrorResponse(w, "Failed to fetch user details", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *AuthService) completeSignIn(w http.ResponseWriter, r *http.Request, user models.User) {
	s.onSignIn(r.Context(), user.ID)

	token, err := s.generateJWT(user.ID, user.Email)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("JWT generation failed")
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// onSignIn makes sure the user has a credit balance. Errors are logged, never returned.
func (s *AuthService) onSignIn(ctx context.Context, userID string) {
	if s.credits == nil {
		return
	}
	created, err := s.credits.EnsureProvisioned(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to provision credits on sign-in")
		return
	}
	if created {
		s.logger.WithField("user_id", userID).Info("Provisioned welcome credits")
	}
}

func (s *AuthService) fetchGoogleUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var profile googleUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, errors.New("userinfo has no email")
	}
	return &profile, nil
}

func (s *AuthService) generateJWT(userID, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(s.jwt.Expiry()).Unix(),
	})

	return token.SignedString([]byte(s.jwt.SecretKey))
}

func (s *AuthService) hashPassword(password string) (string, error) {
	salt := make([]byte, s.argon.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, s.argon.Time, s.argon.Memory, s.argon.Threads, s.argon.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func (s *AuthService) verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, s.argon.Time, s.argon.Memory, s.argon.Threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}

func oauthStateKey(state string) string {
	return "oauth_state:" + state
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
