package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	emailKey  contextKey = "email"
)

// BlacklistKey is where logged-out tokens are parked until they expire.
func BlacklistKey(token string) string {
	return "blacklist:" + token
}

// Authenticator validates bearer JWTs and rejects tokens revoked by logout.
type Authenticator struct {
	secret []byte
	redis  *redis.Client
	logger logrus.FieldLogger
}

func NewAuthenticator(secret string, redisClient *redis.Client, logger logrus.FieldLogger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		redis:  redisClient,
		logger: logger,
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		userID, email, err := a.validateToken(token)
		if err != nil {
			a.logger.WithError(err).Debug("Rejected bearer token")
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		if a.redis != nil {
			revoked, err := a.redis.Exists(r.Context(), BlacklistKey(token)).Result()
			if err != nil {
				a.logger.WithError(err).Warn("Token blacklist lookup failed")
			} else if revoked > 0 {
				http.Error(w, "Token has been revoked", http.StatusUnauthorized)
				return
			}
		}

		ctx := WithUser(r.Context(), userID, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) validateToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("unexpected claims type")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", "", fmt.Errorf("token has no user_id claim")
	}
	email, _ := claims["email"].(string)
	return userID, email, nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, emailKey, email)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}
