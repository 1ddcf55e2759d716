package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/ruralpay/invoices/internal/services"
)

// SessionCookie holds the session token set at login.
const SessionCookie = "session"

type contextKey string

const (
	userIDKey contextKey = "userID"
	tokenKey  contextKey = "sessionToken"
)

type TokenParser interface {
	Parse(token string) (*services.SessionClaims, error)
}

// Auth guards dashboard routes. Browsers without a valid session are sent
// to the login page; API callers presenting a bad bearer token get a 401.
type Auth struct {
	tokens    TokenParser
	redis     *redis.Client
	loginPath string
}

func NewAuth(tokens TokenParser, redisClient *redis.Client, loginPath string) *Auth {
	return &Auth{tokens: tokens, redis: redisClient, loginPath: loginPath}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, bearer := TokenFromRequest(r)
		if token == "" {
			a.reject(w, r, bearer, "Authorization required")
			return
		}

		claims, err := a.tokens.Parse(token)
		if err != nil {
			log.Printf("[AUTH] Invalid session token: %v", err)
			a.reject(w, r, bearer, "Invalid token")
			return
		}

		if a.redis != nil {
			n, err := a.redis.Exists(r.Context(), services.BlacklistKey(token)).Result()
			if err != nil {
				log.Printf("[AUTH] Blacklist lookup failed: %v", err)
				services.SendErrorResponse(w, "Session store unavailable", http.StatusServiceUnavailable, nil)
				return
			}
			if n > 0 {
				a.reject(w, r, bearer, "Session has been logged out")
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) reject(w http.ResponseWriter, r *http.Request, bearer bool, msg string) {
	if bearer {
		services.SendErrorResponse(w, msg, http.StatusUnauthorized, nil)
		return
	}
	http.Redirect(w, r, a.loginPath, http.StatusSeeOther)
}

// TokenFromRequest returns the session token from the Authorization header,
// falling back to the session cookie. bearer is true when the header was used.
func TokenFromRequest(r *http.Request) (token string, bearer bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", true
		}
		return parts[1], true
	}

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value, false
	}
	return "", false
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
