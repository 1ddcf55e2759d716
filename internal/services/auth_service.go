package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ruralpay/invoices/internal/config"
	"github.com/ruralpay/invoices/internal/database"
	"github.com/ruralpay/invoices/internal/models"
	"golang.org/x/crypto/argon2"
)

// CredentialsProviderName is the provider id the login form signs in with.
const CredentialsProviderName = "credentials"

// Messages returned by Authenticate.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWentWrong = "Something went wrong."
)

type AuthErrorKind string

const (
	// CredentialsSignin means the submitted credentials were rejected.
	CredentialsSignin AuthErrorKind = "CredentialsSignin"
	// CallbackRouteError means the provider failed while checking credentials.
	CallbackRouteError AuthErrorKind = "CallbackRouteError"
	// ConfigurationError means the requested provider does not exist.
	ConfigurationError AuthErrorKind = "Configuration"
)

// AuthError is a failure the authentication layer recognizes.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IdentityProvider verifies credentials for the named provider.
type IdentityProvider interface {
	SignIn(ctx context.Context, provider string, form url.Values) (*Session, error)
}

// LoginRequest represents the login form fields
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// CredentialsProvider checks an email/password pair against the users table
// and issues a session token.
type CredentialsProvider struct {
	users     UserFinder
	tokens    *TokenIssuer
	argon2    config.Argon2Config
	validator *ValidationHelper
}

func NewCredentialsProvider(users UserFinder, tokens *TokenIssuer, argon2Config config.Argon2Config) *CredentialsProvider {
	return &CredentialsProvider{
		users:     users,
		tokens:    tokens,
		argon2:    argon2Config,
		validator: NewValidationHelper(),
	}
}

func (p *CredentialsProvider) SignIn(ctx context.Context, provider string, form url.Values) (*Session, error) {
	if provider != CredentialsProviderName {
		return nil, &AuthError{Kind: ConfigurationError, Err: fmt.Errorf("unknown provider %q", provider)}
	}

	req := LoginRequest{
		Email:    strings.ToLower(strings.TrimSpace(form.Get("email"))),
		Password: form.Get("password"),
	}
	if err := p.validator.ValidateStruct(&req); err != nil {
		return nil, &AuthError{Kind: CredentialsSignin, Err: err}
	}

	user, err := p.users.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, database.ErrUserNotFound) {
		return nil, &AuthError{Kind: CredentialsSignin}
	}
	if err != nil {
		return nil, &AuthError{Kind: CallbackRouteError, Err: err}
	}

	if !VerifyPassword(req.Password, user.Password, p.argon2) {
		return nil, &AuthError{Kind: CredentialsSignin}
	}

	return p.tokens.Issue(user)
}

type AuthService struct {
	provider IdentityProvider
	redis    *redis.Client
	homePath string
	expiry   time.Duration

	noRevokeWarning sync.Once
}

func NewAuthService(provider IdentityProvider, redisClient *redis.Client, homePath string, expiry time.Duration) *AuthService {
	return &AuthService{
		provider: provider,
		redis:    redisClient,
		homePath: homePath,
		expiry:   expiry,
	}
}

// Authenticate signs in with the credentials provider. Recognized
// authentication failures come back as a message; anything else is Fatal.
// On success the result redirects to the dashboard and carries the session.
func (s *AuthService) Authenticate(ctx context.Context, _ ActionState, form url.Values) (Result, *Session) {
	session, err := s.provider.SignIn(ctx, CredentialsProviderName, form)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			log.Printf("[AUTH] Sign-in failed (%s) for %s", authErr.Kind, form.Get("email"))
			if authErr.Kind == CredentialsSignin {
				return Ok(ActionState{Message: MsgInvalidCredentials}), nil
			}
			return Ok(ActionState{Message: MsgSomethingWentWrong}), nil
		}
		log.Printf("[AUTH] Sign-in error: %v", err)
		return Fatal(err), nil
	}

	log.Printf("[AUTH] Login successful for user %s", session.UserID)
	return Redirect(s.homePath), session
}

// Logout blacklists the token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if s.redis == nil {
		s.noRevokeWarning.Do(func() {
			log.Println("[AUTH] Redis unavailable, logged out sessions stay valid until their token expires")
		})
		return nil
	}
	if err := s.redis.Set(ctx, BlacklistKey(token), "1", s.expiry).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// BlacklistKey is the Redis key marking a logged-out token.
func BlacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// HashPassword returns "salt$hash" with both parts base64 encoded.
func HashPassword(password string, cfg config.Argon2Config) (string, error) {
	salt := make([]byte, cfg.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		uint32(cfg.Time), uint32(cfg.Memory), uint8(cfg.Threads), uint32(cfg.KeyLength))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func VerifyPassword(password, hashedPassword string, cfg config.Argon2Config) bool {
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

	computedHash := argon2.IDKey([]byte(password), salt,
		uint32(cfg.Time), uint32(cfg.Memory), uint8(cfg.Threads), uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
