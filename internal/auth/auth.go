// Package auth implements the demo authentication service: a fixed
// in-memory user table and HS256 JWT issuance. It exists to exercise the
// storefront's session handling, not to be a real identity system.
package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserExists is returned when registering an already known email.
	ErrUserExists = errors.New("user already exists")
)

// User is a demo account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims are the JWT claims the service issues.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies demo tokens against an in-memory user table.
type Service struct {
	secret []byte
	now    func() time.Time

	mu    sync.RWMutex
	users map[string]User // keyed by email
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService constructs the auth service with the demo user seeded.
func NewService(secret string, opts ...Option) *Service {
	s := &Service{
		secret: []byte(secret),
		now:    time.Now,
		users:  make(map[string]User),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Demo account accepted with the fixed demo password.
	s.users["demo@example.com"] = User{ID: "1", Email: "demo@example.com", Name: "Demo User"}
	return s
}

// Login validates demo credentials and returns the user with a signed
// token.
func (s *Service) Login(email, password string) (User, string, error) {
	if email != "demo@example.com" || password != "password" {
		return User{}, "", ErrInvalidCredentials
	}

	s.mu.RLock()
	user := s.users[email]
	s.mu.RUnlock()

	token, err := s.issueToken(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Register creates a new demo user and returns it with a signed token.
func (s *Service) Register(email, name string) (User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, "", errors.New("email must be valid")
	}
	if strings.TrimSpace(name) == "" {
		return User{}, "", errors.New("name is required")
	}

	s.mu.Lock()
	if _, ok := s.users[email]; ok {
		s.mu.Unlock()
		return User{}, "", ErrUserExists
	}
	user := User{ID: uuid.NewString(), Email: email, Name: name}
	s.users[email] = user
	s.mu.Unlock()

	token, err := s.issueToken(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Verify parses and validates a token, returning its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) issueToken(user User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return signed, nil
}
