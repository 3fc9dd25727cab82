package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for hashing the admin access code
	BcryptCost = 10

	adminSubject     = "admin"
	sessionTokenSize = 32
)

var (
	ErrInvalidAccessCode = errors.New("invalid access code")
	ErrInvalidSession    = errors.New("invalid or expired session")
)

// AdminAuthService defines the interface for administrator authentication
type AdminAuthService interface {
	Login(ctx context.Context, code string) (signed string, session *domain.AdminSession, err error)
	Authenticate(ctx context.Context, signed string) (*Claims, error)
	Logout(ctx context.Context, signed string) error
}

// Claims represents the JWT claims of an admin session cookie. The JWT ID is
// the persisted session token.
type Claims struct {
	jwt.RegisteredClaims
}

type adminAuthService struct {
	sessions  repository.SessionRepository
	codeHash  []byte
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAdminAuthService creates a new instance of AdminAuthService. codeHash is
// the bcrypt hash of the shared admin access code.
func NewAdminAuthService(
	sessions repository.SessionRepository,
	codeHash string,
	jwtSecret string,
	ttl time.Duration,
) AdminAuthService {
	return &adminAuthService{
		sessions:  sessions,
		codeHash:  []byte(codeHash),
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// HashAccessCode hashes an access code with bcrypt
func HashAccessCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Login checks the access code, persists a new session and returns it as a
// signed token.
func (s *adminAuthService) Login(ctx context.Context, code string) (string, *domain.AdminSession, error) {
	if code == "" || bcrypt.CompareHashAndPassword(s.codeHash, []byte(code)) != nil {
		return "", nil, ErrInvalidAccessCode
	}

	token, err := newSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now().UTC()
	session := &domain.AdminSession{
		Token:     token,
		Active:    true,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	signed, err := s.sign(session, now)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}

	return signed, session, nil
}

// Authenticate verifies the signature and that the underlying session is
// still active and unexpired.
func (s *adminAuthService) Authenticate(ctx context.Context, signed string) (*Claims, error) {
	claims, err := s.parse(signed, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidSession
	}

	valid, err := s.sessions.IsValid(ctx, claims.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Logout deactivates the session behind signed. Expired or unknown sessions
// count as already logged out.
func (s *adminAuthService) Logout(ctx context.Context, signed string) error {
	claims, err := s.parse(signed, jwt.WithoutClaimsValidation())
	if err != nil {
		return ErrInvalidSession
	}

	if err := s.sessions.Invalidate(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

func (s *adminAuthService) sign(session *domain.AdminSession, now time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.Token,
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *adminAuthService) parse(signed string, opts ...jwt.ParserOption) (*Claims, error) {
	token, err := jwt.ParseWithClaims(signed, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.Subject != adminSubject {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
