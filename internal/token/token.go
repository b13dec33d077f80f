package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "org-task-api"

// Type distinguishes access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

var (
	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken  = errors.New("invalid token")
	errMissingSecret = errors.New("token secret is not configured")
)

// Claims represents JWT claims issued by the service.
type Claims struct {
	Email string `json:"email"`
	Type  Type   `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user id.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// Pair is the result of a successful login.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Manager signs and verifies HS256 tokens. Access and refresh tokens use
// separate secrets so one can never be presented as the other.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewManager creates a Manager. Both secrets are required.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	accessSecret = strings.TrimSpace(accessSecret)
	refreshSecret = strings.TrimSpace(refreshSecret)
	if accessSecret == "" || refreshSecret == "" {
		return nil, errMissingSecret
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be greater than zero")
	}
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// IssuePair signs a new access and refresh token for the user.
func (m *Manager) IssuePair(userID uint64, email string) (Pair, error) {
	access, err := m.sign(userID, email, TypeAccess)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.sign(userID, email, TypeRefresh)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(m.accessTTL / time.Second),
	}, nil
}

// IssueAccess signs a new access token only.
func (m *Manager) IssueAccess(userID uint64, email string) (string, error) {
	return m.sign(userID, email, TypeAccess)
}

// ParseAccess verifies an access token.
func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, TypeAccess)
}

// ParseRefresh verifies a refresh token.
func (m *Manager) ParseRefresh(raw string) (*Claims, error) {
	return m.parse(raw, TypeRefresh)
}

func (m *Manager) sign(userID uint64, email string, typ Type) (string, error) {
	secret, ttl := m.keyFor(typ)
	now := m.now().UTC()
	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parse(raw string, typ Type) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}
	secret, _ := m.keyFor(typ)

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) keyFor(typ Type) ([]byte, time.Duration) {
	if typ == TypeRefresh {
		return m.refreshSecret, m.refreshTTL
	}
	return m.accessSecret, m.accessTTL
}
