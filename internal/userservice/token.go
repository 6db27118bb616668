package userservice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

var (
	ErrInvalidCredential    = errors.New("invalid credential")
	errMissingSigningSecret = errors.New("signing secret must be provided")
)

// Claims is the JWT payload issued on login.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	SigningSecret []byte
	Issuer        string
	TTL           time.Duration
	Clock         func() time.Time
}

// TokenManager issues and verifies HS256 bearer tokens. It never consults user storage.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  func() time.Time
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, errMissingSigningSecret
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &TokenManager{
		secret: append([]byte(nil), cfg.SigningSecret...),
		issuer: cfg.Issuer,
		ttl:    ttl,
		clock:  clock,
	}, nil
}

// Issue signs a token for u and returns it with its expiry.
func (m *TokenManager) Issue(u *User) (string, time.Time, error) {
	now := m.clock().UTC()
	expiry := now.Add(m.ttl)

	claims := Claims{
		ID:       u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiry, nil
}

// Verify validates the token and returns the caller identity. Any failure, including an
// empty token, yields an error wrapping ErrInvalidCredential.
func (m *TokenManager) Verify(token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token must be provided", ErrInvalidCredential)
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.ID) == "" {
		return nil, ErrInvalidCredential
	}

	return &Identity{UserID: claims.ID, Username: claims.Username}, nil
}
