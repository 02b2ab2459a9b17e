package formtoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/apperrors"
)

const (
	defaultTTL           = 15 * time.Minute
	defaultSigningMethod = "HS256"
)

// Claims carried by a form token. Nothing user specific: the token only
// proves the form page was served recently, to keep bots from posting the
// public endpoint directly.
type Claims struct {
	jwt.RegisteredClaims
}

// Form token manager with sensible defaults
type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC algorithm, default is used if not set
	Alg string

	// Token lifetime, default is used if not set
	TTL time.Duration
}

type Manager struct {
	key string
	alg jwt.SigningMethod
	ttl time.Duration

	now func() time.Time
}

func New(cfg Config) (*Manager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}

	return &Manager{
		key: cfg.SecretKey,
		alg: jwt.GetSigningMethod(cfg.Alg),
		ttl: cfg.TTL,
		now: time.Now,
	}, nil
}

// Issue returns a signed token valid for the configured lifetime
func (m *Manager) Issue() (string, error) {
	now := m.now().Truncate(time.Second)

	token := jwt.NewWithClaims(m.alg, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return "", fmt.Errorf("can't sign form token. Err: %w", err)
	}

	return signed, nil
}

// Verify checks the token signature and expiry
func (m *Manager) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			return []byte(m.key), nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)

	switch {
	case err == nil && token.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrFormTokenExpired
	default:
		return apperrors.ErrFormTokenInvalid
	}
}
