package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL bounds a bearer token's lifetime when no TTL is
// configured. Tokens expire by elapsed time alone; there is no
// server-side revocation.
const DefaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenMalformed means the token could not be parsed or its
	// claims are incomplete.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrTokenExpired means the signature checked out but the embedded
	// expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrInvalidSignature means the signing check failed.
	ErrInvalidSignature = errors.New("auth: invalid token signature")
)

// Claims is the verified payload of a bearer token: account identity plus
// role, wrapped around the registered JWT claims.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountID returns the subject the token was issued for.
func (c Claims) AccountID() string {
	return c.Subject
}

// TokenService signs and verifies bearer tokens with a process-wide HS256
// secret. The secret is injected at construction and never mutated, so a
// single instance is safe for concurrent use.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService)

// WithTokenTTL overrides the default token lifetime.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTokenIssuer sets the issuer claim stamped into and required from
// tokens.
func WithTokenIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		s.issuer = strings.TrimSpace(issuer)
	}
}

// WithTokenClock overrides the time source (useful for tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService from an explicit signing
// secret.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs a token carrying the account id and role. The token embeds
// issuance and expiry times; no state is kept server-side.
func (s *TokenService) Issue(accountID string, role Role) (string, time.Time, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", time.Time{}, errors.New("auth: account id is required")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: cannot issue token for unknown role %q", role)
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature integrity and expiry, then returns the decoded
// claims. Claims are never read before the signature verifies.
func (s *TokenService) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrTokenMalformed
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return Claims{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		default:
			return Claims{}, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" || !claims.Role.Valid() {
		return Claims{}, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return Claims{}, ErrTokenMalformed
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		return Claims{}, ErrTokenMalformed
	}
	return *claims, nil
}
