// Package token issues and verifies signed identity assertions.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure reasons. All of them are DENY inputs for the
// authorization engine, never faults.
var (
	ErrMalformed    = errors.New("token: malformed")
	ErrBadSignature = errors.New("token: bad signature")
	ErrExpired      = errors.New("token: expired")
	ErrMissingClaim = errors.New("token: missing user claim")
)

// Claims carried inside a signed token. Roles is an optional snapshot written
// at issue time; the authorization engine always re-resolves roles from
// storage and never trusts it.
type Claims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Result is the outcome of verifying a token: either valid claims or a
// classified reason. Callers branch on Valid() instead of probing the claim
// shape.
type Result struct {
	Claims *Claims
	Err    error
}

// Valid reports whether verification succeeded.
func (r Result) Valid() bool {
	return r.Err == nil && r.Claims != nil
}

// Codec signs and verifies identity tokens with a server-side HMAC secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec constructs a Codec. ttl is the access validity window, 24h by
// convention.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue produces a signed token asserting userID, optionally with a role
// snapshot claim.
func (c *Codec) Issue(userID int64, roles []string) (string, error) {
	now := c.now()
	claims := &Claims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiration and returns a tagged Result. It
// never panics and never reports a fault: every failure mode is a classified
// invalid result.
func (c *Codec) Verify(raw string) Result {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return Result{Err: classify(err)}
	}
	if !parsed.Valid {
		return Result{Err: ErrBadSignature}
	}
	if claims.UserID == 0 {
		return Result{Err: ErrMissingClaim}
	}
	return Result{Claims: claims}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	default:
		return ErrMalformed
	}
}
