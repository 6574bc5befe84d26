// Package auth implements the bearer token lifecycle: issuing and
// verifying signed HMAC-SHA256 JWTs that carry the user's identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/papertrade-io/papertrade/internal/common"
)

const issuerName = "papertrade-server"

var (
	// ErrInvalidToken covers signature mismatch, malformed tokens,
	// unexpected signing methods, and missing subject claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a structurally valid token has
	// passed its expiry instant.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the verified identity extracted from a token.
type Claims struct {
	Subject   string // user email
	Name      string
	ExpiresAt time.Time
}

// Issuer signs and verifies bearer tokens. The signing secret and default
// TTL are fixed at construction; there is no package-level state.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer from the auth configuration.
func NewIssuer(cfg *common.AuthConfig) *Issuer {
	return &Issuer{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.GetTokenExpiry(),
	}
}

// Issue creates a signed token for the given subject using the default TTL.
func (i *Issuer) Issue(subject, name string) (string, error) {
	return i.IssueWithTTL(subject, name, i.ttl)
}

// IssueWithTTL creates a signed token expiring at now + ttl.
func (i *Issuer) IssueWithTTL(subject, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"name": name,
		"iss":  issuerName,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token string. The signature is verified
// before any claim is trusted; tampered payloads fail here rather than
// leaking claim values.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)

	out := &Claims{Subject: sub, Name: name}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
