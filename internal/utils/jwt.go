package utils // package utils provides helper functions for token creation and hashing

import (
	"errors" // sentinel error for any verification failure
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by VerifyToken for every failure mode: bad
// signature, wrong signing algorithm, malformed token or expired claims.
// Callers must not distinguish between these cases.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the identity payload carried by both access and refresh
// tokens.  The two token kinds are signed with the same secret and differ
// only in TTL and in which cookie they travel in.
type TokenClaims struct {
	Subject   string // user id ("sub" claim)
	Role      string // ADMIN | EDITOR | VIEWER
	FirstName string
	LastName  string
}

// IssueToken builds and signs an HS256 JWT for the given claims.  The JWT
// includes the identity fields plus standard exp and iat claims.  Expiry is
// computed from the supplied TTL against the current UTC time.
func IssueToken(secret string, claims TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	mc := jwt.MapClaims{
		"sub":       claims.Subject,
		"role":      claims.Role,
		"firstName": claims.FirstName,
		"lastName":  claims.LastName,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return t.SignedString([]byte(secret))
}

// VerifyToken parses and validates a token produced by IssueToken and
// returns its identity claims.  Signature, algorithm and expiry are all
// checked; any failure collapses into ErrInvalidToken.
func VerifyToken(secret, token string) (TokenClaims, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; "alg":"none" and
		// asymmetric confusion attacks fail here.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}
	return TokenClaims{
		Subject:   strClaim(mc, "sub"),
		Role:      strClaim(mc, "role"),
		FirstName: strClaim(mc, "firstName"),
		LastName:  strClaim(mc, "lastName"),
	}, nil
}

func strClaim(mc jwt.MapClaims, key string) string {
	if v, ok := mc[key].(string); ok {
		return v
	}
	return ""
}
