package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string. Exp stores the expiration
// timestamp as a time.Time. Tokens are presented in the Authorization
// header (or, for inline image references, a query parameter) when calling
// protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenClaims carries the identity encoded in a verified access token.
type TokenClaims struct {
	UserID uint64 // the `sub` claim
	Email  string // the `email` claim
}

// ErrTokenExpired is returned by ParseAccessToken when the token's
// signature is valid but its expiry window has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid is returned by ParseAccessToken for malformed tokens,
// bad signatures, unexpected signing algorithms or missing claims.
var ErrTokenInvalid = errors.New("token invalid")

// NewAccessToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the user ID, the user's email, and a TTL in hours. The
// JWT includes the subject (sub), email, expiration (exp) and issued at
// (iat) claims.
func NewAccessToken(secret string, userID uint64, email string, ttlHours int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a raw token string
// and extracts its identity claims. Expired tokens and invalid tokens are
// reported distinctly so the API layer can keep its 401/403 split; both are
// rejections, but only an expired token was ever ours.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, ErrTokenInvalid
	}
	if !tok.Valid {
		return TokenClaims{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrTokenInvalid
	}

	out := TokenClaims{}
	// JWT numeric values decode as float64; some libraries encode the
	// subject as a numeric string instead.
	switch sub := claims["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	case string:
		n, perr := parseUint(sub)
		if perr != nil {
			return TokenClaims{}, ErrTokenInvalid
		}
		out.UserID = n
	default:
		return TokenClaims{}, ErrTokenInvalid
	}
	if out.UserID == 0 {
		return TokenClaims{}, ErrTokenInvalid
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
