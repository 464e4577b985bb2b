package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller extracted from a verified bearer token.
type Identity struct {
	Email string
	Name  string
}

var (
	ErrMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingEmail  = errors.New("email not found in token")
)

const devSecret = "dev-secret"

// Verifier validates HS256 tokens issued by the account service.
type Verifier struct {
	secret []byte
}

// NewVerifier builds a verifier. An empty secret is only accepted outside production.
func NewVerifier(secret string, production bool) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if production {
			return nil, fmt.Errorf("%w: JWT_SECRET_KEY required in production", ErrMissingSecret)
		}
		secret = devSecret
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify checks signature and expiry and returns the caller identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := claims["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, ErrMissingEmail
	}

	name := claimString(claims["username"])
	if name == "" {
		name = claimString(claims["user_id"])
	}
	return Identity{Email: email, Name: name}, nil
}

// Sign issues a token for the identity. Used by tooling and tests.
func (v *Verifier) Sign(id Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{"email": id.Email}
	if id.Name != "" {
		claims["username"] = id.Name
	}
	if ttl > 0 {
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func claimString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
