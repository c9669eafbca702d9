package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySigningSecret = errors.New("signing secret must not be empty")
	ErrTokenInvalid       = errors.New("invalid or expired token")
)

// Claims is the trusted identity carried by a bearer token. UserID is the
// numeric user identifier under the "id" claim; it is validated as part of
// token verification, so a missing or mistyped id is the same failure as a
// bad signature.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// Validate is called by jwt.ParseWithClaims after signature and expiry
// checks. A zero id means the claim was absent.
func (c *Claims) Validate() error {
	if c.UserID == 0 {
		return errors.New("missing numeric id claim")
	}
	return nil
}

// TokenVerifierConfig is the explicit configuration for a TokenVerifier.
// There is deliberately no fallback secret: the process must be configured
// with one or refuse to start.
type TokenVerifierConfig struct {
	Secret string
}

type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(config TokenVerifierConfig) (*TokenVerifier, error) {
	if config.Secret == "" {
		return nil, ErrEmptySigningSecret
	}
	return &TokenVerifier{secret: []byte(config.Secret)}, nil
}

// Verify checks the HS256 signature and expiry of token and returns its
// claims. Every failure mode collapses into ErrTokenInvalid.
func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// IssueToken signs a token carrying userID, for tests and tooling; the
// service itself never issues tokens, user login lives elsewhere.
func IssueToken(userID int64, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
