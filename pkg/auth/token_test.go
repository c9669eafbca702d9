package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-secret"

func TestNewTokenVerifier_RequiresSecret(t *testing.T) {
	_, err := NewTokenVerifier(TokenVerifierConfig{})
	assert.ErrorIs(t, err, ErrEmptySigningSecret)

	v, err := NewTokenVerifier(TokenVerifierConfig{Secret: testSecret})
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestVerify_RoundTrip(t *testing.T) {
	v, err := NewTokenVerifier(TokenVerifierConfig{Secret: testSecret})
	require.NoError(t, err)

	token, err := IssueToken(42, testSecret, time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestVerify_Failures(t *testing.T) {
	v, err := NewTokenVerifier(TokenVerifierConfig{Secret: testSecret})
	require.NoError(t, err)

	{
		// garbage token
		_, err := v.Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}

	{
		// expired token
		token, err := IssueToken(42, testSecret, -time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}

	{
		// signed with a different secret
		token, err := IssueToken(42, "some-other-secret", time.Minute)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}

	{
		// valid signature but no numeric id claim
		noID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		})
		signed, err := noID.SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = v.Verify(signed)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}

	{
		// id claim of the wrong type
		wrongType := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"id":  "42",
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		signed, err := wrongType.SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = v.Verify(signed)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}

	{
		// unexpected signing algorithm
		badAlg := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
			"id":  float64(42),
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		signed, err := badAlg.SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = v.Verify(signed)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}
