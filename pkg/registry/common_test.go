package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"liyu1981.xyz/device-gateway-service/pkg/auth"
	"liyu1981.xyz/device-gateway-service/pkg/db"
	_ "liyu1981.xyz/device-gateway-service/pkg/testing"
)

const testSigningSecret = "registry-test-signing-secret"

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	verifier, err := auth.NewTokenVerifier(auth.TokenVerifierConfig{Secret: testSigningSecret})
	require.NoError(t, err)

	reg := &Registry{
		Db:       *db.GetInstance(db.UseMemorySqliteDialector()),
		Hasher:   auth.NewSecretHasher(),
		Verifier: verifier,
	}
	reg.WithServices(ServiceOpts{
		Registrar: reg.GetIRegistrar(),
		Gateway:   reg.GetIGateway(),
	})

	return reg
}

func mintToken(t *testing.T, userID int64) string {
	t.Helper()

	token, err := auth.IssueToken(userID, testSigningSecret, time.Minute)
	require.NoError(t, err)
	return token
}
