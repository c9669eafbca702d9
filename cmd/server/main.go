package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/device-gateway-service/pkg/auth"
	"liyu1981.xyz/device-gateway-service/pkg/common"
	"liyu1981.xyz/device-gateway-service/pkg/db"
	devHttp "liyu1981.xyz/device-gateway-service/pkg/http"
	"liyu1981.xyz/device-gateway-service/pkg/registry"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	dbType := os.Getenv(common.EnvKeyDevRegDBType)
	switch dbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown DEVREG_DB_TYPE: " + dbType)
	}

	// the signing secret is required, there is deliberately no insecure
	// fallback value
	jwtSecret := strings.TrimSpace(os.Getenv(common.EnvKeyDevRegJwtSecret))
	verifier, err := auth.NewTokenVerifier(auth.TokenVerifierConfig{Secret: jwtSecret})
	if err != nil {
		log.Fatal("DEVREG_JWT_SECRET must be set to a non-empty signing secret")
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyDevRegHttpHostPort))
	upstreamURL := strings.TrimSpace(os.Getenv(common.EnvKeyDevRegUpstreamURL))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyDevRegDefaultRate), 64); err != nil {
		log.Fatal("Invalid DEVREG_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyDevRegDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid DEVREG_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	registryCore := registry.Registry{
		Db:          *dbInstance,
		Hasher:      auth.NewSecretHasher(),
		Verifier:    verifier,
		UpstreamURL: upstreamURL,
	}
	registryCore.WithServices(registry.ServiceOpts{
		Registrar: registryCore.GetIRegistrar(),
		Gateway:   registryCore.GetIGateway(),
	})

	if upstreamURL == "" {
		logger.Warn("DEVREG_UPSTREAM_URL not set, /latest will answer with a configuration error code")
	}

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	logger.Info("Starting HTTP server on port " + httpHostPort)
	rs := &devHttp.RestfulServer{
		Server:           gin.Default(),
		Registry:         &registryCore,
		RateLimiterStore: registry.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
