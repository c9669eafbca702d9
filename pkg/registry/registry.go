package registry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"liyu1981.xyz/device-gateway-service/pkg/auth"
	"liyu1981.xyz/device-gateway-service/pkg/db"
)

var (
	// registration failures, all translated to body codes at the HTTP boundary
	ErrMissingCredential   = errors.New("missing credential")
	ErrInvalidCredential   = errors.New("invalid or expired credential")
	ErrInvalidDeviceSecret = errors.New("invalid device secret")
	ErrRegistrationFailed  = errors.New("failed to register device")

	// gateway failures
	ErrUpstreamUnconfigured = errors.New("upstream telemetry service not configured")
	ErrUpstreamUnavailable  = errors.New("upstream telemetry service unavailable")
)

// RegisterInput carries one registration request. Latitude/Longitude are
// decimal text and stored only when both are set.
type RegisterInput struct {
	DeviceID        string
	DeviceSecretKey string
	MonitorItem     string
	CustomName      string
	Latitude        string
	Longitude       string
}

// LatestInput is forwarded verbatim as the upstream request body.
type LatestInput struct {
	DeviceID        string `json:"deviceId"`
	DeviceSecretKey string `json:"deviceSecretKey"`
	MonitorItem     string `json:"monitorItem"`
}

// LatestReading is a single (value, time) pair projected from an upstream
// response. Never persisted here.
type LatestReading struct {
	MonitorValue string
	MonitorTime  string
}

//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks

type IRegistrar interface {
	Register(token string, input *RegisterInput) error
}

type IGateway interface {
	LatestValue(ctx context.Context, input *LatestInput) (*LatestReading, int, error)
}

const defaultUpstreamTimeout = 10 * time.Second

type Registry struct {
	Db       db.DB
	Hasher   auth.SecretHasher
	Verifier *auth.TokenVerifier

	// UpstreamURL is the base address of the upstream telemetry service;
	// empty disables the gateway (fail fast, no network call).
	UpstreamURL string
	HTTPClient  *http.Client

	Registrar IRegistrar
	Gateway   IGateway
}

type ServiceOpts struct {
	Registrar IRegistrar
	Gateway   IGateway
}

func (r *Registry) WithServices(opts ServiceOpts) *Registry {
	if opts.Registrar != nil {
		r.Registrar = opts.Registrar
	}
	if opts.Gateway != nil {
		r.Gateway = opts.Gateway
	}
	return r
}

func (r *Registry) upstreamClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return &http.Client{Timeout: defaultUpstreamTimeout}
}
