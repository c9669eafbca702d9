package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
	"liyu1981.xyz/device-gateway-service/pkg/common"
)

// upstream "latest" response: an array of per-device entries, each holding a
// nested array of samples
type upstreamSample struct {
	MonitorValue string `json:"monitorValue"`
	MonitorTime  string `json:"monitorTime"`
}

type upstreamEntry struct {
	Data []upstreamSample `json:"data"`
}

type upstreamPayload struct {
	Code *int            `json:"code"`
	Data []upstreamEntry `json:"data"`
}

// latestValue forwards the query to the upstream telemetry service and
// projects its response into a single reading. It always returns a
// well-formed (possibly empty) reading together with the body-level code;
// the error reports what degraded, for logging only.
//
// Projection rule: the first sample of the first entry that has at least one
// sample. Multi-device and multi-sample responses are silently discarded by
// this tie-break; that matches the upstream contract and is a documented
// limitation, not a bug to fix.
func (r *Registry) latestValue(ctx context.Context, input *LatestInput) (*LatestReading, int, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameRegistryCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryGateway),
	)

	empty := &LatestReading{}

	if r.UpstreamURL == "" {
		return empty, http.StatusInternalServerError, ErrUpstreamUnconfigured
	}

	body, err := json.Marshal(input)
	if err != nil {
		return empty, http.StatusInternalServerError, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.UpstreamURL+"/latest", bytes.NewReader(body))
	if err != nil {
		return empty, http.StatusInternalServerError, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.upstreamClient().Do(req)
	if err != nil {
		// timeouts land here too and degrade the same way
		logger.Warn("Upstream latest call failed", zap.Error(err))
		return empty, http.StatusBadGateway, ErrUpstreamUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.Warn("Upstream latest call returned non-success status",
			zap.Int("status", resp.StatusCode))
		return empty, resp.StatusCode, ErrUpstreamUnavailable
	}

	var payload upstreamPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logger.Warn("Upstream latest payload not decodable", zap.Error(err))
		return empty, resp.StatusCode, ErrUpstreamUnavailable
	}

	code := resp.StatusCode
	if payload.Code != nil {
		code = *payload.Code
	}

	for _, entry := range payload.Data {
		if len(entry.Data) > 0 {
			sample := entry.Data[0]
			return &LatestReading{
				MonitorValue: sample.MonitorValue,
				MonitorTime:  sample.MonitorTime,
			}, code, nil
		}
	}

	return empty, code, nil
}

type IGatewayImpl struct {
	registry *Registry
}

func (ig *IGatewayImpl) LatestValue(ctx context.Context, input *LatestInput) (*LatestReading, int, error) {
	return ig.registry.latestValue(ctx, input)
}

func (r *Registry) GetIGateway() IGateway {
	return &IGatewayImpl{registry: r}
}
