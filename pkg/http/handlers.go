package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/device-gateway-service/pkg/registry"
)

// All device routes answer transport status 200 with the outcome carried in
// the body-level "code" field; only schema-invalid bodies get a 400 and the
// limiter a 429.

type DeviceLocation struct {
	Latitude string `json:"latitude"`
	// "longtitude" is a wire-format typo inherited from the original API
	// contract; deployed devices send it, so it stays.
	Longtitude string `json:"longtitude"`
}

type RegisterRequest struct {
	DeviceID        string          `json:"deviceId"`
	DeviceSecretKey string          `json:"deviceSecretKey"`
	MonitorItem     string          `json:"monitorItem"`
	CustomName      string          `json:"customName"`
	DeviceLocation  *DeviceLocation `json:"deviceLocation"`
}

var registerRequestSchema = z.Struct(z.Shape{
	"DeviceID":        z.String().Required(),
	"DeviceSecretKey": z.String().Required(),
	"MonitorItem":     z.String().Required(),
	"CustomName":      z.String().Optional(),
	"DeviceLocation": z.Ptr(z.Struct(z.Shape{
		"Latitude":   z.String().Required(),
		"Longtitude": z.String().Required(),
	})),
})

type RegisterResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func getBearerToken(authHeader string) string {
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || scheme != "Bearer" || token == "" {
		return ""
	}
	return token
}

func (rs *RestfulServer) RegisterDevice(c *gin.Context) {
	var req RegisterRequest
	if err := registerRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if !rs.CheckDeviceLimiter(req.DeviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	input := &registry.RegisterInput{
		DeviceID:        req.DeviceID,
		DeviceSecretKey: req.DeviceSecretKey,
		MonitorItem:     req.MonitorItem,
		CustomName:      req.CustomName,
	}
	if req.DeviceLocation != nil {
		input.Latitude = req.DeviceLocation.Latitude
		input.Longitude = req.DeviceLocation.Longtitude
	}

	err := rs.Registry.Registrar.Register(getBearerToken(c.GetHeader("Authorization")), input)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, RegisterResponse{Code: 200, Message: "ok"})
	case errors.Is(err, registry.ErrMissingCredential):
		c.JSON(http.StatusOK, RegisterResponse{Code: 401, Message: "Missing Authorization header"})
	case errors.Is(err, registry.ErrInvalidCredential):
		c.JSON(http.StatusOK, RegisterResponse{Code: 401, Message: "Invalid or expired token"})
	case errors.Is(err, registry.ErrInvalidDeviceSecret):
		c.JSON(http.StatusOK, RegisterResponse{Code: 401, Message: "Invalid device secret"})
	default:
		c.JSON(http.StatusOK, RegisterResponse{Code: 500, Message: "Failed to register device"})
	}
}

type LatestRequest struct {
	DeviceID        string `json:"deviceId"`
	DeviceSecretKey string `json:"deviceSecretKey"`
	MonitorItem     string `json:"monitorItem"`
}

var latestRequestSchema = z.Struct(z.Shape{
	"DeviceID":        z.String().Required(),
	"DeviceSecretKey": z.String().Required(),
	"MonitorItem":     z.String().Required(),
})

type LatestResponse struct {
	Code         int    `json:"code"`
	MonitorValue string `json:"monitorValue"`
	MonitorTime  string `json:"monitorTime"`
}

func (rs *RestfulServer) LatestValue(c *gin.Context) {
	var req LatestRequest
	if err := latestRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if !rs.CheckDeviceLimiter(req.DeviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	// a degraded upstream still yields a well-formed (empty) reading; the
	// gateway logs the failure and reports it through the body code
	reading, code, _ := rs.Registry.Gateway.LatestValue(c.Request.Context(), &registry.LatestInput{
		DeviceID:        req.DeviceID,
		DeviceSecretKey: req.DeviceSecretKey,
		MonitorItem:     req.MonitorItem,
	})

	c.JSON(http.StatusOK, LatestResponse{
		Code:         code,
		MonitorValue: reading.MonitorValue,
		MonitorTime:  reading.MonitorTime,
	})
}

type DeviceDataItem struct {
	MonitorItem  string `json:"monitorItem"`
	MonitorTime  string `json:"monitorTime"`
	MonitorValue string `json:"monitorValue"`
	NodeID       string `json:"nodeId,omitempty"`
}

type DeviceResponseItem struct {
	Data         []DeviceDataItem `json:"data"`
	DataStatus   int              `json:"dataStatus"`
	DeviceID     string           `json:"deviceId"`
	DeviceStatus int              `json:"deviceStatus"`
	ID           int              `json:"id"`
	CustomName   string           `json:"customname"`
	Name         string           `json:"name"`
	SensorNumber int              `json:"sensorNumber"`
}

type DeviceResponse struct {
	Code    int                  `json:"code"`
	Data    []DeviceResponseItem `json:"data"`
	Message string               `json:"message"`
	Status  string               `json:"status"`
}

// buildEmptyResponse is the placeholder container the history endpoints
// answer with; the historical query path lives upstream and these routes
// only preserve the response shape.
func buildEmptyResponse(deviceID string) DeviceResponse {
	return DeviceResponse{
		Code: 0,
		Data: []DeviceResponseItem{
			{
				Data:     []DeviceDataItem{},
				DeviceID: deviceID,
			},
		},
		Message: "ok",
		Status:  "ok",
	}
}

type HistoryRequest struct {
	DeviceID        string `json:"deviceId"`
	DeviceSecretKey string `json:"deviceSecretKey"`
	// "minitorItem" is another inherited wire-format typo
	MinitorItem string  `json:"minitorItem"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
}

var historyRequestSchema = z.Struct(z.Shape{
	"DeviceID":        z.String().Required(),
	"DeviceSecretKey": z.String().Required(),
	"MinitorItem":     z.String().Required(),
	"Start":           z.Float64().Required(),
	"End":             z.Float64().Required(),
})

func (rs *RestfulServer) QueryHistory(c *gin.Context) {
	var req HistoryRequest
	if err := historyRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if !rs.CheckDeviceLimiter(req.DeviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	c.JSON(http.StatusOK, buildEmptyResponse(req.DeviceID))
}

type BatchDevice struct {
	DeviceID        string `json:"deviceId"`
	DeviceSecretKey string `json:"deviceSecretKey"`
}

type BatchHistoryRequest struct {
	DeviceList  []BatchDevice `json:"deviceList"`
	MonitorItem []string      `json:"monitorItem"`
	Start       float64       `json:"start"`
	End         float64       `json:"end"`
}

var batchHistoryRequestSchema = z.Struct(z.Shape{
	"DeviceList": z.Slice(z.Struct(z.Shape{
		"DeviceID":        z.String().Required(),
		"DeviceSecretKey": z.String().Required(),
	})).Required(),
	"MonitorItem": z.Slice(z.String()).Required(),
	"Start":       z.Float64().Required(),
	"End":         z.Float64().Required(),
})

func (rs *RestfulServer) QueryHistoryBatch(c *gin.Context) {
	var req BatchHistoryRequest
	if err := batchHistoryRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	// keyed by the first list entry, empty id when the list is empty
	deviceID := ""
	if len(req.DeviceList) > 0 {
		deviceID = req.DeviceList[0].DeviceID
	}

	c.JSON(http.StatusOK, buildEmptyResponse(deviceID))
}

type LimiterRequest struct {
	DeviceID string  `json:"deviceId"`
	Rate     float64 `json:"rate"`
	Burst    int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"DeviceID": z.String().Required(),
	"Rate":     z.Float64().Required(),
	"Burst":    z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(req.DeviceID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
