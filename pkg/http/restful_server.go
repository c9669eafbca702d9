package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"liyu1981.xyz/device-gateway-service/pkg/registry"
)

type RestfulServer struct {
	Server           *gin.Engine
	Registry         *registry.Registry
	RateLimiterStore *registry.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(deviceID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(deviceID)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(deviceID string) bool {
	limiter := rs.GetLimiter(deviceID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(deviceID string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(deviceID, rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	device := rs.Server.Group("/api/v2/device")
	{
		device.POST("/register", rs.RegisterDevice)
		device.POST("", rs.QueryHistory)
		device.POST("/batch", rs.QueryHistoryBatch)
		device.POST("/latest", rs.LatestValue)
		device.POST("/limiter", rs.PostLimiter)
	}
}
