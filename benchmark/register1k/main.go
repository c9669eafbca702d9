package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"liyu1981.xyz/device-gateway-service/pkg/auth"
	"liyu1981.xyz/device-gateway-service/pkg/common"
)

var maxDevices int = 1000
var httpHostPort string = "127.0.0.1:1080"

type registerBody struct {
	DeviceID        string `json:"deviceId"`
	DeviceSecretKey string `json:"deviceSecretKey"`
	MonitorItem     string `json:"monitorItem"`
}

func main() {
	jwtSecret := os.Getenv(common.EnvKeyDevRegJwtSecret)
	if jwtSecret == "" {
		log.Fatal("DEVREG_JWT_SECRET must be set to the same secret the server uses")
	}

	token, err := auth.IssueToken(1, jwtSecret, time.Hour)
	if err != nil {
		log.Fatal("Failed to issue benchmark token:", err)
	}

	deviceIDs := make([]string, maxDevices)
	for i := 0; i < maxDevices; i++ {
		deviceIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device IDs\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	bodies := common.Mapper(deviceIDs, func(deviceID string) []byte {
		b, _ := json.Marshal(registerBody{
			DeviceID:        deviceID,
			DeviceSecretKey: "benchmark-secret",
			MonitorItem:     "waterLevel",
		})
		return b
	})

	var failed atomic.Int64

	startTime := time.Now()
	wg := sync.WaitGroup{}
	for _, body := range bodies {
		body := body
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, err := http.NewRequest(http.MethodPost,
				fmt.Sprintf("http://%s/api/v2/device/register", httpHostPort),
				bytes.NewReader(body))
			if err != nil {
				failed.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				failed.Add(1)
				return
			}
			defer resp.Body.Close()

			var result struct {
				Code int `json:"code"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Code != 200 {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	fmt.Printf("registered %v devices in %v (%.1f req/s), %v failed\n",
		maxDevices, usedTime, float64(maxDevices)/usedTime.Seconds(), failed.Load())
}
