package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gondola-insights-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetLogsPeriodMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		period      string
		wantBuckets int
	}{
		{"1h", 1},
		{"24h", 24},
		{"7d", 168},
		{"", 24},
		{"banana", 24},
	}

	for _, tt := range cases {
		t.Run("period "+tt.period, func(t *testing.T) {
			service := services.NewMonitoringService()
			router := gin.New()
			router.GET("/api/v1/monitoring/logs", NewMonitoringHandler(service).GetLogs)

			url := "/api/v1/monitoring/logs"
			if tt.period != "" {
				url = fmt.Sprintf("%s?period=%s", url, tt.period)
			}
			req, err := http.NewRequest("GET", url, nil)
			if err != nil {
				t.Fatal(err)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var data services.MonitoringData
			err = json.Unmarshal(w.Body.Bytes(), &data)
			assert.NoError(t, err)
			assert.Len(t, data.RequestsOverTime, tt.wantBuckets)
			assert.Len(t, data.StatusCodes, 3)
		})
	}
}
