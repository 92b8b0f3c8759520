package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studyleave/studyleave-api/internal/handlers"
)

func TestHealthHandler_Healthcheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		compilerReady  bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "compiler available",
			compilerReady:  true,
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"ok"`,
		},
		{
			name:           "compiler unavailable",
			compilerReady:  false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"status":"unavailable"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewHealthHandler(func() bool { return tt.compilerReady })

			router := gin.New()
			router.GET("/healthcheck", handler.Healthcheck)

			req := httptest.NewRequest("GET", "/healthcheck", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.Contains(t, w.Header().Get("Cache-Control"), "no-cache")
		})
	}
}
