package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weatherpulse/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDMiddleware(t *testing.T) {
	var fromCtx string
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		fromCtx = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "given", fromCtx)
}

func TestMetricsMiddlewareSnapshot(t *testing.T) {
	m := NewMetricsMiddleware(zaptest.NewLogger(t), nil)
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/weather/:city", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/weather/Pune", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RequestsTotal[RequestKey{Method: "GET", Route: "/weather/:city", Status: "200"}])
	assert.Equal(t, int64(1), snap.RequestsTotal[RequestKey{Method: "GET", Route: "unmatched", Status: "404"}])
	assert.Equal(t, int64(0), snap.ActiveRequests)
	assert.GreaterOrEqual(t, snap.AvgDurationSeconds, 0.0)
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), RecoveryMiddleware(zaptest.NewLogger(t), false))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
