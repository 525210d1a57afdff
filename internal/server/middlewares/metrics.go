package middlewares

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/pkg/telemetry"
)

const maxDurationSamples = 1000

type RequestKey struct {
	Method string
	Route  string
	Status string
}

// HTTPMetrics holds only HTTP request metrics.
type HTTPMetrics struct {
	mutex            sync.RWMutex
	requestsTotal    map[RequestKey]int64
	requestDurations []float64
	activeRequests   int64
}

// HTTPSnapshot is a point-in-time copy of HTTPMetrics safe to read without
// locking.
type HTTPSnapshot struct {
	RequestsTotal      map[RequestKey]int64
	AvgDurationSeconds float64
	ActiveRequests     int64
}

type MetricsMiddleware struct {
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics *HTTPMetrics
}

func NewMetricsMiddleware(logger *zap.Logger, tele *telemetry.Telemetry) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger: logger,
		tele:   tele,
		metrics: &HTTPMetrics{
			requestsTotal:    make(map[RequestKey]int64),
			requestDurations: make([]float64, 0, maxDurationSamples),
		},
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.metrics.mutex.Lock()
		m.metrics.activeRequests++
		m.metrics.mutex.Unlock()

		c.Next()

		duration := time.Since(start).Seconds()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		key := RequestKey{
			Method: c.Request.Method,
			Route:  route,
			Status: strconv.Itoa(c.Writer.Status()),
		}

		m.metrics.mutex.Lock()
		m.metrics.requestsTotal[key]++
		m.metrics.requestDurations = append(m.metrics.requestDurations, duration)
		m.metrics.activeRequests--

		// keep the last maxDurationSamples
		if len(m.metrics.requestDurations) > maxDurationSamples {
			m.metrics.requestDurations = m.metrics.requestDurations[len(m.metrics.requestDurations)-maxDurationSamples:]
		}
		m.metrics.mutex.Unlock()

		if m.tele.IsEnabled() {
			m.logger.Debug("HTTP metrics recorded",
				zap.String("method", key.Method),
				zap.String("route", route),
				zap.Int("status", c.Writer.Status()),
				zap.Float64("duration", duration))
		}
	}
}

func (m *MetricsMiddleware) Snapshot() HTTPSnapshot {
	m.metrics.mutex.RLock()
	defer m.metrics.mutex.RUnlock()

	snap := HTTPSnapshot{
		RequestsTotal:  make(map[RequestKey]int64, len(m.metrics.requestsTotal)),
		ActiveRequests: m.metrics.activeRequests,
	}
	for k, v := range m.metrics.requestsTotal {
		snap.RequestsTotal[k] = v
	}

	if n := len(m.metrics.requestDurations); n > 0 {
		sum := 0.0
		for _, d := range m.metrics.requestDurations {
			sum += d
		}
		snap.AvgDurationSeconds = sum / float64(n)
	}

	return snap
}
