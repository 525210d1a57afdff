package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/server/middlewares"
)

// AppMetrics holds application-level counters fed by the aggregator.
type AppMetrics struct {
	mutex       sync.RWMutex
	cacheHits   map[string]int64
	cacheMisses map[string]int64
	fetchCalls  map[string]int64
	fetchErrors map[string]int64
}

type HTTPMetricsProvider interface {
	Snapshot() middlewares.HTTPSnapshot
}

type MetricsHandler struct {
	logger     *zap.Logger
	appMetrics *AppMetrics
	http       HTTPMetricsProvider
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics HTTPMetricsProvider) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		http:   httpMetrics,
		appMetrics: &AppMetrics{
			cacheHits:   make(map[string]int64),
			cacheMisses: make(map[string]int64),
			fetchCalls:  make(map[string]int64),
			fetchErrors: make(map[string]int64),
		},
	}
}

func (h *MetricsHandler) RecordCacheHit(ctx context.Context, cacheType string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.cacheHits[cacheType]++
	h.appMetrics.mutex.Unlock()
}

func (h *MetricsHandler) RecordCacheMiss(ctx context.Context, cacheType string) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.cacheMisses[cacheType]++
	h.appMetrics.mutex.Unlock()
}

func (h *MetricsHandler) RecordFetch(ctx context.Context, source string, success bool) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.fetchCalls[source]++
	if !success {
		h.appMetrics.fetchErrors[source]++
	}
	h.appMetrics.mutex.Unlock()
}

// ServeMetrics writes HTTP and application metrics in the Prometheus text
// exposition format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		keys := make([]middlewares.RequestKey, 0, len(snap.RequestsTotal))
		for k := range snap.RequestsTotal {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Route != keys[j].Route {
				return keys[i].Route < keys[j].Route
			}
			if keys[i].Method != keys[j].Method {
				return keys[i].Method < keys[j].Method
			}
			return keys[i].Status < keys[j].Status
		})

		writeHeader(&b, "http_requests_total", "Total number of HTTP requests", "counter")
		for _, k := range keys {
			fmt.Fprintf(&b, "http_requests_total{method=%q,route=%q,status=%q} %d\n",
				k.Method, k.Route, k.Status, snap.RequestsTotal[k])
		}

		writeHeader(&b, "http_request_duration_seconds_avg", "Average duration of recent HTTP requests", "gauge")
		fmt.Fprintf(&b, "http_request_duration_seconds_avg %.6f\n", snap.AvgDurationSeconds)

		writeHeader(&b, "http_active_requests", "Number of active HTTP requests", "gauge")
		fmt.Fprintf(&b, "http_active_requests %d\n", snap.ActiveRequests)
	}

	h.appMetrics.mutex.RLock()
	writeLabelled(&b, "aggregator_cache_hits_total", "Total cache hits", "cache", h.appMetrics.cacheHits)
	writeLabelled(&b, "aggregator_cache_misses_total", "Total cache misses", "cache", h.appMetrics.cacheMisses)
	writeLabelled(&b, "weather_fetch_calls_total", "Total upstream page fetches", "source", h.appMetrics.fetchCalls)
	writeLabelled(&b, "weather_fetch_errors_total", "Total failed upstream page fetches", "source", h.appMetrics.fetchErrors)
	h.appMetrics.mutex.RUnlock()

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func writeLabelled(b *strings.Builder, name, help, label string, values map[string]int64) {
	writeHeader(b, name, help, "counter")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}
