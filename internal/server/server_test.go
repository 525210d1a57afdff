package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weatherpulse/internal/aggregator"
	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/service"
)

const page = `<html><head><script>var t = "99°C";</script></head>
<body><div>Temperature: 31°C</div><div>Sunny</div><div>Humidity: 70%</div>
<div>Wind: 12 km/h NE</div></body></html>`

type stubFetcher struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (f *stubFetcher) FetchPage(_ context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return "", f.err
	}
	return page, nil
}

func (f *stubFetcher) Name() string { return "stub" }

func newTestServer(t *testing.T, fetcher service.PageFetcher) *Server {
	t.Helper()
	cfg := config.NewDefaultConfig()
	logger := zaptest.NewLogger(t)
	agg := aggregator.NewAggregator(&cfg.Weather, fetcher, nil, logger, nil)
	return NewServer(cfg, agg, logger, nil)
}

func do(t *testing.T, s *Server, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	w := do(t, s, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "WeatherPulse API is running!", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
}

func TestGetWeather(t *testing.T) {
	fetcher := &stubFetcher{}
	s := newTestServer(t, fetcher)

	w := do(t, s, http.MethodGet, "/weather/New%20Delhi", nil, map[string]string{"X-Request-ID": "req-123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	body := decode(t, w)
	assert.Equal(t, "New Delhi", body["city"])
	assert.Equal(t, "India", body["country"])
	assert.NotContains(t, body, "state")
	assert.Equal(t, "Bing Weather", body["data_source"])
	assert.NotEmpty(t, body["last_updated"])

	current := body["current_weather"].(map[string]interface{})
	assert.Equal(t, 31.0, current["temperature"])
	assert.InDelta(t, 87.8, current["temperature_fahrenheit"], 0.01)
	assert.Equal(t, "Sunny", current["condition"])
	assert.Equal(t, 70.0, current["humidity"])
	assert.Equal(t, 12.0, current["wind_speed"])
	assert.Equal(t, "N", current["wind_direction"])
	assert.Nil(t, current["pressure"])

	assert.Len(t, body["forecast"], 7)
	assert.Equal(t, []string{"New Delhi weather"}, fetcher.queries)
}

func TestGetWeatherRejectsInvalidCity(t *testing.T) {
	fetcher := &stubFetcher{}
	s := newTestServer(t, fetcher)

	w := do(t, s, http.MethodGet, "/weather/D3lhi", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "INVALID_PARAMS", body["code"])
	assert.Contains(t, body["details"], "city")
	assert.Empty(t, fetcher.queries)
}

func TestGetWeatherUpstreamFailureIsNotFound(t *testing.T) {
	s := newTestServer(t, &stubFetcher{err: fmt.Errorf("%w: 404", service.ErrUpstreamStatus)})

	w := do(t, s, http.MethodGet, "/weather/Atlantis", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Weather data not found for Atlantis", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestSearchWeather(t *testing.T) {
	fetcher := &stubFetcher{}
	s := newTestServer(t, fetcher)

	w := do(t, s, http.MethodPost, "/weather/search",
		[]byte(`{"city":"Pune","state":"Maharashtra","country":"India"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Pune", body["city"])
	assert.Equal(t, "Maharashtra", body["state"])
	assert.Equal(t, []string{"Pune Maharashtra weather"}, fetcher.queries)
}

func TestSearchWeatherValidation(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	tests := []struct {
		name string
		body string
	}{
		{name: "missing city", body: `{"state":"Goa"}`},
		{name: "bad country", body: `{"city":"Goa","country":"1ndia"}`},
		{name: "malformed", body: `{"city":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/weather/search", []byte(tt.body), nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_PARAMS", decode(t, w)["code"])
		})
	}
}

func TestSearchWeatherUpstreamFailure(t *testing.T) {
	s := newTestServer(t, &stubFetcher{err: service.ErrCircuitOpen})

	w := do(t, s, http.MethodPost, "/weather/search", []byte(`{"city":"Pune"}`), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Weather data not found", decode(t, w)["error"])
}

func TestGetForecast(t *testing.T) {
	fetcher := &stubFetcher{}
	s := newTestServer(t, fetcher)

	w := do(t, s, http.MethodGet, "/weather/Chennai/forecast?days=3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Chennai", body["city"])
	assert.Equal(t, 3.0, body["forecast_days"])

	days := body["forecast"].([]interface{})
	require.Len(t, days, 3)
	highs := []float64{28, 29, 30}
	lows := []float64{22, 23, 22}
	for i, d := range days {
		day := d.(map[string]interface{})
		assert.Equal(t, highs[i], day["high_temp"])
		assert.Equal(t, lows[i], day["low_temp"])
		assert.Equal(t, fmt.Sprintf("%d%%", 30+5*i), day["precipitation"])
		assert.Equal(t, "Partly Cloudy", day["condition"])
	}

	assert.Empty(t, fetcher.queries, "forecast must not hit the upstream")
}

func TestGetForecastDays(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	w := do(t, s, http.MethodGet, "/weather/Chennai/forecast", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["forecast"], 7)

	w = do(t, s, http.MethodGet, "/weather/Chennai/forecast?days=0", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["forecast"])

	for _, q := range []string{"-1", "367", "abc"} {
		w = do(t, s, http.MethodGet, "/weather/Chennai/forecast?days="+q, nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", q)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	statuses := map[string]string{
		"/health":       "healthy",
		"/health/live":  "alive",
		"/health/ready": "ready",
	}
	for path, status := range statuses {
		w := do(t, s, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, status, decode(t, w)["status"], path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	do(t, s, http.MethodGet, "/weather/Goa", nil, nil)
	do(t, s, http.MethodGet, "/weather/Goa", nil, nil)

	w := do(t, s, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	text := w.Body.String()
	assert.Contains(t, text, `http_requests_total{method="GET",route="/weather/:city",status="200"} 2`)
	assert.Contains(t, text, `aggregator_cache_hits_total{cache="weather_record"} 1`)
	assert.Contains(t, text, `aggregator_cache_misses_total{cache="weather_record"} 1`)
	assert.Contains(t, text, `weather_fetch_calls_total{source="stub"} 1`)
	assert.Contains(t, text, "# TYPE weather_fetch_errors_total counter")
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t, &stubFetcher{})

	w := do(t, s, http.MethodGet, "/", nil, map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, s, http.MethodGet, "/", nil, map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
