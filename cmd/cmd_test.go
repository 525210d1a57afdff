package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzahanych/weatherpulse/internal/record"
	"github.com/vzahanych/weatherpulse/internal/weather"
)

const savedPage = `<html><body>
<div>Mumbai, Maharashtra</div>
<div>Temperature 86°F</div><div>Mostly Cloudy</div>
<div>Humidity 75%</div><div>Pressure 1012 mb</div>
<div>Air quality: Moderate</div>
</body></html>`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WXP_LOGGING_LEVEL", "error")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(savedPage), 0o600))

	out, err := run(t, "", "extract", "--file", path, "--city", "Mumbai", "--state", "Maharashtra", "--days", "3")
	require.NoError(t, err)

	var rec weather.WeatherRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))

	assert.Equal(t, "Mumbai", rec.City)
	assert.Equal(t, "Maharashtra", rec.State)
	assert.Equal(t, "India", rec.Country)
	assert.Equal(t, 30.0, rec.Current.TemperatureC)
	assert.Equal(t, 86.0, rec.Current.TemperatureF)
	assert.Equal(t, "Cloudy", rec.Current.Condition)
	require.NotNil(t, rec.Current.PressureHPa)
	assert.Equal(t, 1012.0, *rec.Current.PressureHPa)
	require.NotNil(t, rec.Current.AirQuality)
	assert.Equal(t, "Moderate", *rec.Current.AirQuality)
	assert.Len(t, rec.Forecast, 3)
	assert.Equal(t, "Bing Weather", rec.Source)
}

func TestExtractCommandPrintsDerivedReadings(t *testing.T) {
	out, err := run(t, savedPage, "extract", "--file", "-", "--city", "Mumbai")
	require.NoError(t, err)

	var rec record.Annotated
	require.NoError(t, json.Unmarshal([]byte(out), &rec))

	assert.Equal(t, "Mumbai", rec.City)
	assert.Equal(t, "30.0°C", rec.Derived.Display)
	assert.Equal(t, "Hot", rec.Derived.Category)
	assert.Greater(t, rec.Derived.HeatIndexF, 86.0)
	require.NotNil(t, rec.Derived.DewPointC)
	assert.InDelta(t, 25.1, *rec.Derived.DewPointC, 0.2)
	require.NotNil(t, rec.Derived.PressureInHg)
	assert.Equal(t, 29.88, *rec.Derived.PressureInHg)
}

func TestExtractCommandReadsStdin(t *testing.T) {
	out, err := run(t, "Sunny and 21°C", "extract", "--file", "-", "--city", "Goa")
	require.NoError(t, err)

	var rec weather.WeatherRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, 21.0, rec.Current.TemperatureC)
	assert.Equal(t, "Sunny", rec.Current.Condition)
	assert.Len(t, rec.Forecast, 7)
}

func TestExtractCommandRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "extract", "--file", filepath.Join(t.TempDir(), "missing.html"), "--city", "Goa")
	assert.Error(t, err)

	_, err = run(t, "x", "extract", "--file", "-", "--city", "G0a")
	assert.ErrorIs(t, err, weather.ErrInvalidLocation)

	_, err = run(t, "x", "extract", "--file", "-")
	assert.Error(t, err)
}

func TestLookupCommand(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(savedPage))
	}))
	defer srv.Close()

	t.Setenv("WXP_SCRAPER_BASE_URL", srv.URL+"/search")

	out, err := run(t, "", "lookup", "--city", "Mumbai", "--state", "Maharashtra", "--days", "2")
	require.NoError(t, err)

	var rec weather.WeatherRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Mumbai Maharashtra weather", gotQuery)
	assert.Equal(t, 30.0, rec.Current.TemperatureC)
	assert.Len(t, rec.Forecast, 2)
}

func TestLookupCommandUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	t.Setenv("WXP_SCRAPER_BASE_URL", srv.URL)

	_, err := run(t, "", "lookup", "--city", "Atlantis")
	assert.ErrorIs(t, err, weather.ErrNoRecord)
}
