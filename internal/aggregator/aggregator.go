package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/internal/record"
	"github.com/vzahanych/weatherpulse/internal/service"
	"github.com/vzahanych/weatherpulse/internal/weather"
	"github.com/vzahanych/weatherpulse/pkg/logger"
	"github.com/vzahanych/weatherpulse/pkg/telemetry"
)

var ErrInvalidDays = errors.New("forecast days must not be negative")

type CacheEntry struct {
	Record    *weather.WeatherRecord
	Timestamp time.Time
}

type Aggregator struct {
	fetcher        service.PageFetcher
	builder        *record.Builder
	defaultCountry string

	cache    map[string]*CacheEntry
	mutex    sync.RWMutex
	cacheTTL time.Duration
	group    singleflight.Group

	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics MetricsRecorder

	workers         int
	refreshInterval time.Duration
	prefetch        []weather.Location
	taskQueue       chan *Task
	shutdownCh      chan struct{}
	workerWg        sync.WaitGroup
	lifecycle       sync.Mutex
	running         bool
}

// MetricsRecorder receives cache and upstream fetch outcomes.
type MetricsRecorder interface {
	RecordCacheHit(ctx context.Context, cacheType string)
	RecordCacheMiss(ctx context.Context, cacheType string)
	RecordFetch(ctx context.Context, source string, success bool)
}

// NewAggregator wires a fetcher to a record builder. A nil builder gets the
// default extraction rules with the configured source label and forecast
// length.
func NewAggregator(cfg *config.WeatherConfig, fetcher service.PageFetcher, builder *record.Builder, log *zap.Logger, tele *telemetry.Telemetry) *Aggregator {
	if builder == nil {
		builder = record.NewBuilder(nil, record.Options{
			Source:       cfg.Source,
			ForecastDays: cfg.ForecastDays,
		})
	}

	agg := &Aggregator{
		fetcher:         fetcher,
		builder:         builder,
		defaultCountry:  cfg.DefaultCountry,
		cache:           make(map[string]*CacheEntry),
		cacheTTL:        time.Duration(cfg.CacheTTL) * time.Second,
		logger:          log,
		tele:            tele,
		workers:         max(cfg.Workers, 1),
		refreshInterval: time.Duration(cfg.RefreshInterval) * time.Second,
	}

	for _, p := range cfg.Prefetch {
		loc, err := agg.Location(p.City, p.State, p.Country)
		if err != nil {
			log.Warn("Skipping prefetch location", zap.Error(err))
			continue
		}
		agg.prefetch = append(agg.prefetch, loc)
	}

	return agg
}

func (a *Aggregator) SetMetricsRecorder(metrics MetricsRecorder) {
	a.metrics = metrics
}

// Location normalizes user input into a Location, applying the configured
// default country.
func (a *Aggregator) Location(city, state, country string) (weather.Location, error) {
	return weather.NewLocation(city, state, country, a.defaultCountry)
}

// GetCurrentWeather returns a cached record when one is fresh, otherwise
// fetches and builds a new one. Concurrent misses for the same location
// share a single upstream fetch.
func (a *Aggregator) GetCurrentWeather(ctx context.Context, loc weather.Location) (*weather.WeatherRecord, error) {
	tracer := a.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "aggregator.GetCurrentWeather")
	defer span.End()

	reqLogger := logger.ForContext(ctx, a.logger)
	cacheKey := loc.Key()

	span.SetAttributes(
		attribute.String("city", loc.City),
		attribute.String("country", loc.Country),
	)

	if cached := a.getFromCache(cacheKey); cached != nil {
		reqLogger.Debug("Cache hit", zap.String("cache_key", cacheKey))
		span.SetAttributes(attribute.Bool("cache_hit", true))

		if a.metrics != nil {
			a.metrics.RecordCacheHit(ctx, "weather_record")
		}
		return cached, nil
	}

	span.SetAttributes(attribute.Bool("cache_hit", false))
	if a.metrics != nil {
		a.metrics.RecordCacheMiss(ctx, "weather_record")
	}

	reqLogger.Info("Cache miss, fetching fresh data", zap.String("cache_key", cacheKey))

	rec, err := a.refresh(ctx, loc)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		a.tele.RecordError(ctx, err, map[string]interface{}{"cache_key": cacheKey})
		reqLogger.Warn("Failed to build weather record",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Bool("success", true))
	return rec, nil
}

// GetForecast synthesizes the standalone forecast for city. It performs no
// upstream fetch.
func (a *Aggregator) GetForecast(ctx context.Context, city string, days int) (*weather.ForecastResult, error) {
	tracer := a.tele.GetTracer()
	_, span := tracer.Start(ctx, "aggregator.GetForecast")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", city),
		attribute.Int("days", days),
	)

	city = weather.CollapseSpaces(city)
	if !weather.ValidLocationName(city) {
		return nil, fmt.Errorf("%w: city %q", weather.ErrInvalidLocation, city)
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}

	return a.builder.Forecast(city, days), nil
}

// refresh fetches and caches a record, coalescing concurrent calls for the
// same location. The shared fetch is detached from the caller's
// cancellation so one client going away does not fail the others.
func (a *Aggregator) refresh(ctx context.Context, loc weather.Location) (*weather.WeatherRecord, error) {
	cacheKey := loc.Key()

	v, err, _ := a.group.Do(cacheKey, func() (interface{}, error) {
		rec, err := a.fetchRecord(context.WithoutCancel(ctx), loc)
		if err != nil {
			return nil, err
		}
		a.setCache(cacheKey, rec)
		return rec, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*weather.WeatherRecord), nil
}

func (a *Aggregator) fetchRecord(ctx context.Context, loc weather.Location) (*weather.WeatherRecord, error) {
	tracer := a.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "aggregator.fetchRecord")
	defer span.End()

	query := loc.SearchQuery()
	span.SetAttributes(
		attribute.String("query", query),
		attribute.String("source", a.fetcher.Name()),
	)

	page, err := a.fetcher.FetchPage(ctx, query)
	if a.metrics != nil {
		a.metrics.RecordFetch(ctx, a.fetcher.Name(), err == nil)
	}
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, fmt.Errorf("%w: %w", weather.ErrNoRecord, err)
	}

	rec, err := a.builder.Build(page, loc)
	if err != nil {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("page_bytes", len(page)),
	)
	return rec, nil
}

func (a *Aggregator) getFromCache(key string) *weather.WeatherRecord {
	a.mutex.RLock()
	entry, exists := a.cache[key]
	a.mutex.RUnlock()

	if !exists {
		return nil
	}

	if time.Since(entry.Timestamp) > a.cacheTTL {
		a.mutex.Lock()
		if current, ok := a.cache[key]; ok && current == entry {
			delete(a.cache, key)
		}
		a.mutex.Unlock()
		return nil
	}

	return entry.Record
}

func (a *Aggregator) setCache(key string, rec *weather.WeatherRecord) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.cache[key] = &CacheEntry{
		Record:    rec,
		Timestamp: time.Now(),
	}
}

func (a *Aggregator) ClearCache() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.cache = make(map[string]*CacheEntry)
}

func (a *Aggregator) GetCacheStats() map[string]interface{} {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return map[string]interface{}{
		"cache_size": len(a.cache),
		"cache_ttl":  a.cacheTTL.String(),
		"source":     a.fetcher.Name(),
		"workers":    a.workers,
		"prefetch":   len(a.prefetch),
	}
}
