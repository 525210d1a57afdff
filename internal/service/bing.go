package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weatherpulse/internal/config"
	"github.com/vzahanych/weatherpulse/pkg/telemetry"
)

var (
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrCircuitOpen    = errors.New("circuit breaker open")

	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
)

type BingService struct {
	baseURL        string
	userAgent      string
	headers        map[string]string
	client         *http.Client
	retries        int
	backoffInitial time.Duration
	backoffMax     time.Duration
	maxBodyBytes   int64
	breaker        *gobreaker.CircuitBreaker
	logger         *zap.Logger
	tele           *telemetry.Telemetry
}

type page struct {
	status int
	body   string
}

func NewBingServiceWithConfig(cfg config.ScraperConfig, logger *zap.Logger, tele *telemetry.Telemetry) *BingService {
	s := &BingService{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		retries:        max(cfg.Retries, 0),
		backoffInitial: time.Duration(cfg.Backoff.Initial) * time.Millisecond,
		backoffMax:     time.Duration(cfg.Backoff.Max) * time.Millisecond,
		maxBodyBytes:   cfg.MaxBodyBytes,
		logger:         logger,
		tele:           tele,
	}

	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bing",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    time.Duration(cfg.Breaker.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Breaker.OpenTimeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return s
}

func (s *BingService) Name() string {
	return "bing"
}

// FetchPage requests the search results page for query. Network errors,
// 429 and 5xx responses are retried with exponential backoff; any other
// non-200 status fails immediately with ErrUpstreamStatus.
func (s *BingService) FetchPage(ctx context.Context, query string) (string, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "bing.FetchPage")
	defer span.End()

	span.SetAttributes(
		attribute.String("query", query),
		attribute.String("service", s.Name()),
	)

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			if err := s.wait(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		result, err := s.breaker.Execute(func() (interface{}, error) {
			return s.do(ctx, query)
		})
		span.SetAttributes(attribute.Int("attempts", attempt+1))

		if err == nil {
			p := result.(*page)
			span.SetAttributes(attribute.Int("http.status_code", p.status))
			if p.status != http.StatusOK {
				return "", fmt.Errorf("%w: %d", ErrUpstreamStatus, p.status)
			}
			return p.body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("circuit_open", true))
			return "", fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		s.logger.Warn("Search page fetch failed",
			zap.String("query", query),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return "", lastErr
}

func (s *BingService) do(ctx context.Context, query string) (*page, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	u.RawQuery = url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return &page{status: resp.StatusCode}, nil
	}

	var body io.Reader = resp.Body
	if s.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	return &page{status: resp.StatusCode, body: string(data)}, nil
}

func (s *BingService) wait(ctx context.Context, attempt int) error {
	delay := s.backoffInitial * time.Duration(math.Pow(2, float64(attempt)))
	if s.backoffMax > 0 && delay > s.backoffMax {
		delay = s.backoffMax
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
