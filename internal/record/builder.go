package record

import (
	"fmt"
	"time"

	"github.com/vzahanych/weatherpulse/internal/extract"
	"github.com/vzahanych/weatherpulse/internal/forecast"
	"github.com/vzahanych/weatherpulse/internal/weather"
)

const DefaultSource = "Bing Weather"

// Extractor turns flattened page text into current conditions.
type Extractor interface {
	Assemble(text string) weather.CurrentConditions
}

type Options struct {
	Source       string
	ForecastDays int
	Now          func() time.Time
}

// Builder turns a fetched page into a WeatherRecord. It is the only part of
// the engine that reports failure; the matchers and synthesizers are total.
type Builder struct {
	extractor    Extractor
	source       string
	forecastDays int
	now          func() time.Time
}

func NewBuilder(extractor Extractor, opts Options) *Builder {
	if extractor == nil {
		extractor = extract.NewAssembler(nil)
	}
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	if opts.ForecastDays < 0 {
		opts.ForecastDays = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Builder{
		extractor:    extractor,
		source:       opts.Source,
		forecastDays: opts.ForecastDays,
		now:          opts.Now,
	}
}

// Build flattens page, assembles current conditions and attaches the
// synthesized forecast. A panic inside the extractor is reported as
// weather.ErrExtractionFailed.
func (b *Builder) Build(page string, loc weather.Location) (*weather.WeatherRecord, error) {
	current, err := b.assemble(extract.Flatten(page))
	if err != nil {
		return nil, err
	}

	now := b.now()
	return &weather.WeatherRecord{
		Location:   loc,
		Current:    current,
		Forecast:   forecast.RecordDays(now, b.forecastDays),
		ObservedAt: now,
		Source:     b.source,
	}, nil
}

// Forecast builds the standalone forecast response for city.
func (b *Builder) Forecast(city string, days int) *weather.ForecastResult {
	return &weather.ForecastResult{
		City:         city,
		ForecastDays: days,
		Forecast:     forecast.ExtendedDays(b.now(), days),
	}
}

func (b *Builder) assemble(text string) (cur weather.CurrentConditions, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", weather.ErrExtractionFailed, r)
		}
	}()

	cur = b.extractor.Assemble(text)
	if cur.Condition == "" {
		return cur, fmt.Errorf("%w: empty condition", weather.ErrExtractionFailed)
	}
	return cur, nil
}
