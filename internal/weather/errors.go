package weather

import "errors"

var (
	// ErrNoRecord means the source page could not be obtained.
	ErrNoRecord = errors.New("no weather record available")

	// ErrExtractionFailed means a page was obtained but current conditions
	// could not be assembled from it.
	ErrExtractionFailed = errors.New("weather extraction failed")

	ErrInvalidLocation = errors.New("invalid location")
)
