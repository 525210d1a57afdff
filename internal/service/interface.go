package service

import "context"

// PageFetcher retrieves the raw search results page for a query. Any
// outcome other than a 200 response is returned as an error.
type PageFetcher interface {
	FetchPage(ctx context.Context, query string) (string, error)
	Name() string
}
