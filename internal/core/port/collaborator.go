package port

import "context"

type Discoverer interface {
	// Discover returns the ordered list of candidate source image URLs.
	Discover(ctx context.Context) ([]string, error)
}

type Fetcher interface {
	// Fetch downloads the raw bytes behind a source URL.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
