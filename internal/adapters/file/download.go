package file

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"whalegen/internal/core/domain"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

const defaultRetryDelay = 500 * time.Millisecond

// Downloader fetches source images over HTTP, retrying transient failures with exponential backoff.
type Downloader struct {
	client     *resty.Client
	retries    uint64
	retryDelay time.Duration
}

func NewDownloader(timeout time.Duration, retries uint64, retryDelay time.Duration) *Downloader {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Downloader{
		client:     resty.New().SetTimeout(timeout),
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// Fetch returns the byte content of the file at url.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0

	backoff := retry.WithMaxRetries(d.retries, retry.NewExponential(d.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		res, err := d.client.R().SetContext(ctx).Get(url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Int("attempt", attempt).Msg("download attempt failed")
			return retry.RetryableError(fmt.Errorf("error executing request: %w", err))
		}

		status := res.StatusCode()
		switch {
		case status == http.StatusOK:
			body = res.Body()
			return nil
		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			log.Warn().Int("status", status).Str("url", url).Int("attempt", attempt).Msg("download attempt failed")
			return retry.RetryableError(fmt.Errorf("unexpected status code on download: %d", status))
		default:
			return fmt.Errorf("unexpected status code on download: %d", status)
		}
	})
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", domain.ErrFetch, url, err)
		log.Error().Err(err).Int("attempts", attempt).Send()
		return nil, err
	}

	log.Debug().Str("url", url).Int("bytes", len(body)).Msg("downloaded file")

	return body, nil
}
