package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Fetcher pulls published spreadsheet CSV exports over HTTP.
type Fetcher struct {
	Client          *http.Client
	Reader          *Reader
	Logger          *zap.Logger
	InitialInterval time.Duration
	MaxElapsed      time.Duration
}

// NewFetcher returns a Fetcher that retries for up to maxElapsed.
func NewFetcher(client *http.Client, logger *zap.Logger, maxElapsed time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		Client:          client,
		Reader:          NewReader(),
		Logger:          logger,
		InitialInterval: 500 * time.Millisecond,
		MaxElapsed:      maxElapsed,
	}
}

// Fetch downloads one CSV source. Server errors and transport failures are
// retried with exponential backoff; client errors are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Lot, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.InitialInterval
	policy.MaxElapsedTime = f.MaxElapsed
	policy.Reset()

	var body []byte
	err := backoff.RetryNotify(
		func() error {
			var err error
			body, err = f.get(ctx, url)
			return err
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			f.Logger.Warn("inventory fetch failed, retrying",
				zap.String("url", url),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	lots, err := f.Reader.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return lots, nil
}

// FetchResult is the outcome of fetching several sources.
type FetchResult struct {
	Lots   []Lot
	Failed []string
}

// Partial reports whether any source was skipped.
func (r FetchResult) Partial() bool {
	return len(r.Failed) > 0
}

// FetchAll combines every source. A failing source is logged and skipped;
// an error is returned only when no source succeeded.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) (FetchResult, error) {
	var (
		res  FetchResult
		errs []error
	)
	for _, url := range urls {
		lots, err := f.Fetch(ctx, url)
		if err != nil {
			f.Logger.Error("inventory source skipped", zap.String("url", url), zap.Error(err))
			errs = append(errs, err)
			res.Failed = append(res.Failed, url)
			continue
		}
		f.Logger.Info("inventory source loaded", zap.String("url", url), zap.Int("lots", len(lots)))
		res.Lots = append(res.Lots, lots...)
	}

	if len(errs) > 0 && len(errs) == len(urls) {
		return FetchResult{Failed: res.Failed}, errors.Join(errs...)
	}
	return res, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
