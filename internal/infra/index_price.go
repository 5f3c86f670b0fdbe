package infra

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"geohasher/internal/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
)

// IndexPriceClient fetches the most recent Dow Jones opening from the WSJ
// historical-price download.
type IndexPriceClient struct {
	baseURL      string
	userAgent    string
	lookbackDays int
	maxRetries   int
	retryInitial time.Duration
	httpClient   *http.Client
	metrics      *Metrics
}

// NewIndexPriceClient creates a client with default settings: one attempt, 10s timeout.
func NewIndexPriceClient() *IndexPriceClient {
	return &IndexPriceClient{
		baseURL:      DefaultIndexURL,
		userAgent:    DefaultUserAgent,
		lookbackDays: DefaultLookbackDays,
		retryInitial: time.Second,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: GlobalMetrics,
	}
}

// NewIndexPriceClientWithConfig creates a client from the index section of cfg.
func NewIndexPriceClientWithConfig(cfg *Config) *IndexPriceClient {
	client := NewIndexPriceClient()
	if cfg.Index.URL != "" {
		client.baseURL = cfg.Index.URL
	}
	if cfg.Index.UserAgent != "" {
		client.userAgent = cfg.Index.UserAgent
	}
	if cfg.Index.LookbackDays > 0 {
		client.lookbackDays = cfg.Index.LookbackDays
	}
	if cfg.Index.TimeoutSec > 0 {
		client.httpClient.Timeout = time.Duration(cfg.Index.TimeoutSec) * time.Second
	}
	if cfg.Index.MaxRetries > 0 {
		client.maxRetries = cfg.Index.MaxRetries
	}
	if cfg.Index.RetryInitialMS > 0 {
		client.retryInitial = time.Duration(cfg.Index.RetryInitialMS) * time.Millisecond
	}
	return client
}

// WithMetrics replaces the metrics sink
func (c *IndexPriceClient) WithMetrics(m *Metrics) *IndexPriceClient {
	c.metrics = m
	return c
}

// MostRecentOpening returns the opening value of the most recent trading day
// on or before date. The query spans lookbackDays before date so that
// weekends and holidays still yield a row.
//
// The first data row is assumed to be the most recent one; its date is not checked.
func (c *IndexPriceClient) MostRecentOpening(ctx context.Context, date domain.Date) (decimal.Decimal, error) {
	reqURL, err := c.pricesURL(date)
	if err != nil {
		return decimal.Zero, err
	}

	var price decimal.Decimal
	operation := func() error {
		p, err := c.doFetch(ctx, reqURL)
		if err != nil {
			if domain.IsRetriable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		price = p
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxElapsedTime = 0 // bounded by maxRetries
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	notify := func(err error, delay time.Duration) {
		c.metrics.RecordRetry()
		slog.Warn("Retrying index price fetch", slog.Duration("delay", delay), slog.Any("error", err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func (c *IndexPriceClient) pricesURL(date domain.Date) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", &domain.ConfigError{Field: "index.url", Err: err}
	}

	q := u.Query()
	q.Set("MOD_VIEW", "page")
	q.Set("num_rows", "1")
	q.Set("range_days", "1")
	q.Set("startDate", date.MinusDays(c.lookbackDays).Format(domain.WSJLayout))
	q.Set("endDate", date.Format(domain.WSJLayout))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *IndexPriceClient) doFetch(ctx context.Context, reqURL string) (decimal.Decimal, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, &domain.FetchError{Op: "request", Err: err}
	}

	// Add browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", c.userAgent)

	slog.Debug("Fetching index price", slog.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordFetchFailure()
		return decimal.Zero, domain.NewTransportError("request", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordFetch(time.Since(start))

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordFetchFailure()
		return decimal.Zero, domain.NewStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordFetchFailure()
		return decimal.Zero, domain.NewTransportError("read", err)
	}

	price, err := ParseOpening(body)
	if err != nil {
		c.metrics.RecordParseFailure()
		return decimal.Zero, err
	}

	slog.Debug("Index price fetched",
		slog.String("open", price.String()),
		slog.Duration("latency", time.Since(start)),
	)
	return price, nil
}

// ParseOpening extracts the opening value from a historical-price table:
// a header row followed by data rows of comma-and-space separated fields,
// where the second field of the first data row is the open.
func ParseOpening(body []byte) (decimal.Decimal, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return decimal.Zero, &domain.ParseError{Field: "header", Err: errors.New("empty body")}
		}
		return decimal.Zero, &domain.ParseError{Field: "header", Err: err}
	}

	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return decimal.Zero, &domain.ParseError{Field: "row", Err: errors.New("no data row")}
		}
		return decimal.Zero, &domain.ParseError{Field: "row", Err: err}
	}

	if len(row) < 2 {
		return decimal.Zero, &domain.ParseError{Field: "open", Err: fmt.Errorf("expected at least 2 fields, got %d", len(row))}
	}

	open, err := decimal.NewFromString(strings.TrimSpace(row[1]))
	if err != nil {
		return decimal.Zero, &domain.ParseError{Field: "open", Err: err}
	}
	return open, nil
}
