package service

import (
	"context"
	"fmt"
	"log/slog"

	"geohasher/internal/domain"
	"geohasher/internal/geohash"
	"geohasher/internal/infra"

	"github.com/shopspring/decimal"
)

// Result is a finished computation together with the inputs that produced it.
type Result struct {
	Date    domain.Date
	Opening decimal.Decimal
	geohash.Result
}

// GeohashService fetches the index opening and runs the geohash pipeline on it.
type GeohashService struct {
	provider  domain.IndexPriceProvider
	precision int
	metrics   *infra.Metrics
}

// NewGeohashService creates a new GeohashService instance
func NewGeohashService(provider domain.IndexPriceProvider, precision int) *GeohashService {
	return &GeohashService{
		provider:  provider,
		precision: precision,
		metrics:   infra.GlobalMetrics,
	}
}

// WithMetrics replaces the metrics sink
func (s *GeohashService) WithMetrics(m *infra.Metrics) *GeohashService {
	s.metrics = m
	return s
}

// PriceFuture is a pending index price fetch.
type PriceFuture struct {
	date  domain.Date
	done  chan struct{}
	price decimal.Decimal
	err   error
}

// Date returns the date the fetch was started for.
func (f *PriceFuture) Date() domain.Date {
	return f.date
}

// Wait blocks until the fetch finishes or ctx is done.
func (f *PriceFuture) Wait(ctx context.Context) (decimal.Decimal, error) {
	select {
	case <-f.done:
		return f.price, f.err
	case <-ctx.Done():
		return decimal.Zero, ctx.Err()
	}
}

// StartFetch starts fetching the most recent opening for date in the background.
// Cancelling ctx abandons the request.
func (s *GeohashService) StartFetch(ctx context.Context, date domain.Date) *PriceFuture {
	f := &PriceFuture{date: date, done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Index price fetch panic recovered", slog.Any("panic", r))
				f.err = fmt.Errorf("%w: panic: %v", domain.ErrFetchFailed, r)
			}
		}()

		f.price, f.err = s.provider.MostRecentOpening(ctx, date)
	}()

	return f
}

// Resolve waits for the fetch and composes the destination for pos.
// Nothing is hashed unless the fetch succeeded.
func (s *GeohashService) Resolve(ctx context.Context, f *PriceFuture, pos domain.Coordinate) (Result, error) {
	opening, err := f.Wait(ctx)
	if err != nil {
		s.metrics.RecordComputation(err)
		slog.Error("Index price unavailable", slog.String("date", f.date.String()), slog.Any("error", err))
		return Result{}, err
	}

	res, err := geohash.Hash(f.date, opening, pos, s.precision)
	s.metrics.RecordComputation(err)
	if err != nil {
		return Result{}, err
	}

	slog.Debug("Geohash computed",
		slog.String("key", res.Key),
		slog.String("digest", res.Digest.Hex()),
		slog.String("destination", res.Destination.String()),
	)
	return Result{Date: f.date, Opening: opening, Result: res}, nil
}

// Compute fetches the opening for date and returns the destination for pos.
// An invalid precision is reported before any network activity.
func (s *GeohashService) Compute(ctx context.Context, date domain.Date, pos domain.Coordinate) (Result, error) {
	if s.precision <= 0 {
		err := fmt.Errorf("%w: precision must be positive, got %d", domain.ErrInvalidInput, s.precision)
		s.metrics.RecordComputation(err)
		return Result{}, err
	}
	return s.Resolve(ctx, s.StartFetch(ctx, date), pos)
}
