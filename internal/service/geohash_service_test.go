package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"geohasher/internal/domain"
	"geohasher/internal/geohash"
	"geohasher/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var xkcdDate = domain.NewDate(2005, time.May, 26)

type stubProvider struct {
	price decimal.Decimal
	err   error
	delay time.Duration
	calls atomic.Int32
	dates chan domain.Date
}

func (p *stubProvider) MostRecentOpening(ctx context.Context, date domain.Date) (decimal.Decimal, error) {
	p.calls.Add(1)
	if p.dates != nil {
		p.dates <- date
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}
	return p.price, p.err
}

func origin() domain.Coordinate {
	return domain.NewCoordinate(decimal.Zero, decimal.Zero)
}

func TestGeohashService_Compute(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("10458.68"), dates: make(chan domain.Date, 1)}
	m := &infra.Metrics{}
	svc := NewGeohashService(provider, geohash.DefaultPrecision).WithMetrics(m)

	res, err := svc.Compute(context.Background(), xkcdDate, origin())
	require.NoError(t, err)

	assert.Equal(t, xkcdDate, <-provider.dates)
	assert.Equal(t, "10458.68", res.Opening.String())
	assert.Equal(t, "2005-05-26-10458.68", res.Key)
	assert.Equal(t, "0.857713267707", res.Destination.X.String())
	assert.Equal(t, "0.54454306955928", res.Destination.Y.String())
	assert.Equal(t, uint64(1), m.Snapshot().Computations)
}

func TestGeohashService_FetchFailureSkipsPipeline(t *testing.T) {
	provider := &stubProvider{err: domain.NewStatusError(http.StatusInternalServerError)}
	m := &infra.Metrics{}
	svc := NewGeohashService(provider, geohash.DefaultPrecision).WithMetrics(m)

	res, err := svc.Compute(context.Background(), xkcdDate, origin())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Empty(t, res.Key, "no key must be built after a failed fetch")
	assert.True(t, res.Destination.X.IsZero())

	snap := m.Snapshot()
	assert.Equal(t, uint64(0), snap.Computations)
	assert.Equal(t, uint64(1), snap.ComputeErrors)
}

func TestGeohashService_InvalidPrecisionFailsBeforeFetch(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("10458.68")}
	svc := NewGeohashService(provider, 0).WithMetrics(&infra.Metrics{})

	_, err := svc.Compute(context.Background(), xkcdDate, origin())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int32(0), provider.calls.Load())
}

func TestGeohashService_InvalidFetchedPrice(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("10458.681")}
	svc := NewGeohashService(provider, geohash.DefaultPrecision).WithMetrics(&infra.Metrics{})

	_, err := svc.Compute(context.Background(), xkcdDate, origin())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGeohashService_StartFetchThenResolve(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("12620.90"), delay: 20 * time.Millisecond}
	svc := NewGeohashService(provider, 6).WithMetrics(&infra.Metrics{})

	fut := svc.StartFetch(context.Background(), domain.NewDate(2008, time.May, 20))
	assert.Equal(t, "2008-05-20", fut.Date().String())

	res, err := svc.Resolve(context.Background(), fut, domain.NewCoordinate(
		decimal.RequireFromString("68.1"), decimal.RequireFromString("-30.9")))
	require.NoError(t, err)

	assert.Equal(t, "2008-05-20-12620.90", res.Key)
	assert.Equal(t, "68.368429", res.Destination.X.String())
	assert.Equal(t, "-29.242961", res.Destination.Y.String())
}

func TestGeohashService_ResolveCanceled(t *testing.T) {
	provider := &stubProvider{price: decimal.RequireFromString("10458.68"), delay: time.Second}
	svc := NewGeohashService(provider, geohash.DefaultPrecision).WithMetrics(&infra.Metrics{})

	fetchCtx, cancelFetch := context.WithCancel(context.Background())
	defer cancelFetch()
	fut := svc.StartFetch(fetchCtx, xkcdDate)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Resolve(ctx, fut, origin())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGeohashService_ProviderPanic(t *testing.T) {
	svc := NewGeohashService(panicProvider{}, geohash.DefaultPrecision).WithMetrics(&infra.Metrics{})

	_, err := svc.Compute(context.Background(), xkcdDate, origin())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

type panicProvider struct{}

func (panicProvider) MostRecentOpening(context.Context, domain.Date) (decimal.Decimal, error) {
	panic("boom")
}

func TestGeohashService_WithIndexPriceClient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Date, Open, High, Low, Close\n05/26/2005, 10458.68, 10600.00, 10400.00, 10500.00\n"))
	}))
	defer server.Close()

	cfg := infra.DefaultConfig()
	cfg.Index.URL = server.URL
	client := infra.NewIndexPriceClientWithConfig(cfg).WithMetrics(&infra.Metrics{})
	svc := NewGeohashService(client, geohash.DefaultPrecision).WithMetrics(&infra.Metrics{})

	pos := domain.NewCoordinate(decimal.RequireFromString("37.421542"), decimal.RequireFromString("-122.085589"))
	res, err := svc.Compute(context.Background(), xkcdDate, pos)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "(37.858, -121.46)", res.Destination.SimpleString(5))
}

func TestGeohashService_NonOKNeverHashes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := infra.DefaultConfig()
	cfg.Index.URL = server.URL
	client := infra.NewIndexPriceClientWithConfig(cfg).WithMetrics(&infra.Metrics{})
	m := &infra.Metrics{}
	svc := NewGeohashService(client, geohash.DefaultPrecision).WithMetrics(m)

	res, err := svc.Compute(context.Background(), xkcdDate, origin())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Empty(t, res.Key)
	assert.Equal(t, uint64(0), m.Snapshot().Computations)
}
