package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infracache "github.com/amirasaad/bank/infra/cache"
	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func timeouts() *config.Converter {
	return &config.Converter{ConnectTimeout: time.Second, ReadTimeout: 3 * time.Second}
}

func newInvertexto(t *testing.T, h http.HandlerFunc) *InvertextoRateSource {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewInvertextoRateSource(&config.Invertexto{URL: srv.URL, Token: "secret"}, timeouts(), testLogger())
}

func TestInvertexto_Quote(t *testing.T) {
	src := newInvertexto(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD_EUR", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"USD_EUR":{"price":0.9234,"timestamp":1700000000}}`)
	})

	q, err := src.Quote(context.Background(), "USD_EUR")
	require.NoError(t, err)
	assert.Equal(t, "USD_EUR", q.Symbols)
	assert.True(t, q.Price.Equal(decimal.RequireFromString("0.9234")))
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), q.Timestamp)
	assert.Equal(t, "invertexto", src.Name())
}

func TestInvertexto_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    *domain.Error
		message string
	}{
		{"not found", http.StatusNotFound, "", provider.ErrCurrencyNotFound, "Currencies symbols not found: 'USD_XXX'"},
		{"unprocessable", http.StatusUnprocessableEntity, "", provider.ErrInvalidSyntax, "Example: USD_EUR"},
		{"server error", http.StatusInternalServerError, "", provider.ErrExternalService, "Status code: 500 [Internal Server Error]"},
		{"forbidden", http.StatusForbidden, "", provider.ErrExternalService, "Status code: 403 [Forbidden]"},
		{"pair missing from body", http.StatusOK, `{}`, provider.ErrCurrencyNotFound, "Currencies symbols not found: 'USD_XXX'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newInvertexto(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := src.Quote(context.Background(), "USD_XXX")
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestInvertexto_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	src := NewInvertextoRateSource(
		&config.Invertexto{URL: srv.URL},
		&config.Converter{ConnectTimeout: time.Second, ReadTimeout: 50 * time.Millisecond},
		testLogger(),
	)
	_, err := src.Quote(context.Background(), "USD_EUR")
	require.ErrorIs(t, err, provider.ErrTimeout)
	assert.Equal(t, "Timeout occurred while calling the external API", err.Error())
}

func TestInvertexto_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	src := NewInvertextoRateSource(&config.Invertexto{URL: base}, timeouts(), testLogger())
	_, err := src.Quote(context.Background(), "USD_EUR")
	require.ErrorIs(t, err, provider.ErrExternalService)
}

func TestRemoteConverter_Convert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/convert-currencies/BRL_USD", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("amount"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"symbols":"BRL_USD","exchange_rate":"0.16","amount":"50",`+
			`"converted_amount":"8.00","timestamp":"2023-11-14T22:13:20Z"}`)
	}))
	t.Cleanup(srv.Close)

	c := NewRemoteConverter(&config.Converter{URL: srv.URL, ConnectTimeout: time.Second, ReadTimeout: time.Second}, testLogger())
	got, err := c.Convert(context.Background(), money.MustParse("50", currency.BRL), currency.USD)
	require.NoError(t, err)
	assert.True(t, got.Value.Equals(money.MustParse("8", currency.USD)))
	assert.Equal(t, "0.16", got.Rate.String())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got.Timestamp)
}

func TestRemoteConverter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *domain.Error
	}{
		{"not found", http.StatusNotFound, `{"code":"currency_not_found"}`, provider.ErrCurrencyNotFound},
		{"bad syntax", http.StatusUnprocessableEntity, `{"code":"invalid_syntax"}`, provider.ErrInvalidSyntax},
		{"bad amount", http.StatusUnprocessableEntity, `{"code":"invalid_amount"}`, provider.ErrInvalidAmount},
		{"bad code", http.StatusUnprocessableEntity, `{"code":"unsupported_currency"}`, provider.ErrUnsupportedCurrency},
		{"gateway timeout", http.StatusGatewayTimeout, `{"code":"timeout"}`, provider.ErrTimeout},
		{"bad gateway", http.StatusBadGateway, `{"code":"external_service_error","detail":"Status code: 500 [Internal Server Error]"}`, provider.ErrExternalService},
		{"teapot", http.StatusTeapot, ``, provider.ErrExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(srv.Close)
			c := NewRemoteConverter(&config.Converter{URL: srv.URL, ConnectTimeout: time.Second, ReadTimeout: time.Second}, testLogger())
			_, err := c.Convert(context.Background(), money.MustParse("1", currency.USD), currency.EUR)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRemoteConverter_RejectsNonPositiveWithoutCalling(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)
	c := NewRemoteConverter(&config.Converter{URL: srv.URL, ConnectTimeout: time.Second, ReadTimeout: time.Second}, testLogger())

	_, err := c.Convert(context.Background(), money.MustParse("0", currency.USD), currency.EUR)
	require.ErrorIs(t, err, provider.ErrInvalidAmount)
	assert.Zero(t, calls.Load())
}

type stubSource struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Quote(ctx context.Context, symbols string) (*provider.Quote, error) {
	s.mu.Lock()
	s.calls++
	err := s.err
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err != nil {
		return nil, err
	}
	return &provider.Quote{Symbols: symbols, Price: decimal.RequireFromString("2"), Timestamp: time.Unix(0, 0).UTC()}, nil
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestBreakerRateSource_OpensAfterUpstreamFailures(t *testing.T) {
	src := &stubSource{err: provider.ErrTimeout}
	b := NewBreakerRateSource(src, &config.Breaker{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	}, testLogger())

	for i := 0; i < 2; i++ {
		_, err := b.Quote(context.Background(), "USD_EUR")
		require.ErrorIs(t, err, provider.ErrTimeout)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Quote(context.Background(), "USD_EUR")
	require.ErrorIs(t, err, provider.ErrExternalService)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 2, src.Calls())
}

func TestBreakerRateSource_CallerErrorsDoNotTrip(t *testing.T) {
	src := &stubSource{err: provider.ErrCurrencyNotFound}
	b := NewBreakerRateSource(src, &config.Breaker{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 1,
	}, testLogger())

	for i := 0; i < 3; i++ {
		_, err := b.Quote(context.Background(), "USD_XXX")
		require.ErrorIs(t, err, provider.ErrCurrencyNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 3, src.Calls())
}

func TestCachedRateSource(t *testing.T) {
	src := &stubSource{delay: 20 * time.Millisecond}
	c := NewCachedRateSource(src, infracache.NewMemoryCache[provider.Quote](), time.Minute, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := c.Quote(context.Background(), "USD_EUR")
			assert.NoError(t, err)
			if q != nil {
				assert.Equal(t, "2", q.Price.String())
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, src.Calls())

	_, err := c.Quote(context.Background(), "USD_EUR")
	require.NoError(t, err)
	assert.Equal(t, 1, src.Calls())
	assert.Equal(t, "stub", c.Name())
}

func TestCachedRateSource_ErrorsAreNotCached(t *testing.T) {
	src := &stubSource{err: fmt.Errorf("boom: %w", provider.ErrExternalService)}
	c := NewCachedRateSource(src, infracache.NewMemoryCache[provider.Quote](), time.Minute, testLogger())

	_, err := c.Quote(context.Background(), "USD_EUR")
	require.Error(t, err)
	_, err = c.Quote(context.Background(), "USD_EUR")
	require.Error(t, err)
	assert.Equal(t, 2, src.Calls())
}

type gatedSource struct {
	entered chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
}

func (s *gatedSource) Name() string { return "gated" }

func (s *gatedSource) Quote(ctx context.Context, symbols string) (*provider.Quote, error) {
	close(s.entered)
	select {
	case <-s.release:
	case <-ctx.Done():
		s.ctxErr.Store(ctx.Err())
		return nil, ctx.Err()
	}
	return &provider.Quote{Symbols: symbols, Price: decimal.RequireFromString("2"), Timestamp: time.Unix(0, 0).UTC()}, nil
}

func TestCachedRateSource_LeaderCancelDoesNotFailWaiters(t *testing.T) {
	src := &gatedSource{entered: make(chan struct{}), release: make(chan struct{})}
	c := NewCachedRateSource(src, infracache.NewMemoryCache[provider.Quote](), time.Minute, testLogger())

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Quote(leaderCtx, "USD_EUR")
		leaderErr <- err
	}()
	<-src.entered

	waiter := make(chan error, 1)
	go func() {
		q, err := c.Quote(context.Background(), "USD_EUR")
		if err == nil {
			assert.Equal(t, "2", q.Price.String())
		}
		waiter <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(src.release)
	assert.NoError(t, <-waiter)
	assert.Nil(t, src.ctxErr.Load())
}
