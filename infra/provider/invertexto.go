package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/shopspring/decimal"
)

// InvertextoRateSource fetches pair quotes from the invertexto currency API:
// GET {base}/{symbols}?token=... answers {"USD_EUR":{"price":0.92,"timestamp":1700000000}}.
type InvertextoRateSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type invertextoQuote struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

// NewInvertextoRateSource creates a rate source bounded by the converter timeouts.
func NewInvertextoRateSource(
	cfg *config.Invertexto,
	timeouts *config.Converter,
	logger *slog.Logger,
) *InvertextoRateSource {
	return &InvertextoRateSource{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: NewHTTPClient(timeouts.ConnectTimeout, timeouts.ReadTimeout),
		logger:     logger.With("provider", "invertexto"),
	}
}

// Name returns the provider name.
func (s *InvertextoRateSource) Name() string { return "invertexto" }

// Quote returns the price of one unit of the base currency of symbols.
func (s *InvertextoRateSource) Quote(ctx context.Context, symbols string) (*provider.Quote, error) {
	endpoint := fmt.Sprintf("%s/%s?token=%s", s.baseURL, url.PathEscape(symbols), url.QueryEscape(s.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Quote request failed", "symbols", symbols, "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	s.logger.Debug("Quote response", "symbols", symbols, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.Wrapf(provider.ErrCurrencyNotFound, "Currencies symbols not found: '%s'", symbols)
	case http.StatusUnprocessableEntity:
		return nil, provider.ErrInvalidSyntax
	default:
		return nil, statusError(resp.StatusCode)
	}

	var body map[string]invertextoQuote
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Error("Quote decode failed", "symbols", symbols, "error", err)
		return nil, &domain.Error{
			Kind:    provider.ErrExternalService.Kind,
			Code:    provider.ErrExternalService.Code,
			Message: "Malformed response from the external API",
			Err:     err,
		}
	}
	q, ok := body[symbols]
	if !ok {
		return nil, domain.Wrapf(provider.ErrCurrencyNotFound, "Currencies symbols not found: '%s'", symbols)
	}
	return &provider.Quote{
		Symbols:   symbols,
		Price:     q.Price,
		Timestamp: time.Unix(q.Timestamp, 0).UTC(),
	}, nil
}

var _ provider.RateSource = (*InvertextoRateSource)(nil)
