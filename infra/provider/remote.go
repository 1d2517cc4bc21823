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
	"github.com/amirasaad/bank/pkg/currency"
	"github.com/amirasaad/bank/pkg/domain"
	"github.com/amirasaad/bank/pkg/money"
	"github.com/amirasaad/bank/pkg/provider"
	"github.com/shopspring/decimal"
)

// RemoteConverter calls a separately deployed converter service:
// GET {base}/convert-currencies/{SRC_DST}?amount=...
type RemoteConverter struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type remoteConversion struct {
	Symbols         string          `json:"symbols"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	Timestamp       time.Time       `json:"timestamp"`
}

type remoteProblem struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// NewRemoteConverter creates a converter client with the configured timeouts.
func NewRemoteConverter(cfg *config.Converter, logger *slog.Logger) *RemoteConverter {
	return &RemoteConverter{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: NewHTTPClient(cfg.ConnectTimeout, cfg.ReadTimeout),
		logger:     logger.With("provider", "remote_converter"),
	}
}

// Convert implements provider.CurrencyConverter.
func (c *RemoteConverter) Convert(
	ctx context.Context,
	amount money.Money,
	to currency.Code,
) (*provider.ConvertedAmount, error) {
	if !amount.IsPositive() {
		return nil, provider.ErrInvalidAmount
	}
	symbols := currency.Pair(amount.Currency(), to)
	endpoint := fmt.Sprintf("%s/convert-currencies/%s?amount=%s",
		c.baseURL, url.PathEscape(symbols), url.QueryEscape(amount.Amount().String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Conversion request failed", "symbols", symbols, "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		var p remoteProblem
		_ = json.NewDecoder(resp.Body).Decode(&p)
		c.logger.Warn("Conversion rejected", "symbols", symbols, "status", resp.StatusCode, "code", p.Code)
		return nil, remoteError(resp.StatusCode, symbols, p)
	}

	var body remoteConversion
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.Error{
			Kind:    provider.ErrExternalService.Kind,
			Code:    provider.ErrExternalService.Code,
			Message: "Malformed response from the converter",
			Err:     err,
		}
	}
	return &provider.ConvertedAmount{
		Value:     money.New(body.ConvertedAmount.RoundBank(money.ConvertedScale), to),
		Rate:      body.ExchangeRate.RoundBank(money.ConvertedScale),
		Timestamp: body.Timestamp.UTC(),
	}, nil
}

func remoteError(status int, symbols string, p remoteProblem) error {
	switch status {
	case http.StatusNotFound:
		return domain.Wrapf(provider.ErrCurrencyNotFound, "Currencies symbols not found: '%s'", symbols)
	case http.StatusUnprocessableEntity:
		switch p.Code {
		case provider.ErrInvalidAmount.Code:
			return provider.ErrInvalidAmount
		case provider.ErrUnsupportedCurrency.Code:
			if p.Detail != "" {
				return domain.Wrapf(provider.ErrUnsupportedCurrency, "%s", p.Detail)
			}
			return provider.ErrUnsupportedCurrency
		default:
			return provider.ErrInvalidSyntax
		}
	case http.StatusGatewayTimeout:
		return provider.ErrTimeout
	case http.StatusBadGateway:
		if p.Detail != "" {
			return domain.Wrapf(provider.ErrExternalService, "%s", p.Detail)
		}
		return statusError(status)
	default:
		return statusError(status)
	}
}

var _ provider.CurrencyConverter = (*RemoteConverter)(nil)
