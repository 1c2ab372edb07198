/*

This file contains the HTTP mark-price source consumed by the position
manager. Prices feed exposure decisions, so every response is validated
before use: finite, positive, and for the symbol that was asked for.

*/

package pricefeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/basislabs/dnvault/internal/logger"
)

// Error definitions for zero-tolerance error handling
var (
	ErrAPIConfiguration = errors.New("price feed configuration error")
	ErrRequestFailed    = errors.New("price request failed")
	ErrInvalidPriceData = errors.New("invalid price data received")
)

const requestTimeout = 30 * time.Second

// priceResponse is the feed's reply: {"symbol": "...", "price": "..."}.
// Price is a decimal string to keep the wire format float-free.
type priceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Feed fetches mark prices over HTTP.
type Feed struct {
	logger  zerolog.Logger
	baseURL string
	client  http.Client
}

// New creates a feed for the given base URL. The symbol is appended as a
// query parameter: GET <baseURL>?symbol=<symbol>.
func New(baseURL string) (*Feed, error) {
	if baseURL == "" {
		return nil, errors.Join(ErrAPIConfiguration, errors.New("base URL cannot be empty"))
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Join(ErrAPIConfiguration, fmt.Errorf("base URL is not parseable: %w", err))
	}

	return &Feed{
		logger:  logger.GetForComponent("price_feed"),
		baseURL: baseURL,
		client:  http.Client{Timeout: requestTimeout},
	}, nil
}

// MarkPrice fetches and validates the current mark price for symbol.
func (f *Feed) MarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if symbol == "" {
		return decimal.Zero, errors.Join(ErrInvalidPriceData, errors.New("symbol cannot be empty"))
	}

	requestURL := f.baseURL + "?symbol=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return decimal.Zero, errors.Join(ErrRequestFailed, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("symbol", symbol).Msg("Price request failed")
		return decimal.Zero, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Join(ErrRequestFailed,
			fmt.Errorf("price feed replied with status %d %s", resp.StatusCode, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, errors.Join(ErrRequestFailed, fmt.Errorf("failed to read response body: %w", err))
	}

	var parsed priceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, errors.Join(ErrInvalidPriceData, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if parsed.Symbol != symbol {
		return decimal.Zero, errors.Join(ErrInvalidPriceData,
			fmt.Errorf("asked for %s, feed answered for %s", symbol, parsed.Symbol))
	}

	price, err := decimal.NewFromString(parsed.Price)
	if err != nil {
		return decimal.Zero, errors.Join(ErrInvalidPriceData,
			fmt.Errorf("price %q is not a valid decimal: %w", parsed.Price, err))
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errors.Join(ErrInvalidPriceData,
			fmt.Errorf("price for %s must be positive: %s", symbol, price))
	}

	f.logger.Debug().
		Str("symbol", symbol).
		Str("price", price.String()).
		Msg("Mark price fetched")
	return price, nil
}
