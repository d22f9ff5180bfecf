// Package gecko is a minimal CoinGecko v3 API client covering the endpoints
// the bot needs: coin snapshots with sparkline, 7-day OHLC series and the
// coin lists used for command registration.
package gecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"geckobot/internal/logger"
	"geckobot/internal/trace"
)

// DefaultBaseURL is the public CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client talks to the CoinGecko REST API. Every call is a fresh round trip:
// no retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the given API root. An empty baseURL selects the
// public API; timeout bounds each request at the transport level in addition
// to any context deadline.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Coin fetches the full snapshot for a coin id, including the 7-day
// sparkline. Unrecognized ids map to ErrCoinNotFound.
func (c *Client) Coin(ctx context.Context, id string) (*Coin, error) {
	ctx, span := trace.StartSpan(ctx, "gecko.coin")
	defer span.End()

	url := fmt.Sprintf("%s/coins/%s?sparkline=true&localization=true", c.baseURL, strings.ToLower(id))

	var coin Coin
	if err := c.getJSON(ctx, url, &coin); err != nil {
		return nil, err
	}
	if coin.ID == "" {
		// 200 body that doesn't look like a coin snapshot.
		return nil, ErrParse
	}
	return &coin, nil
}

// OHLC fetches the 7-day OHLC series for a coin id, priced in USD.
func (c *Client) OHLC(ctx context.Context, id string) ([]Candle, error) {
	ctx, span := trace.StartSpan(ctx, "gecko.ohlc")
	defer span.End()

	url := fmt.Sprintf("%s/coins/%s/ohlc?vs_currency=usd&days=7", c.baseURL, strings.ToLower(id))

	var raw [][]float64
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrParse
	}

	series := make([]Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			return nil, ErrParse
		}
		series = append(series, Candle{
			Time:  time.UnixMilli(int64(row[0])).UTC(),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		})
	}
	return series, nil
}

// TopCoins fetches the first n coins ordered by CoinGecko rank.
func (c *Client) TopCoins(ctx context.Context, n int) ([]CoinInfo, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=gecko_desc&per_page=%d&page=1&sparkline=false", c.baseURL, n)

	var coins []CoinInfo
	if err := c.getJSON(ctx, url, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// List fetches the identity records of every coin CoinGecko knows about.
func (c *Client) List(ctx context.Context) ([]CoinInfo, error) {
	var coins []CoinInfo
	if err := c.getJSON(ctx, c.baseURL+"/coins/list", &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// getJSON issues one GET and decodes a 200 body into out. Status codes map to
// the package error taxonomy; a 200 body that fails decoding maps to ErrParse.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ErrUnknown
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn(ctx, "coingecko request failed", "url", url, "error", err)
		return ErrUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug(ctx, "coingecko non-200", "url", url, "status", resp.StatusCode)
		return statusErr(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Warn(ctx, "coingecko response decode failed", "url", url, "error", err)
		return ErrParse
	}
	return nil
}
