package fulfill

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geckobot/internal/currency"
	"geckobot/internal/gecko"
)

func snapshot() *gecko.Coin {
	return &gecko.Coin{
		ID:           "bitcoin",
		Name:         "Bitcoin",
		Localization: map[string]string{"en": "Bitcoin"},
		Description:  map[string]string{"en": "First."},
		Links:        gecko.Links{Homepage: []string{"https://bitcoin.org"}},
		MarketData: gecko.MarketData{
			CurrentPrice:                      map[string]float64{"usd": 45000},
			TotalVolume:                       map[string]float64{"usd": 1},
			MarketCap:                         map[string]float64{"usd": 2},
			PriceChangePercentage1hInCurrency: map[string]float64{"usd": 0.5},
			PriceChangePct24hInCurrency:       map[string]float64{"usd": 1.5},
			PriceChangePct7dInCurrency:        map[string]float64{"usd": -2.5},
			Sparkline7d:                       gecko.Sparkline{Price: []float64{1, 2, 3}},
		},
	}
}

type fakeMarket struct {
	mu        sync.Mutex
	coin      *gecko.Coin
	coinErr   error
	ohlc      []gecko.Candle
	ohlcErr   error
	coinCalls int
	ohlcCalls int
}

func (m *fakeMarket) Coin(_ context.Context, id string) (*gecko.Coin, error) {
	m.mu.Lock()
	m.coinCalls++
	m.mu.Unlock()
	if m.coinErr != nil {
		return nil, m.coinErr
	}
	return m.coin, nil
}

func (m *fakeMarket) OHLC(_ context.Context, id string) ([]gecko.Candle, error) {
	m.mu.Lock()
	m.ohlcCalls++
	m.mu.Unlock()
	if m.ohlcErr != nil {
		return nil, m.ohlcErr
	}
	return m.ohlc, nil
}

type fakeRenderer struct {
	t *testing.T

	mu        sync.Mutex
	dir       string
	lineErr   error
	gotCoin   *gecko.Coin
	gotSeries []gecko.Candle
	created   []string
}

func (r *fakeRenderer) newFile(name string) string {
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		r.t.Fatalf("write fake chart: %v", err)
	}
	r.created = append(r.created, path)
	return path
}

func (r *fakeRenderer) Line(coin *gecko.Coin) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotCoin = coin
	if r.lineErr != nil {
		return "", r.lineErr
	}
	return r.newFile("line.png"), nil
}

func (r *fakeRenderer) Candlestick(series []gecko.Candle, label string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gotSeries = series
	return r.newFile(label + "_candles.png"), nil
}

func newTestFulfiller(t *testing.T, market *fakeMarket) (*Fulfiller, *fakeRenderer) {
	renderer := &fakeRenderer{t: t, dir: t.TempDir()}
	return New(market, renderer, 4, 5*time.Second), renderer
}

func TestFulfillLine(t *testing.T) {
	market := &fakeMarket{coin: snapshot()}
	f, renderer := newTestFulfiller(t, market)

	result, err := f.Fulfill(context.Background(), Request{
		CoinID:   "bitcoin",
		Currency: currency.USD,
		Style:    StyleLine,
	})
	require.NoError(t, err)

	assert.Same(t, market.coin, renderer.gotCoin, "renderer must receive the fetched snapshot via the handoff")
	assert.Equal(t, 1, market.coinCalls)
	assert.Equal(t, 0, market.ohlcCalls, "line mode must not fetch OHLC")

	labels := make([]string, 0, 6)
	for _, field := range result.Payload.Fields {
		labels = append(labels, field.Name)
	}
	assert.Equal(t, []string{"Price", "24h Volume", "Market Cap", "1h", "24h", "7d"}, labels)

	_, err = os.Stat(result.ChartPath)
	require.NoError(t, err, "chart file must exist at attach time")

	result.Cleanup()
	_, err = os.Stat(result.ChartPath)
	assert.True(t, os.IsNotExist(err), "cleanup must remove the chart file")

	result.Cleanup() // second removal must be harmless
}

func TestFulfillLineFetchFails(t *testing.T) {
	market := &fakeMarket{coinErr: gecko.ErrCoinNotFound}
	f, renderer := newTestFulfiller(t, market)

	_, err := f.Fulfill(context.Background(), Request{
		CoinID:   "doesnotexist123",
		Currency: currency.USD,
		Style:    StyleLine,
	})
	require.ErrorIs(t, err, gecko.ErrCoinNotFound, "the fetch error takes precedence")

	assert.Nil(t, renderer.gotCoin, "renderer must never run without a snapshot")
	assert.Empty(t, renderer.created, "no chart file may be created")
}

func TestFulfillCandlestick(t *testing.T) {
	series := []gecko.Candle{{Time: time.Now(), Open: 1, High: 2, Low: 0.5, Close: 1.5}}
	market := &fakeMarket{coin: snapshot(), ohlc: series}
	f, renderer := newTestFulfiller(t, market)

	result, err := f.Fulfill(context.Background(), Request{
		CoinID:   "ethereum",
		Currency: currency.USD,
		Style:    StyleCandlestick,
	})
	require.NoError(t, err)
	defer result.Cleanup()

	assert.Equal(t, 1, market.coinCalls)
	assert.Equal(t, 1, market.ohlcCalls, "candlestick mode performs its own OHLC fetch")
	assert.Len(t, renderer.gotSeries, 1)
	assert.Nil(t, renderer.gotCoin)
}

func TestFulfillCandlestickOHLCFails(t *testing.T) {
	market := &fakeMarket{coin: snapshot(), ohlcErr: gecko.ErrRateLimited}
	f, renderer := newTestFulfiller(t, market)

	_, err := f.Fulfill(context.Background(), Request{
		CoinID:   "ethereum",
		Currency: currency.USD,
		Style:    StyleCandlestick,
	})
	require.ErrorIs(t, err, gecko.ErrRateLimited, "snapshot success must not mask the OHLC failure")
	assert.Equal(t, 1, market.coinCalls, "both units still run")
	assert.Empty(t, renderer.created)
}

func TestFulfillCandlestickFetchFailsAfterRender(t *testing.T) {
	series := []gecko.Candle{{Time: time.Now(), Open: 1, High: 2, Low: 0.5, Close: 1.5}}
	market := &fakeMarket{coinErr: gecko.ErrUnknown, ohlc: series}
	f, renderer := newTestFulfiller(t, market)

	_, err := f.Fulfill(context.Background(), Request{
		CoinID:   "ethereum",
		Currency: currency.USD,
		Style:    StyleCandlestick,
	})
	require.ErrorIs(t, err, gecko.ErrUnknown)

	require.Len(t, renderer.created, 1, "render side ran independently")
	_, statErr := os.Stat(renderer.created[0])
	assert.True(t, os.IsNotExist(statErr), "orphaned chart file must be removed on the error path")
}

func TestFulfillComposeFails(t *testing.T) {
	market := &fakeMarket{coin: snapshot()}
	f, renderer := newTestFulfiller(t, market)

	eur, _ := currency.Find("EUR") // snapshot has USD values only
	_, err := f.Fulfill(context.Background(), Request{
		CoinID:   "bitcoin",
		Currency: eur,
		Style:    StyleLine,
	})
	require.Error(t, err)

	require.Len(t, renderer.created, 1)
	_, statErr := os.Stat(renderer.created[0])
	assert.True(t, os.IsNotExist(statErr), "chart file must not leak when composing fails")
}

func TestFulfillRenderFails(t *testing.T) {
	market := &fakeMarket{coin: snapshot()}
	renderer := &fakeRenderer{t: t, dir: t.TempDir(), lineErr: errors.New("backend exploded")}
	f := New(market, renderer, 4, 5*time.Second)

	_, err := f.Fulfill(context.Background(), Request{
		CoinID:   "bitcoin",
		Currency: currency.USD,
		Style:    StyleLine,
	})
	require.ErrorContains(t, err, "backend exploded")
	assert.Empty(t, renderer.created)
}

func TestFulfillCanceledWhileSaturated(t *testing.T) {
	market := &fakeMarket{coin: snapshot()}
	renderer := &fakeRenderer{t: t, dir: t.TempDir()}
	f := New(market, renderer, 1, 5*time.Second)
	f.sem <- struct{}{} // saturate the admission semaphore

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fulfill(ctx, Request{CoinID: "bitcoin", Currency: currency.USD, Style: StyleLine})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, market.coinCalls)
}
