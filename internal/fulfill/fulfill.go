// Package fulfill executes one price-lookup command end to end: it fetches
// market data and renders the chart concurrently, joins both, composes the
// reply payload and guarantees the chart file is cleaned up on every path.
package fulfill

import (
	"context"
	"errors"
	"os"
	"time"

	"geckobot/internal/currency"
	"geckobot/internal/gecko"
	"geckobot/internal/logger"
	"geckobot/internal/reply"
	"geckobot/internal/trace"
)

// ChartStyle selects which chart accompanies the reply.
type ChartStyle string

const (
	StyleLine        ChartStyle = "line"
	StyleCandlestick ChartStyle = "candlestick"
)

// Request is one parsed command invocation.
type Request struct {
	CoinID   string
	Currency currency.Currency
	Style    ChartStyle
}

// MarketData is the slice of the CoinGecko client the fulfiller needs.
type MarketData interface {
	Coin(ctx context.Context, id string) (*gecko.Coin, error)
	OHLC(ctx context.Context, id string) ([]gecko.Candle, error)
}

// ChartRenderer renders a chart to a file and returns its path.
type ChartRenderer interface {
	Line(coin *gecko.Coin) (string, error)
	Candlestick(series []gecko.Candle, label string) (string, error)
}

// Result is a fulfilled request: the composed payload and the chart file that
// must be attached to the outgoing message. The caller owns the file and
// calls Cleanup after the send attempt.
type Result struct {
	Payload   *reply.Payload
	ChartPath string
}

// Cleanup removes the chart file. Idempotent and best effort: a missing file
// or a failed removal is logged, never escalated.
func (r *Result) Cleanup() {
	if r == nil || r.ChartPath == "" {
		return
	}
	removeFile(r.ChartPath)
}

// Fulfiller orchestrates request fulfillment with bounded concurrency and a
// per-request deadline.
type Fulfiller struct {
	market  MarketData
	charts  ChartRenderer
	sem     chan struct{}
	timeout time.Duration
}

// New returns a fulfiller running at most maxConcurrent requests at once,
// each bounded by timeout. Non-positive arguments select sane defaults.
func New(market MarketData, charts ChartRenderer, maxConcurrent int, timeout time.Duration) *Fulfiller {
	if maxConcurrent <= 0 {
		maxConcurrent = 32
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fulfiller{
		market:  market,
		charts:  charts,
		sem:     make(chan struct{}, maxConcurrent),
		timeout: timeout,
	}
}

// errFetchAborted signals the render goroutine that the snapshot never
// arrived; the fetch error takes precedence over it at the join.
var errFetchAborted = errors.New("snapshot fetch aborted")

type fetchResult struct {
	coin *gecko.Coin
	err  error
}

type renderResult struct {
	path string
	err  error
}

// Fulfill runs one request. On success the returned Result carries the
// composed payload and an existing chart file; on error no file is left
// behind. No partial result is ever returned.
func (f *Fulfiller) Fulfill(ctx context.Context, req Request) (*Result, error) {
	select {
	case f.sem <- struct{}{}:
		defer func() { <-f.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	ctx, span := trace.StartSpan(ctx, "fulfill.request")
	defer span.End()

	// Single-slot handoff: in line mode the renderer draws the sparkline
	// embedded in the snapshot, so it waits for the fetch to deliver it.
	// Candlestick mode fetches its own OHLC series and runs independently.
	handoff := make(chan *gecko.Coin, 1)
	fetchCh := make(chan fetchResult, 1)
	renderCh := make(chan renderResult, 1)

	go func() {
		coin, err := f.market.Coin(ctx, req.CoinID)
		if req.Style != StyleCandlestick {
			if err == nil {
				handoff <- coin
			}
			close(handoff)
		}
		fetchCh <- fetchResult{coin: coin, err: err}
	}()

	go func() {
		renderCh <- f.render(ctx, req, handoff)
	}()

	fetched := <-fetchCh
	rendered := <-renderCh

	if fetched.err != nil {
		if rendered.path != "" {
			removeFile(rendered.path)
		}
		return nil, fetched.err
	}
	if rendered.err != nil {
		if rendered.path != "" {
			removeFile(rendered.path)
		}
		return nil, rendered.err
	}

	payload, err := reply.Build(fetched.coin, req.Currency)
	if err != nil {
		removeFile(rendered.path)
		return nil, err
	}

	return &Result{Payload: payload, ChartPath: rendered.path}, nil
}

func (f *Fulfiller) render(ctx context.Context, req Request, handoff <-chan *gecko.Coin) renderResult {
	ctx, span := trace.StartSpan(ctx, "chart.render")
	defer span.End()

	if req.Style == StyleCandlestick {
		series, err := f.market.OHLC(ctx, req.CoinID)
		if err != nil {
			return renderResult{err: err}
		}
		path, err := f.charts.Candlestick(series, req.CoinID)
		return renderResult{path: path, err: err}
	}

	select {
	case coin, ok := <-handoff:
		if !ok {
			return renderResult{err: errFetchAborted}
		}
		path, err := f.charts.Line(coin)
		return renderResult{path: path, err: err}
	case <-ctx.Done():
		return renderResult{err: ctx.Err()}
	}
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn(context.Background(), "chart file removal failed", "path", path, "error", err)
	}
}
