// Package chart renders price charts to PNG files: a filled area chart of a
// coin's 7-day sparkline, or a candlestick chart of its OHLC series. Pure
// data-to-file rendering, no network access.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pplcc/plotext/custplotter"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"geckobot/internal/gecko"
)

const (
	defaultWidth  = 1024
	defaultHeight = 600
)

var (
	background = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	gridGray   = color.RGBA{R: 55, G: 55, B: 55, A: 255}
	labelWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	upGreen    = color.RGBA{G: 255, A: 255}
	downRed    = color.RGBA{R: 255, A: 255}
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("chart: empty price series")

// Renderer draws charts into OutDir (working directory when empty). The zero
// value is usable.
type Renderer struct {
	Width  int
	Height int
	OutDir string
}

// Line draws the coin's 7-day sparkline as a filled area chart and returns
// the written file's path. The fill and stroke are green when the series ends
// at or above its first value, red otherwise.
func (r *Renderer) Line(coin *gecko.Coin) (string, error) {
	series := coin.MarketData.Sparkline7d.Price
	if len(series) == 0 {
		return "", ErrEmptySeries
	}

	low, high := series[0], series[0]
	for _, v := range series {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}

	stroke := trendColor(series)
	fill := color.NRGBA{R: stroke.R, G: stroke.G, B: stroke.B, A: 51}

	xys := make(plotter.XYs, len(series))
	for i, v := range series {
		xys[i].X = float64(i)
		xys[i].Y = v
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return "", fmt.Errorf("render line chart: %w", err)
	}
	line.Color = stroke
	line.FillColor = fill

	p := plot.New()
	p.BackgroundColor = background
	r.styleAxes(p)
	p.Add(horizontalGrid())
	p.Add(line)

	p.X.Min = 0
	p.X.Max = float64(len(series) + 2)
	p.Y.Min = low * 0.95
	p.Y.Max = high * 1.05
	p.X.Tick.Marker = hoursAgoTicks{now: time.Now(), last: len(series) - 1}
	p.Y.Tick.Marker = moneyTicks{}

	path := r.outPath(coin.ID)
	if err := r.save(p, path); err != nil {
		return "", err
	}
	return path, nil
}

// Candlestick draws an OHLC series as a candlestick chart and returns the
// written file's path. The x range pads the series by 8 hours on each side;
// the y range autoscales from the close-price extremes.
func (r *Renderer) Candlestick(series []gecko.Candle, label string) (string, error) {
	if len(series) == 0 {
		return "", ErrEmptySeries
	}

	low, high := series[0].Close, series[0].Close
	data := make(custplotter.TOHLCVs, len(series))
	for i, c := range series {
		data[i].T = float64(c.Time.Unix())
		data[i].O = c.Open
		data[i].H = c.High
		data[i].L = c.Low
		data[i].C = c.Close
		if c.Close > high {
			high = c.Close
		}
		if c.Close < low {
			low = c.Close
		}
	}

	bars, err := custplotter.NewCandlesticks(data)
	if err != nil {
		return "", fmt.Errorf("render candlestick chart: %w", err)
	}
	bars.CandleWidth = vg.Length(15)
	bars.ColorUp = upGreen
	bars.ColorDown = downRed
	bars.FixedLineColor = false

	p := plot.New()
	p.BackgroundColor = background
	r.styleAxes(p)
	p.Add(horizontalGrid())
	p.Add(bars)

	pad := 8 * time.Hour
	p.X.Min = float64(series[0].Time.Add(-pad).Unix())
	p.X.Max = float64(series[len(series)-1].Time.Add(pad).Unix())
	p.Y.Min = low * 0.95
	p.Y.Max = high * 1.05
	p.X.Tick.Marker = plot.TimeTicks{Format: "2 Jan"}
	p.Y.Tick.Marker = moneyTicks{}

	path := r.outPath(label)
	if err := r.save(p, path); err != nil {
		return "", err
	}
	return path, nil
}

// trendColor picks the line chart color: green when the last value is at or
// above the first, red otherwise.
func trendColor(series []float64) color.RGBA {
	if series[len(series)-1] >= series[0] {
		return upGreen
	}
	return downRed
}

// outPath builds a per-invocation unique file name so concurrent requests for
// the same coin never collide.
func (r *Renderer) outPath(id string) string {
	name := fmt.Sprintf("%s_%d.png", id, time.Now().UnixNano())
	if r.OutDir == "" {
		return name
	}
	return filepath.Join(r.OutDir, name)
}

func (r *Renderer) save(p *plot.Plot, path string) error {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	if err := p.Save(vg.Length(w), vg.Length(h), path); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func (r *Renderer) styleAxes(p *plot.Plot) {
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.LineStyle.Color = background
		axis.Tick.LineStyle.Color = background
		axis.Tick.Label.Color = labelWhite
		axis.Tick.Label.Font.Size = vg.Points(13)
	}
}

func horizontalGrid() *plotter.Grid {
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Color = gridGray
	grid.Horizontal.Width = vg.Points(1)
	return grid
}

// moneyTicks formats y-axis labels as dollar amounts with grouping.
type moneyTicks struct{}

func (moneyTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		ticks[i].Label = "$" + humanize.CommafWithDigits(t.Value, 2)
	}
	return ticks
}

// hoursAgoTicks labels sparkline sample indexes with dates, one sample being
// one hour counted backward from now.
type hoursAgoTicks struct {
	now  time.Time
	last int
}

func (h hoursAgoTicks) Ticks(min, max float64) []plot.Tick {
	span := max - min
	if span <= 0 {
		return nil
	}
	step := span / 10
	ticks := make([]plot.Tick, 0, 11)
	for x := min; x <= max; x += step {
		idx := int(x)
		if idx > h.last {
			break
		}
		at := h.now.Add(-time.Duration(h.last-idx) * time.Hour)
		ticks = append(ticks, plot.Tick{Value: x, Label: at.Format("2 Jan")})
	}
	return ticks
}
