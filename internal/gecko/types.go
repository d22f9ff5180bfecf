package gecko

import "time"

// Coin is the full snapshot returned by /coins/{id}. Values that CoinGecko
// reports per display currency come back as objects keyed by lowercase
// currency code and are decoded into maps.
type Coin struct {
	ID           string            `json:"id"`
	Symbol       string            `json:"symbol"`
	Name         string            `json:"name"`
	Localization map[string]string `json:"localization"`
	Description  map[string]string `json:"description"`
	Links        Links             `json:"links"`
	Image        Image             `json:"image"`
	MarketData   MarketData        `json:"market_data"`
}

// Links holds the subset of the coin's link block the bot uses.
type Links struct {
	Homepage []string `json:"homepage"`
}

// Image holds the coin's icon URLs at the sizes CoinGecko serves.
type Image struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// MarketData is the per-currency market block of a snapshot.
type MarketData struct {
	CurrentPrice                      map[string]float64 `json:"current_price"`
	MarketCap                         map[string]float64 `json:"market_cap"`
	TotalVolume                       map[string]float64 `json:"total_volume"`
	PriceChangePercentage1hInCurrency map[string]float64 `json:"price_change_percentage_1h_in_currency"`
	PriceChangePct24hInCurrency       map[string]float64 `json:"price_change_percentage_24h_in_currency"`
	PriceChangePct7dInCurrency        map[string]float64 `json:"price_change_percentage_7d_in_currency"`
	Sparkline7d                       Sparkline          `json:"sparkline_7d"`
}

// Sparkline is the 7-day hourly price series embedded in a snapshot.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// Candle is one OHLC period.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// CoinInfo is the short identity record from the list/markets endpoints.
type CoinInfo struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
