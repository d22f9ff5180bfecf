// Package reply maps a coin snapshot into the embed payload the bot sends
// back: title block, description and the six market fields, formatted in the
// requested display currency. Pure data mapping, no network access.
package reply

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"geckobot/internal/currency"
	"geckobot/internal/gecko"
)

// ErrMissingCurrency is returned when the snapshot has no value for the
// requested display currency. The text is user-facing.
var ErrMissingCurrency = errors.New("No price data for that currency, sorry!")

// Field is one labeled value in the embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Payload is the composed reply, ready for the platform adapter.
type Payload struct {
	Title        string
	TitleURL     string
	Description  string
	ThumbnailURL string
	Fields       []Field
}

// Build composes the payload for a snapshot in the given display currency.
// Field order is fixed: Price, 24h Volume, Market Cap, 1h, 24h, 7d.
func Build(coin *gecko.Coin, cur currency.Currency) (*Payload, error) {
	title := coin.Localization["en"]
	if title == "" {
		title = coin.Name
	}

	description, err := ShortDescription(coin.Description["en"])
	if err != nil {
		return nil, fmt.Errorf("format description: %w", err)
	}

	var titleURL string
	if len(coin.Links.Homepage) > 0 {
		titleURL = NormalizeHomepage(coin.Links.Homepage[0])
	}

	key := cur.Key()
	md := coin.MarketData
	price, okP := md.CurrentPrice[key]
	volume, okV := md.TotalVolume[key]
	mcap, okC := md.MarketCap[key]
	chg1h, ok1 := md.PriceChangePercentage1hInCurrency[key]
	chg24h, ok2 := md.PriceChangePct24hInCurrency[key]
	chg7d, ok3 := md.PriceChangePct7dInCurrency[key]
	if !okP || !okV || !okC || !ok1 || !ok2 || !ok3 {
		return nil, ErrMissingCurrency
	}

	return &Payload{
		Title:        title,
		TitleURL:     titleURL,
		Description:  description,
		ThumbnailURL: coin.Image.Large,
		Fields: []Field{
			{Name: "Price", Value: FormatAmount(price, cur), Inline: true},
			{Name: "24h Volume", Value: FormatAmount(volume, cur), Inline: true},
			{Name: "Market Cap", Value: FormatAmount(mcap, cur), Inline: true},
			{Name: "1h", Value: FormatChange(chg1h), Inline: true},
			{Name: "24h", Value: FormatChange(chg24h), Inline: true},
			{Name: "7d", Value: FormatChange(chg7d), Inline: true},
		},
	}, nil
}

// FormatAmount renders a monetary value as a code block with the currency
// symbol and thousands grouping. Sub-unit prices keep more precision so small
// coins don't round to zero.
func FormatAmount(v float64, cur currency.Currency) string {
	digits := 2
	if v > -1 && v < 1 {
		digits = 8
	}
	return fmt.Sprintf("```%s%s```", cur.Symbol, humanize.CommafWithDigits(v, digits))
}

// FormatChange renders a percentage change as a diff code block so Discord
// colors it: explicit sign (+ for non-negative), exactly one decimal digit.
func FormatChange(v float64) string {
	return fmt.Sprintf("```diff\n%+.1f%%```", v)
}

// NormalizeHomepage prefixes https:// on homepage URLs that lack a scheme.
func NormalizeHomepage(u string) string {
	if u == "" || strings.Contains(u, "http") {
		return u
	}
	return "https://" + u
}

// ShortDescription extracts the first paragraph of a coin description and
// rewrites embedded anchor tags as markdown links.
func ShortDescription(full string) (string, error) {
	paragraph, _, _ := strings.Cut(full, "\r\n\r\n")
	if !strings.Contains(paragraph, "<a") {
		return paragraph, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(paragraph))
	if err != nil {
		return "", err
	}
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		sel.ReplaceWithHtml(fmt.Sprintf("[%s](%s)", sel.Text(), href))
	})
	return doc.Find("body").Text(), nil
}
