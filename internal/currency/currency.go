// Package currency holds the fixed set of display currencies the bot offers.
// The set is capped at 25 entries because that's Discord's limit on option
// choices for a slash command.
package currency

import "strings"

// Currency is a display currency: an ISO-4217-style code as CoinGecko keys it,
// a human name for the command choice list, and the symbol used in embeds.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// USD is the reference fiat currency, used whenever the caller picks none.
var USD = Currency{Code: "USD", Name: "US Dollar", Symbol: "$"}

// Top lists the supported display currencies in choice order.
var Top = []Currency{
	USD,
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "CA$"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF "},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "CN¥"},
	{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "HK$"},
	{Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr "},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr "},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "MX$"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "RUB", Name: "Russian Ruble", Symbol: "₽"},
	{Code: "ZAR", Name: "South African Rand", Symbol: "R "},
	{Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "TWD", Name: "New Taiwan Dollar", Symbol: "NT$"},
	{Code: "DKK", Name: "Danish Krone", Symbol: "kr "},
	{Code: "PLN", Name: "Polish Zloty", Symbol: "zł "},
	{Code: "THB", Name: "Thai Baht", Symbol: "฿"},
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp "},
}

// Find looks up a currency by code, case-insensitively. Unknown codes fall
// back to USD, matching how unparseable option values are treated elsewhere.
func Find(code string) (Currency, bool) {
	for _, c := range Top {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return USD, false
}

// Key returns the lowercase code used to index CoinGecko's per-currency maps.
func (c Currency) Key() string {
	return strings.ToLower(c.Code)
}
