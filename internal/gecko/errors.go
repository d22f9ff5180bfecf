package gecko

import "errors"

// Error values returned by the client. The texts are user-facing: the bot
// replies with the raw error message when a command fails.
var (
	ErrCoinNotFound = errors.New("Coin not found! Try its full name, eg. bitcoin")
	ErrRateLimited  = errors.New("Uh-oh! Seems like I've reached the API limit")
	ErrParse        = errors.New("Whoops! An unexpected parse error occurred")
	ErrUnknown      = errors.New("An unknown API error occurred")
)

// statusErr maps a non-200 CoinGecko status code to an error value.
func statusErr(code int) error {
	switch code {
	case 404:
		return ErrCoinNotFound
	case 401:
		return ErrRateLimited
	default:
		return ErrUnknown
	}
}
