package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFind(t *testing.T) {
	eur, ok := Find("eur")
	assert.True(t, ok)
	assert.Equal(t, "EUR", eur.Code)

	got, ok := Find("XXX")
	assert.False(t, ok)
	assert.Equal(t, USD, got, "unknown codes fall back to USD")
}

func TestTopFitsDiscordChoiceLimit(t *testing.T) {
	assert.LessOrEqual(t, len(Top), 25)
	assert.Equal(t, USD, Top[0])

	seen := make(map[string]bool)
	for _, c := range Top {
		assert.False(t, seen[c.Code], "duplicate currency %s", c.Code)
		seen[c.Code] = true
		assert.NotEmpty(t, c.Symbol)
		assert.NotEmpty(t, c.Name)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "usd", USD.Key())
}
