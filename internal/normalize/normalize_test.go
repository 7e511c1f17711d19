package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"accented lowercase", "México", "mexico"},
		{"plain lowercase", "mexico", "mexico"},
		{"accented uppercase", "MÉXICO", "mexico"},
		{"tilde n", "Cañada", "canada"},
		{"whitespace collapse", "  San   Luis   Potosí ", "san luis potosi"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"mixed diacritics", "Querétaro, Qro.", "queretaro, qro."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestFoldInvariance(t *testing.T) {
	// The property search matching relies on: all casings and accent
	// variants of the same name fold to one canonical form.
	assert.Equal(t, Fold("México"), Fold("mexico"))
	assert.Equal(t, Fold("mexico"), Fold("MÉXICO"))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ciudad de México", "ciudad-de-mexico"},
		{"San Luis Potosí", "san-luis-potosi"},
		{"Álvaro Obregón", "alvaro-obregon"},
		{"  Roma Norte  ", "roma-norte"},
		{"León", "leon"},
		{"Cancún (Centro)", "cancun-centro"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Slug(tt.input), "input %q", tt.input)
	}
}
