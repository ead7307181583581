package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeKnownSynonyms(t *testing.T) {
	cases := map[string]string{
		"Такси":     Taxi,
		"taxi":      Taxi,
		"САМОЛЁТ":   Airplane,
		"гостиница": Hotel,
		"Отель":     Hotel,
		"ресторан":  Restaurant,
		"":          Other,
		"  поезд  ": Train,
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonicalize(in), "input %q", in)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{"Такси", "taxi", "аренда самоката", "прочее", "", "Отель"}
	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "input %q", in)
	}
}

func TestCanonicalizeUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "аренда самоката", Canonicalize(" аренда самоката "))
}

func TestOrderedKeys(t *testing.T) {
	got := OrderedKeys([]string{"аренда самоката", Hotel, Taxi})
	assert.Equal(t, []string{Taxi, Hotel, "аренда самоката"}, got)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Такси", DisplayName(Taxi))
	assert.Equal(t, "аренда самоката", DisplayName("аренда самоката"))
}
