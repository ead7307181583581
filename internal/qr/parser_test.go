package qr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiscalRoundTrip(t *testing.T) {
	f, err := ParseFiscal("t=20250615T1430&s=1234.50&fn=123&i=456&fp=789&n=1")
	require.NoError(t, err)

	assert.Equal(t, 1234.50, f.Amount)
	assert.Equal(t, time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC), f.Date)
	assert.Equal(t, "123", f.FN)
	assert.Equal(t, "456", f.FD)
	assert.Equal(t, "789", f.FP)
	assert.Equal(t, "1", f.N)
	assert.Equal(t, "t=20250615T1430&s=1234.50&fn=123&i=456&fp=789&n=1", f.Raw)
}

func TestParseFiscalOrderIndependent(t *testing.T) {
	f, err := ParseFiscal("fn=9960440300123?n=1&fp=1867452&i=8041&s=560&t=20240301T0915")
	require.NoError(t, err)

	assert.Equal(t, 560.0, f.Amount)
	assert.Equal(t, "9960440300123", f.FN)
	assert.Equal(t, "8041", f.FD)
}

func TestParseFiscalIntegerAmount(t *testing.T) {
	f, err := ParseFiscal("t=20250101T0000&s=100&fn=1&i=2&fp=3&n=4")
	require.NoError(t, err)
	assert.Equal(t, 100.0, f.Amount)
}

func TestParseFiscalRejectsNonFiscal(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"url":               "https://example.com/pay?id=42",
		"missing amount":    "t=20250615T1430&fn=123&i=456&fp=789&n=1",
		"missing timestamp": "s=10.00&fn=123&i=456&fp=789&n=1",
		"missing fn":        "t=20250615T1430&s=10.00&i=456&fp=789&n=1",
		"missing fd":        "t=20250615T1430&s=10.00&fn=123&fp=789&n=1",
		"missing fp":        "t=20250615T1430&s=10.00&fn=123&i=456&n=1",
		"bad timestamp":     "t=2025-06-15&s=10.00&fn=123&i=456&fp=789&n=1",
		"three decimals":    "t=20250615T1430&s=10.001&fn=123&i=456&fp=789&n=1",
		"plain text":        "итого 100.00",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFiscal(payload)
			assert.ErrorIs(t, err, ErrNotFiscal)
		})
	}
}
