package extract

import "time"

// Fields is what the text fallback recovers from a receipt when no
// usable fiscal QR is present. Every field is optional.
type Fields struct {
	Date   *time.Time
	Amount *float64
	FN     *string
	FD     *string
	FP     *string
}

// Empty reports whether extraction recovered neither a date nor an
// amount. Fiscal ids alone do not make a usable result.
func (f *Fields) Empty() bool {
	return f == nil || (f.Date == nil && f.Amount == nil)
}
