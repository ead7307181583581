package qr

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Fiscal holds the structured fields of a Russian fiscal-receipt QR payload.
type Fiscal struct {
	Date   time.Time
	Amount float64
	FN     string // fiscal drive number
	FD     string // fiscal document number
	FP     string // fiscal sign
	N      string
	Raw    string
}

// ErrNotFiscal means a QR payload was decoded but does not match the fiscal
// grammar. Callers treat it the same as "no QR" and fall through to text
// extraction.
var ErrNotFiscal = errors.New("payload is not a fiscal receipt")

var (
	reTimestamp = regexp.MustCompile(`^\d{8}T\d{4}$`)
	reAmount    = regexp.MustCompile(`^\d+(?:\.\d{1,2})?$`)
	reDigits    = regexp.MustCompile(`^\d+$`)
)

// ParseFiscal parses a decoded QR payload of the form
// t=YYYYMMDDThhmm&s=SUM&fn=...&i=...&fp=...&n=... (key order irrelevant,
// '?' and '&' both accepted as delimiters). All six keys must be present.
func ParseFiscal(payload string) (*Fiscal, error) {
	if payload == "" {
		return nil, ErrNotFiscal
	}

	fields := make(map[string]string)
	for _, tok := range strings.FieldsFunc(payload, func(r rune) bool {
		return r == '&' || r == '?'
	}) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(k)
		if _, seen := fields[k]; !seen {
			fields[k] = v
		}
	}

	t, s := fields["t"], fields["s"]
	fn, fd, fp, n := fields["fn"], fields["i"], fields["fp"], fields["n"]
	if !reTimestamp.MatchString(t) || !reAmount.MatchString(s) {
		return nil, ErrNotFiscal
	}
	for _, id := range []string{fn, fd, fp, n} {
		if !reDigits.MatchString(id) {
			return nil, ErrNotFiscal
		}
	}

	date, err := time.Parse("20060102T1504", t)
	if err != nil {
		return nil, ErrNotFiscal
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, ErrNotFiscal
	}

	return &Fiscal{
		Date:   date,
		Amount: amount,
		FN:     fn,
		FD:     fd,
		FP:     fp,
		N:      n,
		Raw:    payload,
	}, nil
}
