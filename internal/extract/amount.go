package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Amount heuristic for receipt text. OCR output from Russian receipts
// mixes Latin and Cyrillic homoglyphs freely, so matching happens on a
// normalized copy: whitespace collapsed and confusable Latin letters
// mapped to their Cyrillic twins.

// anchorPhrases are tried in priority order against the normalized
// lowercase text. Ticket layouts put the grand total after the tariff
// line, so the most specific phrase goes first.
var anchorPhrases = []string{
	"итого по тарифу/сборам",
	"итого",
	"итого/total",
	"total",
}

// labelPatterns are the fallback when no anchor phrase is present.
var labelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)сумма\s*:`),
	regexp.MustCompile(`(?i)стоимость пр\.?`),
	regexp.MustCompile(`(?i)оплата\s*:`),
}

// reNumber tolerates space or no-break-space thousands separators and a
// comma or dot decimal mark.
var reNumber = regexp.MustCompile(`\d[\d\s\x{00A0}]*(?:[.,]\s*\d{2})?`)

var reSpaces = regexp.MustCompile(`[\s\x{00A0}]+`)

var homoglyphs = strings.NewReplacer(
	"A", "А", "B", "В", "C", "С", "E", "Е", "H", "Н", "K", "К",
	"M", "М", "O", "О", "P", "Р", "T", "Т", "X", "Х", "Y", "У",
	"a", "а", "b", "в", "c", "с", "e", "е", "h", "н", "k", "к",
	"m", "м", "o", "о", "p", "р", "t", "т", "x", "х", "y", "у",
)

// NormalizeText collapses runs of whitespace and maps Latin homoglyphs
// to Cyrillic.
func NormalizeText(text string) string {
	return homoglyphs.Replace(reSpaces.ReplaceAllString(text, " "))
}

// FindAmount locates the payable total in free-form receipt text.
// It scans a 300-character window after the first matching anchor
// phrase and returns the largest number in it: total lines list
// component prices alongside the total, and the total is the largest.
// Returns nil when nothing matches.
func FindAmount(text string) *float64 {
	normalized := NormalizeText(text)
	lower := strings.ToLower(normalized)

	for _, phrase := range anchorPhrases {
		if idx := strings.Index(lower, phrase); idx >= 0 {
			if v, ok := windowMax(normalized[idx+len(phrase):]); ok {
				return &v
			}
		}
	}

	// labeled patterns are tried on both the raw and the normalized
	// text: the label itself may or may not have been mangled by OCR
	for _, candidate := range []string{text, normalized} {
		for _, re := range labelPatterns {
			if loc := re.FindStringIndex(candidate); loc != nil {
				if v, ok := lineMax(candidate[loc[1]:]); ok {
					return &v
				}
			}
		}
	}
	return nil
}

// windowMax parses every number in the first 300 characters of tail and
// returns the maximum.
func windowMax(tail string) (float64, bool) {
	runes := []rune(tail)
	if len(runes) > 300 {
		tail = string(runes[:300])
	}
	return scanMax(tail)
}

// lineMax parses numbers in the first 40 characters of the label's own
// line. A label binds tightly to its amount, so the fiscal id digit
// runs on the lines below must never out-bid it.
func lineMax(tail string) (float64, bool) {
	if i := strings.IndexByte(tail, '\n'); i >= 0 {
		tail = tail[:i]
	}
	runes := []rune(tail)
	if len(runes) > 40 {
		tail = string(runes[:40])
	}
	return scanMax(tail)
}

func scanMax(tail string) (float64, bool) {
	best, found := 0.0, false
	for _, tok := range reNumber.FindAllString(tail, -1) {
		v, err := parseNumber(tok)
		if err != nil {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}

func parseNumber(tok string) (float64, error) {
	tok = strings.NewReplacer(" ", "", " ", "", "\t", "", ",", ".").Replace(tok)
	return strconv.ParseFloat(tok, 64)
}
