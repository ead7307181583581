package constants

import (
	"strings"
)

// Canonical expense category keys. Receipts may carry free-text categories;
// Canonicalize maps the known Cyrillic/Latin variants onto these keys and
// leaves everything else untouched.
const (
	Airplane   = "airplane"
	Train      = "train"
	Taxi       = "taxi"
	Fuel       = "fuel"
	Hotel      = "hotel"
	Bus        = "bus"
	Restaurant = "restaurant"
	Other      = "other"
)

// CategoryOrder is the order categories appear in the advance report.
var CategoryOrder = []string{Fuel, Taxi, Airplane, Train, Bus, Hotel, Restaurant, Other}

// synonyms maps lowercased user input to a canonical key.
var synonyms = map[string]string{
	"самолет":            Airplane,
	"самолёт":            Airplane,
	"airplane":           Airplane,
	"flight":             Airplane,
	"поезд":              Train,
	"train":              Train,
	"такси":              Taxi,
	"taxi":               Taxi,
	"топливо":            Fuel,
	"fuel":               Fuel,
	"гостиница":          Hotel,
	"отель":              Hotel,
	"hotel":              Hotel,
	"автобус":            Bus,
	"bus":                Bus,
	"ресторан":           Restaurant,
	"restaurant":         Restaurant,
	"представительские":  Other,
	"прочее":             Other,
	"other":              Other,
}

// displayNames maps canonical keys to the labels used in generated documents.
var displayNames = map[string]string{
	Airplane:   "Самолет",
	Train:      "Поезд",
	Taxi:       "Такси",
	Fuel:       "Топливо",
	Hotel:      "Гостиница",
	Bus:        "Автобус",
	Restaurant: "Ресторан",
	Other:      "Представительские",
}

// Canonicalize maps a raw category string onto its canonical key.
// Unknown values are returned trimmed but otherwise unchanged, so the
// function is idempotent: Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(input string) string {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Other
	}
	if key, ok := synonyms[strings.ToLower(raw)]; ok {
		return key
	}
	return raw
}

// DisplayName returns the document label for a canonical key, or the key
// itself for custom categories.
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	return key
}

// OrderedKeys returns the known categories first, in report order, followed
// by any custom keys in the order given.
func OrderedKeys(keys []string) []string {
	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}
	seen := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, k := range CategoryOrder {
		if _, ok := present[k]; ok {
			ordered = append(ordered, k)
			seen[k] = struct{}{}
		}
	}
	for _, k := range keys {
		if _, ok := seen[k]; !ok {
			ordered = append(ordered, k)
			seen[k] = struct{}{}
		}
	}
	return ordered
}
