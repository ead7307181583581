// Package perdiem computes the daily-allowance portion of a business
// trip. All functions are pure.
package perdiem

import "time"

// Weights are the fractions of a day's allowance withheld per provided
// meal.
type Weights struct {
	Breakfast float64
	Lunch     float64
	Dinner    float64
}

func DefaultWeights() Weights {
	return Weights{Breakfast: 0.15, Lunch: 0.30, Dinner: 0.30}
}

// Result carries the computed allowance figures for a trip.
type Result struct {
	Days      float64
	Total     float64
	Deduction float64
	ToPay     float64
}

// Days converts trip boundaries into paid allowance days. The first
// and last day are pro-rated by departure and arrival time; a missing
// time counts as a full day at that end. Never negative.
func Days(dateFrom, dateTo time.Time, departure, arrival *time.Time) float64 {
	depCoef := 1.0
	if departure != nil {
		switch h := departure.Hour(); {
		case h < 12:
			depCoef = 1.0
		case h < 18:
			depCoef = 0.5
		default:
			depCoef = 0.4
		}
	}

	arrCoef := 1.0
	if arrival != nil {
		switch h := arrival.Hour(); {
		case h >= 18:
			arrCoef = 1.0
		case h >= 12:
			arrCoef = 0.5
		default:
			arrCoef = 0.4
		}
	}

	fullDays := daysBetween(dateFrom, dateTo) - 1
	if fullDays < 0 {
		fullDays = 0
	}
	return depCoef + float64(fullDays) + arrCoef
}

// Compute resolves the full allowance: days at the given rate, minus
// the meal deduction for meals covered by the receiving side. The
// deduction is spread over calendar trip days.
func Compute(dateFrom, dateTo time.Time, departure, arrival *time.Time,
	rate float64, breakfasts, lunches, dinners int, w Weights) Result {

	days := Days(dateFrom, dateTo, departure, arrival)
	total := days * rate

	var deduction float64
	if tripDays := daysBetween(dateFrom, dateTo) + 1; tripDays > 0 {
		meals := float64(breakfasts)*w.Breakfast +
			float64(lunches)*w.Lunch +
			float64(dinners)*w.Dinner
		deduction = meals * total / float64(tripDays)
	}

	return Result{
		Days:      days,
		Total:     total,
		Deduction: deduction,
		ToPay:     total - deduction,
	}
}

// daysBetween counts calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
