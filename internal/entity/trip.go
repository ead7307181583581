package entity

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents one reimbursable journey. A trip exclusively owns its
// receipts: deleting the trip deletes them and their files.
type Trip struct {
	ID              uuid.UUID  `json:"id"`
	ProfileID       uuid.UUID  `json:"profile_id"`
	DestinationCity string     `json:"destination_city"`
	DestinationOrg  string     `json:"destination_org"`
	DateFrom        time.Time  `json:"date_from"`
	DateTo          time.Time  `json:"date_to"`
	DepartureTime   *time.Time `json:"departure_time,omitempty"`
	ArrivalTime     *time.Time `json:"arrival_time,omitempty"`
	Purpose         string     `json:"purpose"`
	MealsBreakfast  int        `json:"meals_breakfast_count"`
	MealsLunch      int        `json:"meals_lunch_count"`
	MealsDinner     int        `json:"meals_dinner_count"`
	AdvanceRub      float64    `json:"advance_rub"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DurationDays is the calendar length of the trip, both endpoints inclusive.
func (t *Trip) DurationDays() int {
	return int(t.DateTo.Sub(t.DateFrom).Hours()/24) + 1
}
