// Package docdata assembles the flat record handed to the advance
// report renderer. The record carries data only; it must be fully
// reproducible from the trip, profile, and receipts without I/O.
package docdata

import (
	"path/filepath"
	"time"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/entity"
	"github.com/pvolkova/trip-tracker/internal/reconcile"
)

// ReceiptRow is one receipt line in the generated document.
type ReceiptRow struct {
	Category string     `json:"category"`
	Amount   *float64   `json:"amount"`
	Date     *time.Time `json:"date"`
	OrgName  string     `json:"org_name"`
	FilePath string     `json:"file_path"`
}

// DocumentData is the renderer contract.
type DocumentData struct {
	FIO        string `json:"fio"`
	TabNo      string `json:"tab_no"`
	Department string `json:"department"`
	Position   string `json:"position"`
	OrgName    string `json:"org_name"`

	DestinationCity string     `json:"destination_city"`
	DestinationOrg  string     `json:"destination_org"`
	DateFrom        time.Time  `json:"date_from"`
	DateTo          time.Time  `json:"date_to"`
	DepartureTime   *time.Time `json:"departure_time"`
	ArrivalTime     *time.Time `json:"arrival_time"`
	Purpose         string     `json:"purpose"`
	Days            int        `json:"days"`

	PerDiemRate    float64 `json:"per_diem_rate"`
	MealsBreakfast int     `json:"meals_breakfast_count"`
	MealsLunch     int     `json:"meals_lunch_count"`
	MealsDinner    int     `json:"meals_dinner_count"`
	AdvanceRub     float64 `json:"advance_rub"`

	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	PerDiemDays        float64            `json:"per_diem_days"`
	PerDiemTotal       float64            `json:"per_diem_total"`
	PerDiemDeduction   float64            `json:"per_diem_deduction"`
	PerDiemToPay       float64            `json:"per_diem_to_pay"`
	TotalExpenses      float64            `json:"total_expenses"`
	ToReturn           float64            `json:"to_return"`

	Receipts []ReceiptRow `json:"receipts"`
}

// Build flattens trip, profile, receipts, and the reconciliation
// outcome into the renderer record. Receipt file paths are made
// absolute against baseDir so the rendered document can link them.
func Build(trip *entity.Trip, profile *entity.Profile,
	receipts []*entity.Receipt, res *reconcile.Result, baseDir string) *DocumentData {

	rows := make([]ReceiptRow, 0, len(receipts))
	for _, r := range receipts {
		org := ""
		if r.OrgName != nil {
			org = *r.OrgName
		}
		path := r.FilePath
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		rows = append(rows, ReceiptRow{
			Category: constants.Canonicalize(r.Category),
			Amount:   r.Amount,
			Date:     r.ReceiptDate,
			OrgName:  org,
			FilePath: path,
		})
	}

	return &DocumentData{
		FIO:        profile.FIO,
		TabNo:      profile.TabNo,
		Department: profile.Department,
		Position:   profile.Position,
		OrgName:    profile.OrgName,

		DestinationCity: trip.DestinationCity,
		DestinationOrg:  trip.DestinationOrg,
		DateFrom:        trip.DateFrom,
		DateTo:          trip.DateTo,
		DepartureTime:   trip.DepartureTime,
		ArrivalTime:     trip.ArrivalTime,
		Purpose:         trip.Purpose,
		Days:            trip.DurationDays(),

		PerDiemRate:    profile.PerDiemRate,
		MealsBreakfast: trip.MealsBreakfast,
		MealsLunch:     trip.MealsLunch,
		MealsDinner:    trip.MealsDinner,
		AdvanceRub:     trip.AdvanceRub,

		ExpensesByCategory: res.ExpensesByCategory,
		PerDiemDays:        res.PerDiem.Days,
		PerDiemTotal:       res.PerDiem.Total,
		PerDiemDeduction:   res.PerDiem.Deduction,
		PerDiemToPay:       res.PerDiem.ToPay,
		TotalExpenses:      res.TotalExpenses,
		ToReturn:           res.ToReturn,

		Receipts: rows,
	}
}
