package docdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/entity"
	"github.com/pvolkova/trip-tracker/internal/perdiem"
	"github.com/pvolkova/trip-tracker/internal/reconcile"
)

func TestBuild(t *testing.T) {
	amount := 1500.0
	org := "ООО Ромашка"
	date := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	trip := &entity.Trip{
		DestinationCity: "Казань",
		DateFrom:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:          time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Purpose:         "переговоры",
		AdvanceRub:      8000,
	}
	profile := &entity.Profile{
		FIO:         "Иванов Иван Иванович",
		TabNo:       "0042",
		PerDiemRate: 2000,
	}
	receipts := []*entity.Receipt{
		{
			FilePath:     "receipts/42/hotel.pdf",
			Category:     "отель",
			DocumentType: constants.DocFiscal,
			Amount:       &amount,
			ReceiptDate:  &date,
			OrgName:      &org,
		},
		{
			FilePath:     "/abs/boarding.pdf",
			Category:     "самолет",
			DocumentType: constants.DocBoarding,
		},
	}
	res := &reconcile.Result{
		ExpensesByCategory: map[string]float64{"hotel": 1500},
		TotalExpenses:      7500,
		ToReturn:           500,
		PerDiem: perdiem.Result{
			Days: 3, Total: 6000, ToPay: 6000,
		},
	}

	d := Build(trip, profile, receipts, res, "/data")

	assert.Equal(t, "Иванов Иван Иванович", d.FIO)
	assert.Equal(t, 3, d.Days)
	assert.Equal(t, 2000.0, d.PerDiemRate)
	assert.Equal(t, 3.0, d.PerDiemDays)
	assert.Equal(t, 500.0, d.ToReturn)

	require.Len(t, d.Receipts, 2)
	assert.Equal(t, "hotel", d.Receipts[0].Category)
	assert.Equal(t, "/data/receipts/42/hotel.pdf", d.Receipts[0].FilePath)
	assert.Equal(t, "ООО Ромашка", d.Receipts[0].OrgName)
	// absolute paths pass through untouched
	assert.Equal(t, "/abs/boarding.pdf", d.Receipts[1].FilePath)
	assert.Equal(t, "airplane", d.Receipts[1].Category)
	assert.Nil(t, d.Receipts[1].Amount)
}
