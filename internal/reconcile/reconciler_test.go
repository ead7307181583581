package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/entity"
)

func newTrip(advance float64) *entity.Trip {
	dep := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	arr := time.Date(2025, 6, 3, 19, 0, 0, 0, time.UTC)
	return &entity.Trip{
		DateFrom:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:        time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		DepartureTime: &dep,
		ArrivalTime:   &arr,
		AdvanceRub:    advance,
	}
}

func receipt(category string, amount *float64, docType constants.DocumentType) *entity.Receipt {
	return &entity.Receipt{
		FileName:     "doc.pdf",
		Category:     category,
		DocumentType: docType,
		Amount:       amount,
	}
}

func amt(v float64) *float64 { return &v }

func TestReconcileEndToEnd(t *testing.T) {
	// 1500 fiscal + 300 taxi + 3 days per diem at 2000 = 7800 total;
	// advance 8000 leaves a 200 refund
	rc := NewReconciler(DefaultConfig(), nil)
	res := rc.Reconcile(Input{
		Trip:        newTrip(8000),
		PerDiemRate: 2000,
		Receipts: []*entity.Receipt{
			receipt("ресторан", amt(1500), constants.DocFiscal),
			receipt("taxi", amt(300), constants.DocFiscal),
		},
	}, ModeRequiresAmount)

	assert.Equal(t, 3.0, res.PerDiem.Days)
	assert.Equal(t, 6000.0, res.PerDiem.ToPay)
	assert.Equal(t, 1800.0, res.TotalReceiptsAmount)
	assert.Equal(t, 7800.0, res.TotalExpenses)
	assert.InDelta(t, 200.0, res.ToReturn, 1e-9)
	assert.False(t, res.NeedsSupplementalRequest)
	assert.True(t, res.CanGenerate())
	require.NoError(t, res.Fatal())

	assert.Equal(t, 1500.0, res.ExpensesByCategory["restaurant"])
	assert.Equal(t, 300.0, res.ExpensesByCategory["taxi"])
}

func TestReconcileSupplementalRequest(t *testing.T) {
	rc := NewReconciler(DefaultConfig(), nil)
	trip := newTrip(4000)
	trip.DepartureTime = nil
	trip.ArrivalTime = nil

	res := rc.Reconcile(Input{
		Trip:        trip,
		PerDiemRate: 0,
		Receipts:    []*entity.Receipt{receipt("taxi", amt(4500), constants.DocFiscal)},
	}, ModeRequiresAmount)

	assert.InDelta(t, -500.0, res.ToReturn, 1e-9)
	assert.True(t, res.NeedsSupplementalRequest)

	trip.AdvanceRub = 5000
	res = rc.Reconcile(Input{
		Trip:        trip,
		PerDiemRate: 0,
		Receipts:    []*entity.Receipt{receipt("taxi", amt(4500), constants.DocFiscal)},
	}, ModeRequiresAmount)
	assert.InDelta(t, 500.0, res.ToReturn, 1e-9)
	assert.False(t, res.NeedsSupplementalRequest)
}

func TestReconcileAmountOutOfRange(t *testing.T) {
	rc := NewReconciler(DefaultConfig(), nil)
	res := rc.Reconcile(Input{
		Trip:        newTrip(0),
		PerDiemRate: 2000,
		Receipts:    []*entity.Receipt{receipt("hotel", amt(200001), constants.DocFiscal)},
	}, ModeAllReceipts)

	assert.Zero(t, res.TotalReceiptsAmount)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, common.WarnAmountOutOfRange, res.Warnings[0].Code)
	assert.Equal(t, common.WarnZeroReceiptsTotal, res.Warnings[1].Code)
}

func TestReconcileAmountMissing(t *testing.T) {
	rc := NewReconciler(DefaultConfig(), nil)
	res := rc.Reconcile(Input{
		Trip:        newTrip(0),
		PerDiemRate: 2000,
		Receipts: []*entity.Receipt{
			receipt("hotel", nil, constants.DocFiscal),
			receipt("airplane", nil, constants.DocBoarding),
		},
	}, ModeAllReceipts)

	var codes []string
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	// the boarding pass does not require an amount and stays silent
	assert.Contains(t, codes, common.WarnAmountMissing)
	assert.Equal(t, 1, countCode(codes, common.WarnAmountMissing))
	assert.True(t, res.CanGenerate())
}

func TestReconcileModeFiltering(t *testing.T) {
	rc := NewReconciler(DefaultConfig(), nil)
	in := Input{
		Trip:        newTrip(0),
		PerDiemRate: 2000,
		Receipts: []*entity.Receipt{
			receipt("airplane", amt(9000), constants.DocBoarding),
		},
	}

	// preview counts the boarding pass
	res := rc.Reconcile(in, ModeAllReceipts)
	assert.Equal(t, 9000.0, res.TotalReceiptsAmount)
	assert.True(t, res.CanGenerate())

	// the final report filters it out, leaving no receipts at all
	res = rc.Reconcile(in, ModeRequiresAmount)
	assert.Zero(t, res.TotalReceiptsAmount)
	assert.False(t, res.CanGenerate())
	assert.ErrorIs(t, res.Fatal(), common.ErrNoReceipts)
}

func TestReconcileNoExpenses(t *testing.T) {
	rc := NewReconciler(DefaultConfig(), nil)
	res := rc.Reconcile(Input{
		Trip:        newTrip(0),
		PerDiemRate: 0,
		Receipts:    []*entity.Receipt{receipt("other", nil, constants.DocFiscal)},
	}, ModeAllReceipts)

	assert.False(t, res.CanGenerate())
	assert.ErrorIs(t, res.Fatal(), common.ErrNoExpenses)
}

func countCode(codes []string, code string) int {
	n := 0
	for _, c := range codes {
		if c == code {
			n++
		}
	}
	return n
}
