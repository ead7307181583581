// Package reconcile turns a trip's receipts into the advance-report
// money figures: per-category expense sums, the per-diem allowance,
// and the settle-up against the advance.
package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/entity"
	"github.com/pvolkova/trip-tracker/internal/perdiem"
)

// Mode selects which receipts participate in the expense sums.
type Mode int

const (
	// ModeAllReceipts sums every receipt; used for pre-confirmation
	// previews where the user wants to see everything uploaded.
	ModeAllReceipts Mode = iota
	// ModeRequiresAmount filters to documents that must carry an
	// amount; used for the final post-trip report.
	ModeRequiresAmount
)

// Config carries the policy knobs: the sanity range for a single
// receipt amount and the meal deduction weights.
type Config struct {
	AmountMin float64
	AmountMax float64
	Weights   perdiem.Weights
}

func DefaultConfig() Config {
	return Config{AmountMin: 0, AmountMax: 200000, Weights: perdiem.DefaultWeights()}
}

// Input is everything reconciliation needs; it performs no I/O.
type Input struct {
	Trip        *entity.Trip
	PerDiemRate float64
	Receipts    []*entity.Receipt
}

// Issue is one warning or fatal error surfaced to the user.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the full reconciliation outcome. Warnings never block
// anything; Errors block generation but not preview.
type Result struct {
	ExpensesByCategory       map[string]float64 `json:"expenses_by_category"`
	TotalReceiptsAmount      float64            `json:"total_receipts_amount"`
	TotalExpenses            float64            `json:"total_expenses"`
	ToReturn                 float64            `json:"to_return"`
	PerDiem                  perdiem.Result     `json:"per_diem"`
	NeedsSupplementalRequest bool               `json:"needs_supplemental_request"`
	Warnings                 []Issue            `json:"warnings"`
	Errors                   []Issue            `json:"errors"`
}

// CanGenerate reports whether document generation may proceed.
func (r *Result) CanGenerate() bool {
	return len(r.Errors) == 0
}

// Fatal maps the first blocking issue to its sentinel, or nil.
func (r *Result) Fatal() error {
	for _, iss := range r.Errors {
		switch iss.Code {
		case common.ErrCodeNoReceipts:
			return common.NewAppError(iss.Code, iss.Message, common.ErrNoReceipts)
		case common.ErrCodeNoExpenses:
			return common.NewAppError(iss.Code, iss.Message, common.ErrNoExpenses)
		}
	}
	return nil
}

type Reconciler struct {
	cfg    Config
	logger *slog.Logger
}

func NewReconciler(cfg Config, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AmountMax <= cfg.AmountMin {
		cfg = DefaultConfig()
	}
	return &Reconciler{cfg: cfg, logger: logger}
}

// Reconcile computes the money figures for a trip.
func (rc *Reconciler) Reconcile(in Input, mode Mode) *Result {
	trip := in.Trip
	res := &Result{ExpensesByCategory: make(map[string]float64)}

	counted := 0
	for _, r := range in.Receipts {
		if mode == ModeRequiresAmount && !r.RequiresAmount() {
			continue
		}
		counted++

		if r.Amount == nil {
			if r.RequiresAmount() {
				res.Warnings = append(res.Warnings, Issue{
					Code:    common.WarnAmountMissing,
					Message: fmt.Sprintf("у документа %q не указана сумма", r.FileName),
				})
			}
			continue
		}
		amount := *r.Amount
		if amount < rc.cfg.AmountMin || amount > rc.cfg.AmountMax {
			res.Warnings = append(res.Warnings, Issue{
				Code: common.WarnAmountOutOfRange,
				Message: fmt.Sprintf("сумма %.2f у документа %q вне диапазона [%.0f, %.0f] и не учтена",
					amount, r.FileName, rc.cfg.AmountMin, rc.cfg.AmountMax),
			})
			continue
		}

		key := constants.Canonicalize(r.Category)
		res.ExpensesByCategory[key] += amount
		res.TotalReceiptsAmount += amount
	}

	res.PerDiem = perdiem.Compute(trip.DateFrom, trip.DateTo,
		trip.DepartureTime, trip.ArrivalTime,
		in.PerDiemRate, trip.MealsBreakfast, trip.MealsLunch, trip.MealsDinner,
		rc.cfg.Weights)

	res.TotalExpenses = res.TotalReceiptsAmount + res.PerDiem.ToPay
	res.ToReturn = trip.AdvanceRub - res.TotalExpenses
	if mode == ModeRequiresAmount && res.ToReturn < 0 {
		res.NeedsSupplementalRequest = true
	}

	if trip.DepartureTime == nil || trip.ArrivalTime == nil {
		res.Warnings = append(res.Warnings, Issue{
			Code:    common.WarnNoTravelTimes,
			Message: "время выезда или прибытия не указано, первый и последний день считаются полными",
		})
	}
	if res.TotalReceiptsAmount == 0 && counted > 0 {
		res.Warnings = append(res.Warnings, Issue{
			Code:    common.WarnZeroReceiptsTotal,
			Message: "ни один документ не содержит суммы",
		})
	}

	if counted == 0 {
		res.Errors = append(res.Errors, Issue{
			Code:    common.ErrCodeNoReceipts,
			Message: "к командировке не приложено ни одного документа",
		})
	}
	if res.TotalReceiptsAmount == 0 && res.PerDiem.ToPay == 0 {
		res.Errors = append(res.Errors, Issue{
			Code:    common.ErrCodeNoExpenses,
			Message: "итоговые расходы равны нулю",
		})
	}

	rc.logger.Debug("reconciled trip",
		"trip_id", trip.ID,
		"mode", mode,
		"receipts_total", res.TotalReceiptsAmount,
		"per_diem_to_pay", res.PerDiem.ToPay,
		"to_return", res.ToReturn,
		"warnings", len(res.Warnings),
		"errors", len(res.Errors),
	)
	return res
}
