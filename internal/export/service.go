// Package export renders the advance report (форма АО-1) workbook.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/docdata"
)

// Layout of the AO-1 template: the report date lives in Z13, expense
// lines occupy rows 63..84 with the amount duplicated in columns P
// (accountant copy) and Y (report copy).
const (
	reportDateCell = "Z13"
	expenseFirst   = 63
	expenseLast    = 84
	labelCol       = 2  // B
	amountCol      = 16 // P
	reportCol      = 25 // Y
)

// Service produces XLSX bytes for a reconciled trip.
type Service struct {
	cfg    common.ExportConfig
	logger *slog.Logger
}

func NewService(cfg common.ExportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cfg: cfg, logger: logger}
}

// RenderAdvanceReport fills the configured AO-1 template, or builds a
// plain workbook when no template is configured.
func (s *Service) RenderAdvanceReport(data *docdata.DocumentData) ([]byte, error) {
	start := time.Now()

	var (
		f   *excelize.File
		err error
	)
	if s.cfg.TemplatePath != "" {
		f, err = s.renderTemplate(data)
	} else {
		f, err = s.renderPlain(data)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("advance report rendered",
		"template", s.cfg.TemplatePath != "",
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) renderTemplate(data *docdata.DocumentData) (*excelize.File, error) {
	f, err := excelize.OpenFile(s.cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	sheet := f.GetSheetName(0)

	set := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	_ = f.SetCellValue(sheet, reportDateCell, data.DateTo.Format("2.1.06"))

	// wipe whatever a previous generation left in the expense block
	for row := expenseFirst; row <= expenseLast; row++ {
		set(labelCol, row, "")
		set(amountCol, row, "")
		set(reportCol, row, "")
	}

	row := expenseFirst
	for _, key := range constants.OrderedKeys(mapKeys(data.ExpensesByCategory)) {
		if row > expenseLast-1 {
			s.logger.Warn("expense block full, remaining categories dropped", "category", key)
			break
		}
		set(labelCol, row, constants.DisplayName(key))
		set(amountCol, row, data.ExpensesByCategory[key])
		set(reportCol, row, data.ExpensesByCategory[key])
		row++
	}
	set(labelCol, row, "Суточные")
	set(amountCol, row, data.PerDiemToPay)
	set(reportCol, row, data.PerDiemToPay)

	return f, nil
}

// renderPlain is the no-template fallback: a flat listing that carries
// the same numbers without the official form.
func (s *Service) renderPlain(data *docdata.DocumentData) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	set := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	set(1, 1, "Авансовый отчет")
	set(1, 2, data.FIO)
	set(1, 3, fmt.Sprintf("%s — %s", data.DateFrom.Format("02.01.2006"), data.DateTo.Format("02.01.2006")))
	set(1, 4, data.DestinationCity)

	headers := []string{"Статья расходов", "Сумма, руб."}
	for i, h := range headers {
		set(i+1, 6, h)
	}

	row := 7
	for _, key := range constants.OrderedKeys(mapKeys(data.ExpensesByCategory)) {
		set(1, row, constants.DisplayName(key))
		set(2, row, data.ExpensesByCategory[key])
		row++
	}
	set(1, row, "Суточные")
	set(2, row, data.PerDiemToPay)
	row++

	set(1, row, "Итого расходов")
	set(2, row, data.TotalExpenses)
	row++
	set(1, row, "Выдан аванс")
	set(2, row, data.AdvanceRub)
	row++
	if data.ToReturn >= 0 {
		set(1, row, "К возврату")
		set(2, row, data.ToReturn)
	} else {
		set(1, row, "Перерасход (к доплате)")
		set(2, row, -data.ToReturn)
	}

	return f, nil
}

func mapKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
