package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/docdata"
)

func testData() *docdata.DocumentData {
	return &docdata.DocumentData{
		FIO:             "Иванов Иван Иванович",
		DestinationCity: "Казань",
		DateFrom:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:          time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		AdvanceRub:      8000,
		ExpensesByCategory: map[string]float64{
			"hotel": 1500,
			"taxi":  300,
		},
		PerDiemToPay:  6000,
		TotalExpenses: 7800,
		ToReturn:      200,
	}
}

func TestRenderPlainWorkbook(t *testing.T) {
	svc := NewService(common.ExportConfig{}, nil)
	out, err := svc.RenderAdvanceReport(testData())
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	fio, _ := f.GetCellValue(sheet, "A2")
	assert.Equal(t, "Иванов Иван Иванович", fio)

	// taxi is ordered before hotel in the report
	first, _ := f.GetCellValue(sheet, "A7")
	assert.Equal(t, "Такси", first)
	second, _ := f.GetCellValue(sheet, "A8")
	assert.Equal(t, "Гостиница", second)
	third, _ := f.GetCellValue(sheet, "A9")
	assert.Equal(t, "Суточные", third)

	perDiem, _ := f.GetCellValue(sheet, "B9")
	assert.Equal(t, "6000", perDiem)
}

func TestRenderPlainOverspend(t *testing.T) {
	data := testData()
	data.AdvanceRub = 7000
	data.ToReturn = -800

	svc := NewService(common.ExportConfig{}, nil)
	out, err := svc.RenderAdvanceReport(data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	label, _ := f.GetCellValue(sheet, "A12")
	assert.Equal(t, "Перерасход (к доплате)", label)
	val, _ := f.GetCellValue(sheet, "B12")
	assert.Equal(t, "800", val)
}

func TestRenderTemplate(t *testing.T) {
	// build a stand-in template on the fly
	dir := t.TempDir()
	tpl := excelize.NewFile()
	path := dir + "/ao.xlsx"
	require.NoError(t, tpl.SaveAs(path))
	require.NoError(t, tpl.Close())

	svc := NewService(common.ExportConfig{TemplatePath: path}, nil)
	out, err := svc.RenderAdvanceReport(testData())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	date, _ := f.GetCellValue(sheet, "Z13")
	assert.Equal(t, "3.6.25", date)

	label, _ := f.GetCellValue(sheet, "B63")
	assert.Equal(t, "Такси", label)
	amount, _ := f.GetCellValue(sheet, "P63")
	assert.Equal(t, "300", amount)
	dup, _ := f.GetCellValue(sheet, "Y63")
	assert.Equal(t, "300", dup)

	perDiemLabel, _ := f.GetCellValue(sheet, "B65")
	assert.Equal(t, "Суточные", perDiemLabel)
}
