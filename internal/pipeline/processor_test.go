package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/entity"
	"github.com/pvolkova/trip-tracker/internal/extract"
	"github.com/pvolkova/trip-tracker/internal/qr"
)

type stubRecognizer struct {
	text string
	err  error
}

func (s *stubRecognizer) Warmup(context.Context) error { return s.err }

func (s *stubRecognizer) Recognize(context.Context, string) (string, error) {
	return s.text, s.err
}

func writeQRPNG(t *testing.T, dir, name, content string) string {
	t.Helper()
	matrix, err := zxqr.NewQRCodeWriter().Encode(
		content, gozxing.BarcodeFormat_QR_CODE, 256, 256, nil)
	require.NoError(t, err)

	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return writePNG(t, dir, name, img)
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func blankPNG(t *testing.T, dir, name string) string {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return writePNG(t, dir, name, img)
}

func newTestProcessor(rec *stubRecognizer) *Processor {
	return NewProcessor(
		qr.NewDecoder(qr.DecoderConfig{}, nil),
		extract.NewFallbackExtractor(rec, 216, nil),
		0, 200000, nil)
}

func TestProcessFileFiscalQR(t *testing.T) {
	dir := t.TempDir()
	path := writeQRPNG(t, dir, "fiscal.png",
		"t=20250615T1430&s=1234.50&fn=123&i=456&fp=789&n=1")

	p := newTestProcessor(&stubRecognizer{})
	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, res.HasQR)
	require.NotNil(t, res.Fields.Amount)
	assert.Equal(t, 1234.50, *res.Fields.Amount)
	require.NotNil(t, res.Fields.FN)
	assert.Equal(t, "123", *res.Fields.FN)
	assert.Empty(t, res.Warnings)
}

func TestProcessFileNonFiscalQRFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeQRPNG(t, dir, "url.png", "https://example.com/pay?id=42")

	p := newTestProcessor(&stubRecognizer{text: "01.03.2024, 09:15\nИтого: 560.00"})
	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, res.HasQR)
	require.NotNil(t, res.Fields.Amount)
	assert.Equal(t, 560.00, *res.Fields.Amount)
	require.NotNil(t, res.Fields.Date)
}

func TestProcessFileTextFallback(t *testing.T) {
	dir := t.TempDir()
	path := blankPNG(t, dir, "scan.png")

	p := newTestProcessor(&stubRecognizer{text: "Сумма: 432.10"})
	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.False(t, res.HasQR)
	require.NotNil(t, res.Fields.Amount)
	assert.Equal(t, 432.10, *res.Fields.Amount)
}

func TestProcessFileAmountOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := blankPNG(t, dir, "big.png")

	p := newTestProcessor(&stubRecognizer{text: "Итого: 250000.00"})
	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Nil(t, res.Fields.Amount)
	assert.Contains(t, res.Warnings, common.WarnAmountOutOfRange)
}

func TestProcessFileNothingFound(t *testing.T) {
	dir := t.TempDir()
	path := blankPNG(t, dir, "empty.png")

	p := newTestProcessor(&stubRecognizer{text: ""})
	res, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Nil(t, res.Fields.Amount)
	assert.Contains(t, res.Warnings, common.WarnAmountMissing)
}

func TestFillMissing(t *testing.T) {
	dir := t.TempDir()
	writeQRPNG(t, dir, "fiscal.png",
		"t=20250615T1430&s=1500&fn=1&i=2&fp=3&n=4")
	blankPNG(t, dir, "blank.png")

	done := 300.0
	receipts := []*entity.Receipt{
		{FilePath: "fiscal.png"},
		{FilePath: "blank.png", IsManual: true},
		{FilePath: "blank.png", Amount: &done},
	}

	p := newTestProcessor(&stubRecognizer{})
	changed, err := p.FillMissing(context.Background(), receipts, dir)
	require.NoError(t, err)

	require.Len(t, changed, 1)
	assert.Same(t, receipts[0], changed[0])
	assert.True(t, receipts[0].HasQR)
	require.NotNil(t, receipts[0].Amount)
	assert.Equal(t, 1500.0, *receipts[0].Amount)
	// manual and already-filled receipts stay untouched
	assert.False(t, receipts[1].HasQR)
	assert.Equal(t, 300.0, *receipts[2].Amount)
}
