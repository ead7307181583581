package qr

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/liyue201/goqr"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	_ "golang.org/x/image/bmp" // register BMP decoder

	"github.com/pvolkova/trip-tracker/constants"
)

// DecoderConfig holds QR-decoding knobs.
type DecoderConfig struct {
	DPI      int // rasterization DPI for PDF pages; default 288 (4x zoom)
	MaxPages int // 0 = no limit
}

// Decoder recovers a raw QR payload from a receipt image or a rendered PDF
// page. It walks an ordered list of image variants and, for each, tries two
// independent decoders, returning on the first hit. A miss is not an error:
// it signals "fall through to text extraction".
type Decoder struct {
	cfg    DecoderConfig
	logger *slog.Logger
}

func NewDecoder(cfg DecoderConfig, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DPI < 288 {
		cfg.DPI = 288
	}
	return &Decoder{cfg: cfg, logger: logger}
}

// DecodeFile picks a strategy based on file extension. The boolean reports
// whether a payload was found; err is reserved for unreadable files.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (string, bool, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return d.decodePDF(ctx, path)
	case constants.IMAGE:
		f, err := os.Open(path)
		if err != nil {
			return "", false, fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return "", false, fmt.Errorf("decode image: %w", err)
		}
		payload, ok := d.DecodeImage(img)
		return payload, ok, nil
	default:
		return "", false, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// DecodeImage runs the variant cascade over a single image.
func (d *Decoder) DecodeImage(img image.Image) (string, bool) {
	if payload, ok := decodeSymbols(img); ok {
		d.logger.Debug("qr decoded", "variant", "original")
		return payload, true
	}
	gray := grayscale(img)
	for _, v := range grayVariants {
		if payload, ok := decodeSymbols(v.fn(gray)); ok {
			d.logger.Debug("qr decoded", "variant", v.name)
			return payload, true
		}
	}
	return "", false
}

// decodePDF renders pages at high resolution and runs the cascade per page
// until one yields a payload.
func (d *Decoder) decodePDF(ctx context.Context, path string) (string, bool, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", false, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if d.cfg.MaxPages > 0 && pages > d.cfg.MaxPages {
		pages = d.cfg.MaxPages
	}
	for n := 0; n < pages; n++ {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		img, err := doc.ImageDPI(n, float64(d.cfg.DPI))
		if err != nil {
			d.logger.Warn("pdf page render failed", "path", path, "page", n, "error", err)
			continue
		}
		if payload, ok := d.DecodeImage(img); ok {
			d.logger.Debug("qr decoded from pdf", "path", path, "page", n)
			return payload, true, nil
		}
	}
	return "", false, nil
}

// decodeSymbols tries the general QR detector first, then the symbol
// decoder. No cross-validation is done between the two.
func decodeSymbols(img image.Image) (string, bool) {
	if payload, ok := decodeZXing(img); ok {
		return payload, true
	}
	return decodeGoQR(img)
}

func decodeZXing(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}

func decodeGoQR(img image.Image) (string, bool) {
	codes, err := goqr.Recognize(img)
	if err != nil || len(codes) == 0 {
		return "", false
	}
	return string(codes[0].Payload), true
}
