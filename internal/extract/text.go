package extract

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/pvolkova/trip-tracker/internal/ocr"
)

var (
	// DD.MM.YYYY followed by HH:MM, comma or whitespace between
	reDateTime = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})[,\s]+(\d{2}:\d{2})`)

	reFN = regexp.MustCompile(`(?i)(?:№\s*)?ФН\s*[:№#]?\s*(\d+)`)
	reFD = regexp.MustCompile(`(?i)(?:№\s*)?ФД\s*[:№#]?\s*(\d+)`)
	reFP = regexp.MustCompile(`(?i)(?:№\s*)?ФП[ДМ]?\s*[:№#]?\s*(\d+)`)
)

// FallbackExtractor recovers receipt fields from text when QR decoding
// came up empty. PDFs are read through their text layer first; OCR is
// the second resort, and the only option for images.
type FallbackExtractor struct {
	recognizer ocr.TextRecognizer
	dpi        int
	logger     *slog.Logger
}

func NewFallbackExtractor(recognizer ocr.TextRecognizer, dpi int, logger *slog.Logger) *FallbackExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if dpi <= 0 {
		dpi = 216
	}
	return &FallbackExtractor{recognizer: recognizer, dpi: dpi, logger: logger}
}

// FromPDF extracts fields from a PDF's text layer, falling back to OCR
// of the first page when the layer is empty or yields neither a date
// nor an amount. Returns nil when nothing at all was found.
func (e *FallbackExtractor) FromPDF(ctx context.Context, path string) (*Fields, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageText, err := doc.Text(n)
		if err != nil {
			e.logger.Warn("pdf text layer read failed", "path", path, "page", n, "error", err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	text := sb.String()

	ocrTried := false
	if strings.TrimSpace(text) == "" {
		text = e.ocrPDFPage(ctx, doc, path)
		ocrTried = true
	}

	fields := parseText(text)
	if fields.Date == nil && fields.Amount == nil && !ocrTried {
		// scanned PDFs sometimes carry a junk text layer; give OCR a
		// chance on the concatenated text before giving up
		if ocrText := e.ocrPDFPage(ctx, doc, path); ocrText != "" {
			fields = parseText(text + "\n" + ocrText)
		}
	}

	if fields.Empty() {
		return nil, nil
	}
	return fields, nil
}

// FromImage runs OCR over an image file and extracts fields from the
// result. Returns nil when nothing was found. OCR failures of any
// kind degrade to "no data": unreadable receipts are expected and
// must never abort a batch.
func (e *FallbackExtractor) FromImage(ctx context.Context, path string) (*Fields, error) {
	text, err := e.recognizer.Recognize(ctx, path)
	if err != nil {
		e.logger.Warn("ocr failed, skipping text extraction", "path", path, "error", err)
		return nil, nil
	}

	fields := parseText(text)
	if fields.Empty() {
		return nil, nil
	}
	return fields, nil
}

// ocrPDFPage renders the first page and feeds it to the recognizer.
// OCR failures degrade to empty text.
func (e *FallbackExtractor) ocrPDFPage(ctx context.Context, doc *fitz.Document, path string) string {
	if doc.NumPage() == 0 {
		return ""
	}
	img, err := doc.ImageDPI(0, float64(e.dpi))
	if err != nil {
		e.logger.Warn("pdf page render failed", "path", path, "error", err)
		return ""
	}

	tmp, err := os.CreateTemp("", "trip-ocr-*.png")
	if err != nil {
		e.logger.Warn("temp file for ocr failed", "error", err)
		return ""
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		e.logger.Warn("page encode failed", "path", path, "error", err)
		return ""
	}
	tmp.Close()

	text, err := e.recognizer.Recognize(ctx, tmp.Name())
	if err != nil {
		e.logger.Warn("ocr failed", "path", path, "error", err)
		return ""
	}
	return text
}

// parseText pulls date, amount, and fiscal ids out of raw receipt text.
func parseText(text string) *Fields {
	fields := &Fields{Amount: FindAmount(text)}

	if m := reDateTime.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("02.01.2006 15:04", m[1]+" "+m[2]); err == nil {
			fields.Date = &d
		}
	}

	normalized := NormalizeText(text)
	for _, id := range []struct {
		re  *regexp.Regexp
		dst **string
	}{
		{reFN, &fields.FN},
		{reFD, &fields.FD},
		{reFP, &fields.FP},
	} {
		if m := id.re.FindStringSubmatch(normalized); m != nil {
			*id.dst = &m[1]
		}
	}
	return fields
}
