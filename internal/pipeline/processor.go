// Package pipeline coordinates receipt-field extraction: QR decode
// first, fiscal parse, then the text/OCR fallback.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/pvolkova/trip-tracker/constants"
	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/extract"
	"github.com/pvolkova/trip-tracker/internal/qr"
)

// Result is what extraction recovered from one file. Warnings mirror
// the reconciliation codes so callers can surface them directly.
type Result struct {
	Fields   extract.Fields
	HasQR    bool
	RawQR    *string
	Warnings []string
}

// Processor runs the extraction cascade for a single receipt file.
// Every failure inside the cascade degrades to "no data"; only an
// unreadable file is an error.
type Processor struct {
	decoder   *qr.Decoder
	fallback  *extract.FallbackExtractor
	amountMin float64
	amountMax float64
	logger    *slog.Logger
}

func NewProcessor(decoder *qr.Decoder, fallback *extract.FallbackExtractor,
	amountMin, amountMax float64, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if amountMax <= amountMin {
		amountMin, amountMax = 0, 200000
	}
	return &Processor{
		decoder:   decoder,
		fallback:  fallback,
		amountMin: amountMin,
		amountMax: amountMax,
		logger:    logger,
	}
}

// ProcessFile extracts fields from a receipt file on disk.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	res := &Result{}

	payload, found, err := p.decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if found {
		fiscal, err := qr.ParseFiscal(payload)
		if err == nil {
			res.HasQR = true
			res.RawQR = &fiscal.Raw
			res.Fields = extract.Fields{
				Date:   &fiscal.Date,
				Amount: &fiscal.Amount,
				FN:     &fiscal.FN,
				FD:     &fiscal.FD,
				FP:     &fiscal.FP,
			}
			p.validateAmount(res)
			p.logger.Info("extracted via qr", "path", path)
			return res, nil
		}
		if !errors.Is(err, qr.ErrNotFiscal) {
			return nil, err
		}
		p.logger.Debug("qr payload not fiscal, falling back to text", "path", path)
	}

	fields, err := p.extractText(ctx, path)
	if err != nil {
		return nil, err
	}
	if fields != nil {
		res.Fields = *fields
	}
	p.validateAmount(res)

	if res.Fields.Amount == nil {
		res.Warnings = append(res.Warnings, common.WarnAmountMissing)
		p.logger.Info("extraction found no amount", "path", path)
	} else {
		p.logger.Info("extracted via text", "path", path)
	}
	return res, nil
}

func (p *Processor) extractText(ctx context.Context, path string) (*extract.Fields, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return p.fallback.FromPDF(ctx, path)
	default:
		return p.fallback.FromImage(ctx, path)
	}
}

// validateAmount nulls amounts outside the configured sanity range.
func (p *Processor) validateAmount(res *Result) {
	if res.Fields.Amount == nil {
		return
	}
	if a := *res.Fields.Amount; a < p.amountMin || a > p.amountMax {
		p.logger.Warn("amount out of range, dropped", "amount", a)
		res.Fields.Amount = nil
		res.Warnings = append(res.Warnings, common.WarnAmountOutOfRange)
	}
}
