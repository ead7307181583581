package pipeline

import (
	"context"
	"path/filepath"

	"github.com/pvolkova/trip-tracker/internal/entity"
)

// FillMissing re-runs extraction for receipts that still lack an
// amount. Manually corrected receipts are never touched. Returns the
// receipts whose fields changed; persisting them is the caller's job.
func (p *Processor) FillMissing(ctx context.Context, receipts []*entity.Receipt, baseDir string) ([]*entity.Receipt, error) {
	var changed []*entity.Receipt
	for _, r := range receipts {
		if r.IsManual || r.Amount != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		path := r.FilePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		res, err := p.ProcessFile(ctx, path)
		if err != nil {
			p.logger.Warn("refill failed", "receipt_id", r.ID, "path", path, "error", err)
			continue
		}
		if !apply(r, res) {
			continue
		}
		changed = append(changed, r)
	}
	return changed, nil
}

// apply copies extracted fields onto the receipt, filling gaps only.
func apply(r *entity.Receipt, res *Result) bool {
	dirty := false
	if res.HasQR && !r.HasQR {
		r.HasQR = true
		r.RawQR = res.RawQR
		dirty = true
	}
	if r.Amount == nil && res.Fields.Amount != nil {
		r.Amount = res.Fields.Amount
		dirty = true
	}
	if r.ReceiptDate == nil && res.Fields.Date != nil {
		r.ReceiptDate = res.Fields.Date
		dirty = true
	}
	if r.FN == nil && res.Fields.FN != nil {
		r.FN = res.Fields.FN
		dirty = true
	}
	if r.FD == nil && res.Fields.FD != nil {
		r.FD = res.Fields.FD
		dirty = true
	}
	if r.FP == nil && res.Fields.FP != nil {
		r.FP = res.Fields.FP
		dirty = true
	}
	return dirty
}
