package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pvolkova/trip-tracker/internal/common"
	"github.com/pvolkova/trip-tracker/internal/entity"
)

type ReceiptRepository interface {
	Create(ctx context.Context, rec *entity.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]*entity.Receipt, error)
	// UpdateExtracted writes machine-extracted fields back, skipping
	// receipts the user has corrected by hand.
	UpdateExtracted(ctx context.Context, rec *entity.Receipt) error
	// UpdateManual overwrites fields with user-entered values and
	// pins the receipt against future automatic refills.
	UpdateManual(ctx context.Context, rec *entity.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) (string, error)
}

type receiptRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReceiptRepository(pool *pgxpool.Pool, logger *slog.Logger) ReceiptRepository {
	return &receiptRepository{pool: pool, logger: logger}
}

const receiptColumns = `id, trip_id, file_path, file_name, category, document_type,
	amount, receipt_date, org_name, fn, fd, fp, raw_qr, has_qr, is_manual,
	created_at, updated_at`

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rec entity.Receipt
	err := row.Scan(&rec.ID, &rec.TripID, &rec.FilePath, &rec.FileName,
		&rec.Category, &rec.DocumentType, &rec.Amount, &rec.ReceiptDate,
		&rec.OrgName, &rec.FN, &rec.FD, &rec.FP, &rec.RawQR,
		&rec.HasQR, &rec.IsManual, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *receiptRepository) Create(ctx context.Context, rec *entity.Receipt) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO receipts (id, trip_id, file_path, file_name, category, document_type,
			amount, receipt_date, org_name, fn, fd, fp, raw_qr, has_qr, is_manual)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.TripID, rec.FilePath, rec.FileName, rec.Category, rec.DocumentType,
		rec.Amount, rec.ReceiptDate, rec.OrgName, rec.FN, rec.FD, rec.FP,
		rec.RawQR, rec.HasQR, rec.IsManual)
	if err != nil {
		r.logger.Error("failed to create receipt", "trip_id", rec.TripID, "file", rec.FileName, "error", err)
		return common.WrapError(err, "create receipt")
	}
	return nil
}

func (r *receiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	rec, err := scanReceipt(r.pool.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get receipt", "receipt_id", id, "error", err)
		return nil, common.WrapError(err, "get receipt")
	}
	return rec, nil
}

func (r *receiptRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]*entity.Receipt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE trip_id = $1 ORDER BY created_at`, tripID)
	if err != nil {
		r.logger.Error("failed to list receipts", "trip_id", tripID, "error", err)
		return nil, common.WrapError(err, "list receipts")
	}
	defer rows.Close()

	var out []*entity.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan receipt")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *receiptRepository) UpdateExtracted(ctx context.Context, rec *entity.Receipt) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipts
		SET amount = $2, receipt_date = $3, org_name = $4,
		    fn = $5, fd = $6, fp = $7, raw_qr = $8, has_qr = $9,
		    updated_at = now()
		WHERE id = $1 AND is_manual = FALSE`,
		rec.ID, rec.Amount, rec.ReceiptDate, rec.OrgName,
		rec.FN, rec.FD, rec.FP, rec.RawQR, rec.HasQR)
	if err != nil {
		r.logger.Error("failed to update receipt", "receipt_id", rec.ID, "error", err)
		return common.WrapError(err, "update receipt")
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("receipt not updated, manual or missing", "receipt_id", rec.ID)
	}
	return nil
}

func (r *receiptRepository) UpdateManual(ctx context.Context, rec *entity.Receipt) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipts
		SET category = $2, document_type = $3, amount = $4, receipt_date = $5,
		    org_name = $6, is_manual = TRUE, updated_at = now()
		WHERE id = $1`,
		rec.ID, rec.Category, rec.DocumentType, rec.Amount, rec.ReceiptDate, rec.OrgName)
	if err != nil {
		r.logger.Error("failed to update receipt manually", "receipt_id", rec.ID, "error", err)
		return common.WrapError(err, "update receipt")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	rec.IsManual = true
	return nil
}

func (r *receiptRepository) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	var path string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM receipts WHERE id = $1 RETURNING file_path`, id).Scan(&path)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to delete receipt", "receipt_id", id, "error", err)
		return "", common.WrapError(err, "delete receipt")
	}
	return path, nil
}
