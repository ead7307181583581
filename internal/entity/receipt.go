package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/pvolkova/trip-tracker/constants"
)

// Receipt represents one uploaded expense document for data transfer
// between layers.
type Receipt struct {
	ID           uuid.UUID              `json:"id"`
	TripID       uuid.UUID              `json:"trip_id"`
	FilePath     string                 `json:"file_path"`
	FileName     string                 `json:"file_name"`
	Category     string                 `json:"category"`
	DocumentType constants.DocumentType `json:"document_type"`
	Amount       *float64               `json:"amount,omitempty"`
	ReceiptDate  *time.Time             `json:"receipt_date,omitempty"`
	OrgName      *string                `json:"org_name,omitempty"`
	FN           *string                `json:"fn,omitempty"`
	FD           *string                `json:"fd,omitempty"`
	FP           *string                `json:"fp,omitempty"`
	RawQR        *string                `json:"raw_qr,omitempty"`
	HasQR        bool                   `json:"has_qr"`
	IsManual     bool                   `json:"is_manual"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// RequiresAmount reports whether this document must carry an amount to be
// reconciled. Boarding passes and confirmations are exempt.
func (r *Receipt) RequiresAmount() bool {
	return r.DocumentType.RequiresAmount()
}
