package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a traveller profile for data transfer between layers.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	FIO         string    `json:"fio"`
	TabNo       string    `json:"tab_no"`
	Department  string    `json:"department"`
	Position    string    `json:"position"`
	OrgName     string    `json:"org_name"`
	PerDiemRate float64   `json:"per_diem_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
