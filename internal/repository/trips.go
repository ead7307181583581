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

type TripRepository interface {
	Create(ctx context.Context, t *entity.Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*entity.Trip, error)
	Update(ctx context.Context, t *entity.Trip) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	// Delete removes the trip and its receipts, returning the file
	// paths of the deleted receipts so the caller can unlink them.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type tripRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewTripRepository(pool *pgxpool.Pool, logger *slog.Logger) TripRepository {
	return &tripRepository{pool: pool, logger: logger}
}

const tripColumns = `id, profile_id, destination_city, destination_org, date_from, date_to,
	departure_time, arrival_time, purpose, meals_breakfast, meals_lunch, meals_dinner,
	advance_rub, status, created_at, updated_at`

func scanTrip(row pgx.Row) (*entity.Trip, error) {
	var t entity.Trip
	err := row.Scan(&t.ID, &t.ProfileID, &t.DestinationCity, &t.DestinationOrg,
		&t.DateFrom, &t.DateTo, &t.DepartureTime, &t.ArrivalTime, &t.Purpose,
		&t.MealsBreakfast, &t.MealsLunch, &t.MealsDinner,
		&t.AdvanceRub, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tripRepository) Create(ctx context.Context, t *entity.Trip) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = "draft"
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trips (id, profile_id, destination_city, destination_org,
			date_from, date_to, departure_time, arrival_time, purpose,
			meals_breakfast, meals_lunch, meals_dinner, advance_rub, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.ProfileID, t.DestinationCity, t.DestinationOrg,
		t.DateFrom, t.DateTo, t.DepartureTime, t.ArrivalTime, t.Purpose,
		t.MealsBreakfast, t.MealsLunch, t.MealsDinner, t.AdvanceRub, t.Status)
	if err != nil {
		r.logger.Error("failed to create trip", "profile_id", t.ProfileID, "error", err)
		return common.WrapError(err, "create trip")
	}
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Trip, error) {
	t, err := scanTrip(r.pool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get trip", "trip_id", id, "error", err)
		return nil, common.WrapError(err, "get trip")
	}
	return t, nil
}

func (r *tripRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*entity.Trip, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE profile_id = $1 ORDER BY date_from DESC`, profileID)
	if err != nil {
		r.logger.Error("failed to list trips", "profile_id", profileID, "error", err)
		return nil, common.WrapError(err, "list trips")
	}
	defer rows.Close()

	var out []*entity.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan trip")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tripRepository) Update(ctx context.Context, t *entity.Trip) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE trips
		SET destination_city = $2, destination_org = $3, date_from = $4, date_to = $5,
		    departure_time = $6, arrival_time = $7, purpose = $8,
		    meals_breakfast = $9, meals_lunch = $10, meals_dinner = $11,
		    advance_rub = $12, status = $13, updated_at = now()
		WHERE id = $1`,
		t.ID, t.DestinationCity, t.DestinationOrg, t.DateFrom, t.DateTo,
		t.DepartureTime, t.ArrivalTime, t.Purpose,
		t.MealsBreakfast, t.MealsLunch, t.MealsDinner, t.AdvanceRub, t.Status)
	if err != nil {
		r.logger.Error("failed to update trip", "trip_id", t.ID, "error", err)
		return common.WrapError(err, "update trip")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *tripRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE trips SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Error("failed to set trip status", "trip_id", id, "error", err)
		return common.WrapError(err, "set trip status")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *tripRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, common.WrapError(err, "begin delete trip")
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT file_path FROM receipts WHERE trip_id = $1`, id)
	if err != nil {
		return nil, common.WrapError(err, "list trip files")
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, common.WrapError(err, "scan file path")
		}
		paths = append(paths, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "list trip files")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete trip", "trip_id", id, "error", err)
		return nil, common.WrapError(err, "delete trip")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.WrapError(err, "commit delete trip")
	}

	r.logger.Info("trip deleted", "trip_id", id, "receipt_files", len(paths))
	return paths, nil
}
