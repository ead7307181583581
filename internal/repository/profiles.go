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

type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
}

type profileRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewProfileRepository(pool *pgxpool.Pool, logger *slog.Logger) ProfileRepository {
	return &profileRepository{pool: pool, logger: logger}
}

const profileColumns = `id, fio, tab_no, department, position, org_name, per_diem_rate, created_at, updated_at`

func scanProfile(row pgx.Row) (*entity.Profile, error) {
	var p entity.Profile
	err := row.Scan(&p.ID, &p.FIO, &p.TabNo, &p.Department, &p.Position,
		&p.OrgName, &p.PerDiemRate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *entity.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, fio, tab_no, department, position, org_name, per_diem_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.FIO, p.TabNo, p.Department, p.Position, p.OrgName, p.PerDiemRate)
	if err != nil {
		r.logger.Error("failed to create profile", "fio", p.FIO, "error", err)
		return common.WrapError(err, "create profile")
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get profile", "profile_id", id, "error", err)
		return nil, common.WrapError(err, "get profile")
	}
	return p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]*entity.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at`)
	if err != nil {
		r.logger.Error("failed to list profiles", "error", err)
		return nil, common.WrapError(err, "list profiles")
	}
	defer rows.Close()

	var out []*entity.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan profile")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profileRepository) Update(ctx context.Context, p *entity.Profile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET fio = $2, tab_no = $3, department = $4, position = $5,
		    org_name = $6, per_diem_rate = $7, updated_at = now()
		WHERE id = $1`,
		p.ID, p.FIO, p.TabNo, p.Department, p.Position, p.OrgName, p.PerDiemRate)
	if err != nil {
		r.logger.Error("failed to update profile", "profile_id", p.ID, "error", err)
		return common.WrapError(err, "update profile")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
