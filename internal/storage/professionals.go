package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/libs/db"
)

const professionalColumns = `
	id, name, COALESCE(specialty, ''), COALESCE(photo, ''), active, created_at`

type ProfessionalRepository struct {
	pool *db.Pool
}

func NewProfessionalRepository(pool *db.Pool) *ProfessionalRepository {
	return &ProfessionalRepository{pool: pool}
}

// ProfessionalStats is the roster summary exposed to admins.
type ProfessionalStats struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	Inactive      int `json:"inactive"`
	WithSpecialty int `json:"with_specialty"`
	ActiveRate    int `json:"active_rate"`
}

func (r *ProfessionalRepository) Create(ctx context.Context, p *model.Professional) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO professionals (name, specialty, photo, active)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
		RETURNING id, created_at
	`, p.Name, p.Specialty, p.Photo, p.Active).Scan(&p.ID, &p.CreatedAt)
}

func (r *ProfessionalRepository) GetByID(ctx context.Context, id string) (model.Professional, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+professionalColumns+`
		FROM professionals
		WHERE id = $1
	`, id)
	return scanProfessional(row)
}

// GetByNameInsensitive finds a professional by case-insensitive name match,
// optionally excluding one id (used when renaming).
func (r *ProfessionalRepository) GetByNameInsensitive(ctx context.Context, name, excludeID string) (model.Professional, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+professionalColumns+`
		FROM professionals
		WHERE lower(name) = lower($1) AND id::text <> $2
	`, name, excludeID)
	return scanProfessional(row)
}

func (r *ProfessionalRepository) ListActive(ctx context.Context) ([]model.Professional, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+professionalColumns+`
		FROM professionals
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return collectProfessionals(rows)
}

func (r *ProfessionalRepository) ListAll(ctx context.Context) ([]model.Professional, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+professionalColumns+`
		FROM professionals
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return collectProfessionals(rows)
}

func (r *ProfessionalRepository) Update(ctx context.Context, id string, name, specialty, photo *string) (model.Professional, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE professionals
		SET name = COALESCE($2, name),
			specialty = CASE WHEN $3::boolean THEN NULLIF($4, '') ELSE specialty END,
			photo = CASE WHEN $5::boolean THEN NULLIF($6, '') ELSE photo END
		WHERE id = $1
		RETURNING `+professionalColumns+`
	`, id, name, specialty != nil, deref(specialty), photo != nil, deref(photo))
	return scanProfessional(row)
}

// ToggleActive flips the visibility flag and returns the new state.
func (r *ProfessionalRepository) ToggleActive(ctx context.Context, id string) (model.Professional, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE professionals
		SET active = NOT active
		WHERE id = $1
		RETURNING `+professionalColumns+`
	`, id)
	return scanProfessional(row)
}

func (r *ProfessionalRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM professionals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ProfessionalRepository) Stats(ctx context.Context) (ProfessionalStats, error) {
	var s ProfessionalStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE active),
			COUNT(*) FILTER (WHERE NOT active),
			COUNT(specialty)
		FROM professionals
	`).Scan(&s.Total, &s.Active, &s.Inactive, &s.WithSpecialty)
	if err != nil {
		return ProfessionalStats{}, err
	}
	if s.Total > 0 {
		s.ActiveRate = (s.Active*100 + s.Total/2) / s.Total
	}
	return s, nil
}

func scanProfessional(row pgx.Row) (model.Professional, error) {
	var p model.Professional
	err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.Photo, &p.Active, &p.CreatedAt)
	if err != nil {
		return model.Professional{}, err
	}
	return p, nil
}

func collectProfessionals(rows pgx.Rows) ([]model.Professional, error) {
	defer rows.Close()

	var out []model.Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
