package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/libs/db"
)

type RatingRepository struct {
	pool *db.Pool
}

func NewRatingRepository(pool *db.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// RatedAppointment pairs a rating with a summary of the appointment it
// belongs to, for listings.
type RatedAppointment struct {
	Rating      model.Rating
	Appointment model.Appointment
}

// RatingStats is the aggregate view exposed to admins.
type RatingStats struct {
	Total        int         `json:"total"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
	WithComment  int         `json:"with_comment"`
	CommentRate  int         `json:"comment_rate"`
}

func (r *RatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO ratings (appointment_id, score, comment)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at
	`, rating.AppointmentID, rating.Score, rating.Comment).Scan(&rating.ID, &rating.CreatedAt)
}

func (r *RatingRepository) GetByID(ctx context.Context, id string) (model.Rating, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, appointment_id, score, COALESCE(comment, ''), created_at
		FROM ratings
		WHERE id = $1
	`, id)
	return scanRating(row)
}

func (r *RatingRepository) GetByAppointment(ctx context.Context, appointmentID string) (model.Rating, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, appointment_id, score, COALESCE(comment, ''), created_at
		FROM ratings
		WHERE appointment_id = $1
	`, appointmentID)
	return scanRating(row)
}

func (r *RatingRepository) ExistsForAppointment(ctx context.Context, appointmentID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ratings WHERE appointment_id = $1)
	`, appointmentID).Scan(&exists)
	return exists, err
}

func (r *RatingRepository) ListByOwnerEmail(ctx context.Context, email string) ([]RatedAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.appointment_id, r.score, COALESCE(r.comment, ''), r.created_at,
			`+prefixedAppointmentColumns("a")+`
		FROM ratings r
		JOIN appointments a ON a.id = r.appointment_id
		WHERE a.contact_email = $1
		ORDER BY r.created_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	return collectRatedAppointments(rows)
}

func (r *RatingRepository) ListAll(ctx context.Context) ([]RatedAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.appointment_id, r.score, COALESCE(r.comment, ''), r.created_at,
			`+prefixedAppointmentColumns("a")+`
		FROM ratings r
		JOIN appointments a ON a.id = r.appointment_id
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectRatedAppointments(rows)
}

func (r *RatingRepository) Update(ctx context.Context, id string, score *int, comment *string) (model.Rating, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE ratings
		SET score = COALESCE($2, score),
			comment = CASE WHEN $3::boolean THEN NULLIF($4, '') ELSE comment END
		WHERE id = $1
		RETURNING id, appointment_id, score, COALESCE(comment, ''), created_at
	`, id, score, comment != nil, deref(comment))
	return scanRating(row)
}

func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RatingRepository) Stats(ctx context.Context) (RatingStats, error) {
	stats := RatingStats{Distribution: map[int]int{}}

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(ROUND(AVG(score) * 10) / 10, 0),
			COUNT(comment)
		FROM ratings
	`).Scan(&stats.Total, &stats.Average, &stats.WithComment)
	if err != nil {
		return RatingStats{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT score, COUNT(*) FROM ratings GROUP BY score
	`)
	if err != nil {
		return RatingStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return RatingStats{}, err
		}
		stats.Distribution[score] = count
	}
	if rows.Err() != nil {
		return RatingStats{}, rows.Err()
	}

	if stats.Total > 0 {
		stats.CommentRate = (stats.WithComment*100 + stats.Total/2) / stats.Total
	}
	return stats, nil
}

func scanRating(row pgx.Row) (model.Rating, error) {
	var rating model.Rating
	err := row.Scan(&rating.ID, &rating.AppointmentID, &rating.Score, &rating.Comment, &rating.CreatedAt)
	if err != nil {
		return model.Rating{}, err
	}
	return rating, nil
}

func collectRatedAppointments(rows pgx.Rows) ([]RatedAppointment, error) {
	defer rows.Close()

	var out []RatedAppointment
	for rows.Next() {
		var item RatedAppointment
		err := rows.Scan(
			&item.Rating.ID,
			&item.Rating.AppointmentID,
			&item.Rating.Score,
			&item.Rating.Comment,
			&item.Rating.CreatedAt,
			&item.Appointment.ID,
			&item.Appointment.Service,
			&item.Appointment.Professional,
			&item.Appointment.Date,
			&item.Appointment.Time,
			&item.Appointment.ClientName,
			&item.Appointment.ContactEmail,
			&item.Appointment.ContactPhone,
			&item.Appointment.Status,
			&item.Appointment.Notes,
			&item.Appointment.ReminderSentAt,
			&item.Appointment.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func prefixedAppointmentColumns(alias string) string {
	return alias + `.id, ` + alias + `.service, ` + alias + `.professional, ` +
		alias + `.date, ` + alias + `.time, ` + alias + `.client_name, ` +
		`COALESCE(` + alias + `.contact_email, ''), COALESCE(` + alias + `.contact_phone, ''), ` +
		alias + `.status, COALESCE(` + alias + `.notes, ''), ` +
		alias + `.reminder_sent_at, ` + alias + `.created_at`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
