package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/libs/db"
)

const appointmentColumns = `
	id, service, professional, date, time, client_name,
	COALESCE(contact_email, ''), COALESCE(contact_phone, ''),
	status, COALESCE(notes, ''), reminder_sent_at, created_at`

// Querier is the query surface shared by the pool and an open transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AppointmentRepository struct {
	pool *db.Pool
	q    Querier
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, q: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// WithTx returns a view of the repository whose queries run on q instead of
// the pool, so availability reads and the insert can share one transaction.
func (r *AppointmentRepository) WithTx(q Querier) *AppointmentRepository {
	return &AppointmentRepository{pool: r.pool, q: q}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return r.q.QueryRow(ctx, `
		INSERT INTO appointments (service, professional, date, time, client_name, contact_email, contact_phone, status, notes)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''))
		RETURNING id, created_at
	`, appt.Service, appt.Professional, appt.Date, appt.Time, appt.ClientName,
		appt.ContactEmail, appt.ContactPhone, appt.Status, appt.Notes,
	).Scan(&appt.ID, &appt.CreatedAt)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (model.Appointment, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *AppointmentRepository) ListAll(ctx context.Context) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListActiveBySlot returns pending/confirmed appointments at an exact
// (date, time) slot, across all professionals.
func (r *AppointmentRepository) ListActiveBySlot(ctx context.Context, date, timeOfDay string) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1 AND time = $2 AND status IN ('pending', 'confirmed')
	`, date, timeOfDay)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListActiveByEmailAndDate(ctx context.Context, email, date string) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE contact_email = $1 AND date = $2 AND status IN ('pending', 'confirmed')
	`, email, date)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListReminderCandidates returns active appointments on or after fromDate
// that have not been reminded yet. Dates are ISO strings, so the string
// comparison is chronological.
func (r *AppointmentRepository) ListReminderCandidates(ctx context.Context, fromDate string) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status IN ('pending', 'confirmed')
			AND date >= $1
			AND reminder_sent_at IS NULL
		ORDER BY date, time
	`, fromDate)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListByProfessional(ctx context.Context, professional string) ([]model.Appointment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE professional = $1
		ORDER BY date DESC, time DESC
	`, professional)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// HasFutureActive reports whether a professional (matched by stored name)
// still has pending/confirmed appointments on or after fromDate.
func (r *AppointmentRepository) HasFutureActive(ctx context.Context, professional, fromDate string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE professional = $1 AND date >= $2 AND status IN ('pending', 'confirmed')
		)
	`, professional, fromDate).Scan(&exists)
	return exists, err
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id, status string) (model.Appointment, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status)
	return scanAppointment(row)
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, id string) (model.Appointment, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanAppointment(row)
}

// MarkReminderSent records a successful reminder delivery: the timestamp that
// removes the appointment from future sweeps, plus the free-text audit note.
func (r *AppointmentRepository) MarkReminderSent(ctx context.Context, id string, sentAt time.Time, note string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE appointments
		SET reminder_sent_at = $2, notes = $3
		WHERE id = $1
	`, id, sentAt, note)
	return err
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var reminderSentAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.Service,
		&appt.Professional,
		&appt.Date,
		&appt.Time,
		&appt.ClientName,
		&appt.ContactEmail,
		&appt.ContactPhone,
		&appt.Status,
		&appt.Notes,
		&reminderSentAt,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.ReminderSentAt = reminderSentAt
	return appt, nil
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
