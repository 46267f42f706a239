package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agendou/backend/internal/availability"
	"github.com/agendou/backend/internal/lifecycle"
	"github.com/agendou/backend/internal/mail"
	"github.com/agendou/backend/internal/model"
	"github.com/agendou/backend/internal/outbox"
	"github.com/agendou/backend/internal/reminder"
	"github.com/agendou/backend/internal/storage"
)

// ErrHasRating blocks deletion of appointments that already received a
// rating; the rating must go first.
var ErrHasRating = errors.New("appointment has a rating attached")

// ValidationError marks client input problems so handlers can answer 400
// instead of 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Service owns the appointment write path: creation with availability
// checks, cancellation, admin status changes, and deletion.
type Service struct {
	appts   *storage.AppointmentRepository
	ratings *storage.RatingRepository
	outbox  *outbox.Repository
	mailer  mail.Sender
	sweeper *reminder.Sweeper
	logger  *slog.Logger
}

func NewService(
	appts *storage.AppointmentRepository,
	ratings *storage.RatingRepository,
	outboxRepo *outbox.Repository,
	mailer mail.Sender,
	sweeper *reminder.Sweeper,
	logger *slog.Logger,
) *Service {
	return &Service{
		appts:   appts,
		ratings: ratings,
		outbox:  outboxRepo,
		mailer:  mailer,
		sweeper: sweeper,
		logger:  logger,
	}
}

type CreateInput struct {
	Service      string
	Professional string
	Date         string
	Time         string
	ClientName   string
	ContactEmail string
	ContactPhone string
	Notes        string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Appointment, error) {
	in.Service = strings.TrimSpace(in.Service)
	in.Professional = strings.TrimSpace(in.Professional)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)

	if err := validateCreate(in); err != nil {
		return model.Appointment{}, err
	}

	appt := model.Appointment{
		Service:      in.Service,
		Professional: in.Professional,
		Date:         in.Date,
		Time:         in.Time,
		ClientName:   in.ClientName,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Status:       model.StatusPending,
		Notes:        strings.TrimSpace(in.Notes),
	}

	tx, err := s.appts.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Availability reads share the insert's transaction; the partial unique
	// index below still backstops concurrent transactions.
	appts := s.appts.WithTx(tx)
	checker := availability.NewChecker(appts)
	if err := checker.Check(ctx, in.Date, in.Time, in.Professional, in.ContactEmail); err != nil {
		return model.Appointment{}, err
	}

	if err := appts.Create(ctx, &appt); err != nil {
		// The partial unique index on active (professional, date, time) rows
		// catches the race the pre-check cannot.
		if storage.IsUniqueViolation(err) {
			return model.Appointment{}, availability.ErrProfessionalBusy
		}
		return model.Appointment{}, err
	}
	if err := s.outbox.Insert(ctx, tx, outbox.AppointmentCreated(appt)); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}

	go s.notifyCreated(appt)

	return appt, nil
}

// notifyCreated sends the confirmation email and, when the appointment is
// already inside the reminder window, the reminder too. Both are best effort
// and run off the request path.
func (s *Service) notifyCreated(appt model.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !s.mailer.Configured() {
		return
	}
	if err := s.mailer.SendConfirmation(ctx, appt); err != nil {
		s.logger.Error("confirmation email failed", "appointment_id", appt.ID, "err", err)
	}
	if reminder.DueForReminder(appt.Date, appt.Time, time.Now()) {
		if err := s.sweeper.SendReminder(ctx, appt); err != nil {
			s.logger.Error("immediate reminder failed", "appointment_id", appt.ID, "err", err)
		}
	}
}

// Cancel marks an appointment cancelled on behalf of its owner, or of an
// admin overriding ownership.
func (s *Service) Cancel(ctx context.Context, id string, actor lifecycle.Actor) (model.Appointment, error) {
	tx, err := s.appts.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appts := s.appts.WithTx(tx)
	appt, err := appts.GetForUpdate(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := lifecycle.CanCancel(appt, actor); err != nil {
		return model.Appointment{}, err
	}

	appt, err = appts.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.outbox.Insert(ctx, tx, outbox.AppointmentCancelled(appt)); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// SetStatus is the admin-only direct status write.
func (s *Service) SetStatus(ctx context.Context, id, status string, actor lifecycle.Actor) (model.Appointment, error) {
	if err := lifecycle.CanSetStatus(status, actor); err != nil {
		return model.Appointment{}, err
	}

	tx, err := s.appts.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appts := s.appts.WithTx(tx)
	if _, err := appts.GetForUpdate(ctx, id); err != nil {
		return model.Appointment{}, err
	}
	appt, err := appts.UpdateStatus(ctx, id, status)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.outbox.Insert(ctx, tx, outbox.AppointmentStatusChanged(appt)); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// Delete removes an appointment outright. Appointments with ratings are
// protected; the rating must be removed first.
func (s *Service) Delete(ctx context.Context, id string) error {
	rated, err := s.ratings.ExistsForAppointment(ctx, id)
	if err != nil {
		return err
	}
	if rated {
		return ErrHasRating
	}

	tx, err := s.appts.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.appts.WithTx(tx).Delete(ctx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func validateCreate(in CreateInput) error {
	if in.Service == "" || in.Professional == "" || in.Date == "" || in.Time == "" || in.ClientName == "" {
		return invalid("service, professional, date, time and client name are required")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return invalid("date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return invalid("time must be in HH:MM format")
	}
	if in.ContactEmail != "" && !strings.Contains(in.ContactEmail, "@") {
		return invalid("contact email is not valid")
	}
	return nil
}
