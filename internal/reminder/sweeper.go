package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/agendou/backend/internal/model"
)

// ErrSweepInProgress is returned when a sweep is requested while another one
// is still running; ticks and manual triggers share the same guard.
var ErrSweepInProgress = errors.New("reminder sweep already in progress")

// Store is the persistence the sweeper needs: future active appointments not
// yet reminded, and the write that records a successful send.
type Store interface {
	ListReminderCandidates(ctx context.Context, fromDate string) ([]model.Appointment, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time, note string) error
}

type Sender interface {
	SendReminder(ctx context.Context, appt model.Appointment) error
}

// Events receives audit events for successful sends. Failures here are
// logged, never propagated; the reminder itself already went out.
type Events interface {
	ReminderSent(ctx context.Context, appt model.Appointment, sentAt time.Time) error
}

type ItemResult struct {
	AppointmentID string `json:"appointment_id"`
	ClientName    string `json:"client_name"`
	Email         string `json:"email"`
	Sent          bool   `json:"sent"`
	Error         string `json:"error,omitempty"`
}

type Summary struct {
	Success         bool         `json:"success"`
	TotalCandidates int          `json:"total_candidates"`
	RemindersSent   int          `json:"reminders_sent"`
	Results         []ItemResult `json:"results"`
	Error           string       `json:"error,omitempty"`
}

type Config struct {
	Interval     time.Duration
	InitialDelay time.Duration
	SendDelay    time.Duration
	SendTimeout  time.Duration
}

// Sweeper periodically scans upcoming appointments and sends a reminder to
// each one entering the 24h window, at most once per appointment.
type Sweeper struct {
	store   Store
	sender  Sender
	events  Events
	logger  *slog.Logger
	cfg     Config
	running atomic.Bool
}

func NewSweeper(store Store, sender Sender, events Events, logger *slog.Logger, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 1 * time.Hour
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 10 * time.Second
	}
	if cfg.SendDelay == 0 {
		cfg.SendDelay = 1 * time.Second
	}
	if cfg.SendDelay < 0 {
		cfg.SendDelay = 0
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Sweeper{
		store:  store,
		sender: sender,
		events: events,
		logger: logger,
		cfg:    cfg,
	}
}

// Run sweeps once shortly after startup, then on a fixed interval until the
// context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	initial := time.NewTimer(s.cfg.InitialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		s.sweepAndLog(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	summary, err := s.Sweep(ctx, time.Now())
	if errors.Is(err, ErrSweepInProgress) {
		s.logger.Warn("skipping reminder sweep, previous one still running")
		return
	}
	if err != nil {
		s.logger.Error("reminder sweep failed", "err", err)
		return
	}
	s.logger.Info("reminder sweep finished",
		"total_candidates", summary.TotalCandidates,
		"reminders_sent", summary.RemindersSent,
	)
}

// Sweep runs one full pass over upcoming appointments as of now. Individual
// send failures are recorded per item and do not abort the sweep.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Summary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Summary{}, ErrSweepInProgress
	}
	defer s.running.Store(false)

	candidates, err := s.store.ListReminderCandidates(ctx, now.Format("2006-01-02"))
	if err != nil {
		return Summary{Error: err.Error()}, err
	}

	summary := Summary{
		Success:         true,
		TotalCandidates: len(candidates),
		Results:         []ItemResult{},
	}

	for _, appt := range candidates {
		if !DueForReminder(appt.Date, appt.Time, now) {
			continue
		}

		result := ItemResult{
			AppointmentID: appt.ID,
			ClientName:    appt.ClientName,
			Email:         appt.ContactEmail,
		}
		if err := s.SendReminder(ctx, appt); err != nil {
			result.Error = err.Error()
			s.logger.Error("reminder send failed", "appointment_id", appt.ID, "err", err)
		} else {
			result.Sent = true
			summary.RemindersSent++
		}
		summary.Results = append(summary.Results, result)

		// Fixed pause between sends so a large sweep does not hammer the
		// mail transport.
		if s.cfg.SendDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.cfg.SendDelay):
			}
		}
	}

	return summary, nil
}

// SendReminder delivers one reminder and records the send. The booking flow
// uses this directly for appointments created already inside the window.
func (s *Sweeper) SendReminder(ctx context.Context, appt model.Appointment) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	if err := s.sender.SendReminder(sendCtx, appt); err != nil {
		return err
	}

	sentAt := time.Now()
	note := fmt.Sprintf("Lembrete enviado em: %s", sentAt.Format("02/01/2006 15:04:05"))
	if err := s.store.MarkReminderSent(ctx, appt.ID, sentAt, note); err != nil {
		// The email went out; losing the marker risks a re-send next sweep
		// but must not fail the current one.
		s.logger.Error("failed to mark reminder sent", "appointment_id", appt.ID, "err", err)
		return nil
	}
	if s.events != nil {
		if err := s.events.ReminderSent(ctx, appt, sentAt); err != nil {
			s.logger.Error("failed to record reminder event", "appointment_id", appt.ID, "err", err)
		}
	}
	return nil
}
