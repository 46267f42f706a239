package outbox

import (
	"context"
	"time"

	"github.com/agendou/backend/internal/model"
)

// ReminderEvents records reminder sends as outbox events. It satisfies the
// scheduler's Events hook without coupling the scheduler to this package.
type ReminderEvents struct {
	repo *Repository
}

func NewReminderEvents(repo *Repository) *ReminderEvents {
	return &ReminderEvents{repo: repo}
}

func (e *ReminderEvents) ReminderSent(ctx context.Context, appt model.Appointment, sentAt time.Time) error {
	return e.repo.InsertStandalone(ctx, ReminderSent(appt, sentAt))
}
