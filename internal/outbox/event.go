package outbox

import (
	"encoding/json"
	"time"

	"github.com/agendou/backend/internal/model"
)

// Topic names double as event types; one event per topic.
const (
	TopicAppointmentCreated       = "booking.appointment.created.v1"
	TopicAppointmentCancelled     = "booking.appointment.cancelled.v1"
	TopicAppointmentStatusChanged = "booking.appointment.status_changed.v1"
	TopicReminderSent             = "scheduler.reminder.sent.v1"
	TopicUserCreated              = "auth.user.created.v1"
)

// Event is the domain event envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type appointmentPayload struct {
	AppointmentID string `json:"appointment_id"`
	Service       string `json:"service"`
	Professional  string `json:"professional"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

func appointmentEvent(eventType string, appt model.Appointment) Event {
	payload, _ := json.Marshal(appointmentPayload{
		AppointmentID: appt.ID,
		Service:       appt.Service,
		Professional:  appt.Professional,
		Date:          appt.Date,
		Time:          appt.Time,
		Status:        appt.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload:       payload,
	}
}

func AppointmentCreated(appt model.Appointment) Event {
	return appointmentEvent(TopicAppointmentCreated, appt)
}

func AppointmentCancelled(appt model.Appointment) Event {
	return appointmentEvent(TopicAppointmentCancelled, appt)
}

func AppointmentStatusChanged(appt model.Appointment) Event {
	return appointmentEvent(TopicAppointmentStatusChanged, appt)
}

func ReminderSent(appt model.Appointment, sentAt time.Time) Event {
	payload, _ := json.Marshal(struct {
		AppointmentID string `json:"appointment_id"`
		Professional  string `json:"professional"`
		Date          string `json:"date"`
		Time          string `json:"time"`
		SentAt        string `json:"sent_at"`
	}{appt.ID, appt.Professional, appt.Date, appt.Time, sentAt.UTC().Format(time.RFC3339)})
	return Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     TopicReminderSent,
		Payload:       payload,
	}
}

func UserCreated(u model.User) Event {
	payload, _ := json.Marshal(struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Admin  bool   `json:"admin"`
	}{u.ID, u.Email, u.Admin})
	return Event{
		AggregateType: "user",
		AggregateID:   u.ID,
		EventType:     TopicUserCreated,
		Payload:       payload,
	}
}
