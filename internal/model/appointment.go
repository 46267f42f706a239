package model

import "time"

// Appointment statuses. An appointment is "active" while pending or
// confirmed; cancelled and completed are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func ActiveStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment is a booking at a (date, time) slot. Date and Time are
// wall-clock strings ("2006-01-02", "15:04"); they are stored and compared
// exactly as given, with no timezone conversion.
type Appointment struct {
	ID             string
	Service        string
	Professional   string
	Date           string
	Time           string
	ClientName     string
	ContactEmail   string
	ContactPhone   string
	Status         string
	Notes          string
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}

type Rating struct {
	ID            string
	AppointmentID string
	Score         int
	Comment       string
	CreatedAt     time.Time
}

type Professional struct {
	ID        string
	Name      string
	Specialty string
	Photo     string
	Active    bool
	CreatedAt time.Time
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	CPF          string
	Admin        bool
	CreatedAt    time.Time
}
