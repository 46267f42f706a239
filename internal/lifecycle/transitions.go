// Package lifecycle encodes the appointment status machine:
// pending -> confirmed | cancelled | completed, confirmed -> cancelled |
// completed; cancelled and completed are terminal. Owners may only cancel;
// admins may force any status.
package lifecycle

import (
	"errors"

	"github.com/agendou/backend/internal/model"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyCancelled  = errors.New("appointment is already cancelled")
	ErrNotOwner          = errors.New("appointment belongs to another client")
	ErrNotCompleted      = errors.New("appointment is not completed")
)

// Actor identifies who is requesting a transition. Ownership is matched by
// the appointment's contact email.
type Actor struct {
	Email string
	Admin bool
}

func (a Actor) Owns(appt model.Appointment) bool {
	return appt.ContactEmail != "" && appt.ContactEmail == a.Email
}

// CanCancel validates an owner-initiated cancellation. Cancelling an
// already-cancelled appointment is rejected rather than treated as a no-op
// success, so callers can answer idempotent retries with a conflict.
func CanCancel(appt model.Appointment, actor Actor) error {
	if !actor.Admin && !actor.Owns(appt) {
		return ErrNotOwner
	}
	switch appt.Status {
	case model.StatusCancelled:
		return ErrAlreadyCancelled
	case model.StatusCompleted:
		return ErrInvalidTransition
	}
	return nil
}

// CanSetStatus validates an administrative status override. Admins may set
// any of the four statuses directly, including re-opening terminal states.
func CanSetStatus(next string, actor Actor) error {
	if !actor.Admin {
		return ErrNotOwner
	}
	if !model.ValidStatus(next) {
		return ErrInvalidTransition
	}
	return nil
}

// CanRate gates rating creation: only the owner of a completed appointment
// may rate it.
func CanRate(appt model.Appointment, actor Actor) error {
	if !actor.Owns(appt) {
		return ErrNotOwner
	}
	if appt.Status != model.StatusCompleted {
		return ErrNotCompleted
	}
	return nil
}
