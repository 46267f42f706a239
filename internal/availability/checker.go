package availability

import (
	"context"
	"errors"
	"strings"

	"github.com/agendou/backend/internal/model"
)

// SlotCapacity is the maximum number of active appointments that may share a
// (date, time) slot across all professionals.
const SlotCapacity = 3

var (
	ErrProfessionalBusy        = errors.New("professional already booked at this slot")
	ErrSlotFull                = errors.New("slot is fully booked")
	ErrDuplicateBookingSameDay = errors.New("an active appointment already exists for this email on this date")
)

// Store is the read side the checker needs. Only pending/confirmed
// appointments count against availability.
type Store interface {
	ListActiveBySlot(ctx context.Context, date, timeOfDay string) ([]model.Appointment, error)
	ListActiveByEmailAndDate(ctx context.Context, email, date string) ([]model.Appointment, error)
}

type Checker struct {
	store Store
}

func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// Check reports whether a booking for (date, time, professional) is possible.
// It is read-only; the caller performs the insert afterwards and relies on the
// store's uniqueness constraint to close the remaining race window.
//
// Conflicts are reported most-specific first: professional conflict before
// slot capacity before same-day duplicate.
func (c *Checker) Check(ctx context.Context, date, timeOfDay, professional, contactEmail string) error {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)
	professional = strings.TrimSpace(professional)
	contactEmail = strings.TrimSpace(contactEmail)

	booked, err := c.store.ListActiveBySlot(ctx, date, timeOfDay)
	if err != nil {
		return err
	}

	for _, appt := range booked {
		if appt.Professional == professional {
			return ErrProfessionalBusy
		}
	}
	if len(booked) >= SlotCapacity {
		return ErrSlotFull
	}

	if contactEmail != "" {
		sameDay, err := c.store.ListActiveByEmailAndDate(ctx, contactEmail, date)
		if err != nil {
			return err
		}
		if len(sameDay) > 0 {
			return ErrDuplicateBookingSameDay
		}
	}

	return nil
}
