package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/agendou/backend/internal/model"
)

type fakeStore struct {
	bySlot  []model.Appointment
	byEmail []model.Appointment
}

func (f *fakeStore) ListActiveBySlot(_ context.Context, _, _ string) ([]model.Appointment, error) {
	return f.bySlot, nil
}

func (f *fakeStore) ListActiveByEmailAndDate(_ context.Context, _, _ string) ([]model.Appointment, error) {
	return f.byEmail, nil
}

func appt(professional string) model.Appointment {
	return model.Appointment{
		Professional: professional,
		Date:         "2025-04-01",
		Time:         "10:00",
		Status:       model.StatusPending,
	}
}

func TestCheck_FreeSlot(t *testing.T) {
	c := NewChecker(&fakeStore{})
	if err := c.Check(context.Background(), "2025-04-01", "10:00", "Ana", "joana@x.com"); err != nil {
		t.Fatalf("expected free slot, got %v", err)
	}
}

func TestCheck_ProfessionalBusy(t *testing.T) {
	c := NewChecker(&fakeStore{bySlot: []model.Appointment{appt("Ana")}})
	err := c.Check(context.Background(), "2025-04-01", "10:00", "Ana", "")
	if !errors.Is(err, ErrProfessionalBusy) {
		t.Fatalf("expected ErrProfessionalBusy, got %v", err)
	}
}

func TestCheck_ProfessionalNameIsCaseSensitive(t *testing.T) {
	c := NewChecker(&fakeStore{bySlot: []model.Appointment{appt("Ana")}})
	if err := c.Check(context.Background(), "2025-04-01", "10:00", "ana", ""); err != nil {
		t.Fatalf("lowercase name should not match stored professional: %v", err)
	}
}

func TestCheck_SlotFull(t *testing.T) {
	c := NewChecker(&fakeStore{bySlot: []model.Appointment{appt("Ana"), appt("Bruno"), appt("Carla")}})
	err := c.Check(context.Background(), "2025-04-01", "10:00", "Diego", "")
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull even for a free professional, got %v", err)
	}
}

func TestCheck_ProfessionalConflictReportedBeforeCapacity(t *testing.T) {
	c := NewChecker(&fakeStore{bySlot: []model.Appointment{appt("Ana"), appt("Bruno"), appt("Carla")}})
	err := c.Check(context.Background(), "2025-04-01", "10:00", "Ana", "")
	if !errors.Is(err, ErrProfessionalBusy) {
		t.Fatalf("expected ErrProfessionalBusy to take priority, got %v", err)
	}
}

func TestCheck_DuplicateSameDay(t *testing.T) {
	c := NewChecker(&fakeStore{byEmail: []model.Appointment{appt("Bruno")}})
	err := c.Check(context.Background(), "2025-04-01", "10:00", "Ana", "joana@x.com")
	if !errors.Is(err, ErrDuplicateBookingSameDay) {
		t.Fatalf("expected ErrDuplicateBookingSameDay, got %v", err)
	}
}

func TestCheck_NoEmailSkipsDuplicateCheck(t *testing.T) {
	c := NewChecker(&fakeStore{byEmail: []model.Appointment{appt("Bruno")}})
	if err := c.Check(context.Background(), "2025-04-01", "10:00", "Ana", ""); err != nil {
		t.Fatalf("duplicate check should be skipped without an email: %v", err)
	}
}
