package lifecycle

import (
	"errors"
	"testing"

	"github.com/agendou/backend/internal/model"
)

func TestCanCancel(t *testing.T) {
	owner := Actor{Email: "joana@x.com"}
	stranger := Actor{Email: "outro@x.com"}
	admin := Actor{Email: "admin@x.com", Admin: true}

	tests := []struct {
		name   string
		status string
		actor  Actor
		want   error
	}{
		{"owner cancels pending", model.StatusPending, owner, nil},
		{"owner cancels confirmed", model.StatusConfirmed, owner, nil},
		{"owner cancels cancelled", model.StatusCancelled, owner, ErrAlreadyCancelled},
		{"owner cancels completed", model.StatusCompleted, owner, ErrInvalidTransition},
		{"stranger cancels pending", model.StatusPending, stranger, ErrNotOwner},
		{"admin cancels any owner's pending", model.StatusPending, admin, nil},
		{"admin cancels cancelled", model.StatusCancelled, admin, ErrAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := model.Appointment{ContactEmail: "joana@x.com", Status: tt.status}
			err := CanCancel(appt, tt.actor)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CanCancel = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCancelRejectionDoesNotDependOnOwnershipForTerminalStates(t *testing.T) {
	// Ownership is checked first: a stranger hitting a cancelled appointment
	// gets the ownership error, not a state hint.
	appt := model.Appointment{ContactEmail: "joana@x.com", Status: model.StatusCancelled}
	err := CanCancel(appt, Actor{Email: "outro@x.com"})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestCanSetStatus(t *testing.T) {
	admin := Actor{Admin: true}
	for _, status := range []string{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted} {
		if err := CanSetStatus(status, admin); err != nil {
			t.Fatalf("admin override to %q: %v", status, err)
		}
	}
	if err := CanSetStatus("done", admin); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}
	if err := CanSetStatus(model.StatusConfirmed, Actor{Email: "joana@x.com"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-admin, got %v", err)
	}
}

func TestCanRate(t *testing.T) {
	appt := model.Appointment{ContactEmail: "joana@x.com", Status: model.StatusCompleted}
	if err := CanRate(appt, Actor{Email: "joana@x.com"}); err != nil {
		t.Fatalf("owner rating completed appointment: %v", err)
	}

	appt.Status = model.StatusPending
	if err := CanRate(appt, Actor{Email: "joana@x.com"}); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}

	appt.Status = model.StatusCompleted
	if err := CanRate(appt, Actor{Email: "outra@x.com"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}
