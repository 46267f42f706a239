package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agendou/backend/internal/mail"
	"github.com/agendou/backend/internal/model"
)

type fakeMailer struct {
	configured bool
	contacts   []mail.ContactMessage
	sendErr    error
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) SendConfirmation(context.Context, model.Appointment) error { return nil }

func (f *fakeMailer) SendReminder(context.Context, model.Appointment) error { return nil }

func (f *fakeMailer) SendContact(_ context.Context, msg mail.ContactMessage) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.contacts = append(f.contacts, msg)
	return nil
}

func postContact(t *testing.T, h *ContactHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Send(rec, req)
	return rec
}

func testContactHandler(mailer mail.Sender) *ContactHandler {
	return NewContactHandler(mailer, slog.New(slog.DiscardHandler))
}

func TestContactSendsMessage(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	rec := postContact(t, testContactHandler(mailer),
		`{"name":"Joana","email":"joana@example.com","subject":"Horários","message":"Vocês abrem no sábado?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(mailer.contacts) != 1 {
		t.Fatalf("expected one message, got %d", len(mailer.contacts))
	}
	if mailer.contacts[0].Subject != "Horários" {
		t.Fatalf("subject = %q", mailer.contacts[0].Subject)
	}
}

func TestContactRequiresFields(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	rec := postContact(t, testContactHandler(mailer), `{"name":"Joana","email":"joana@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestContactRejectsBadEmail(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	rec := postContact(t, testContactHandler(mailer),
		`{"name":"Joana","email":"not-an-email","subject":"x","message":"y"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestContactRejectsLongMessage(t *testing.T) {
	mailer := &fakeMailer{configured: true}
	long := strings.Repeat("a", 301)
	rec := postContact(t, testContactHandler(mailer),
		`{"name":"Joana","email":"joana@example.com","subject":"x","message":"`+long+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestContactUnavailableWhenUnconfigured(t *testing.T) {
	mailer := &fakeMailer{configured: false}
	rec := postContact(t, testContactHandler(mailer),
		`{"name":"Joana","email":"joana@example.com","subject":"x","message":"y"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
