package mail

import (
	"strings"
	"testing"

	"github.com/agendou/backend/internal/model"
)

func TestConfirmationTemplate(t *testing.T) {
	body, err := renderConfirmation(model.Appointment{
		ClientName:   "Joana",
		Service:      "Corte",
		Professional: "Ana",
		Date:         "2025-06-10",
		Time:         "14:30",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Joana", "Corte", "Ana", "2025-06-10", "14:30"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestContactTemplateEscapesHTML(t *testing.T) {
	body, err := renderContact(ContactMessage{
		Name:    "Joana",
		Email:   "joana@example.com",
		Subject: "Oi",
		Message: `<script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("message was not escaped")
	}
}

func TestBuildMessageReplyTo(t *testing.T) {
	msg := buildMessage("no-reply@x.com", "inbox@x.com", "Oi", "<p>hi</p>", "joana@example.com")
	if !strings.Contains(msg, "Reply-To: joana@example.com\r\n") {
		t.Fatalf("missing reply-to header: %q", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Fatal("missing content type")
	}
}
