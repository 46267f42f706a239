package booking

import (
	"errors"
	"testing"
)

func validInput() CreateInput {
	return CreateInput{
		Service:      "Corte de cabelo",
		Professional: "Ana",
		Date:         "2025-06-10",
		Time:         "14:30",
		ClientName:   "Joana Silva",
		ContactEmail: "joana@example.com",
	}
}

func TestValidateCreateAcceptsCompleteInput(t *testing.T) {
	if err := validateCreate(validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCreateRejectsMissingFields(t *testing.T) {
	cases := map[string]func(*CreateInput){
		"service":      func(in *CreateInput) { in.Service = "" },
		"professional": func(in *CreateInput) { in.Professional = "" },
		"date":         func(in *CreateInput) { in.Date = "" },
		"time":         func(in *CreateInput) { in.Time = "" },
		"client name":  func(in *CreateInput) { in.ClientName = "" },
	}
	for name, clear := range cases {
		in := validInput()
		clear(&in)
		err := validateCreate(in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("missing %s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestValidateCreateRejectsBadFormats(t *testing.T) {
	cases := map[string]func(*CreateInput){
		"date not ISO":    func(in *CreateInput) { in.Date = "10/06/2025" },
		"time not HH:MM":  func(in *CreateInput) { in.Time = "2pm" },
		"email no at":     func(in *CreateInput) { in.ContactEmail = "joana.example.com" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		var verr *ValidationError
		if err := validateCreate(in); !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", name, err)
		}
	}
}

func TestValidateCreateAllowsEmptyContactEmail(t *testing.T) {
	in := validInput()
	in.ContactEmail = ""
	if err := validateCreate(in); err != nil {
		t.Fatalf("empty email must be allowed: %v", err)
	}
}
