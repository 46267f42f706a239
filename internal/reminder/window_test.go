package reminder

import (
	"testing"
	"time"
)

func TestDueForReminder(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"23h away", time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC), true},
		{"29h away", time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC), false},
		{"one minute past", time.Date(2025, 3, 10, 15, 1, 0, 0, time.UTC), false},
		{"exactly at appointment", time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), false},
		{"exactly 24h before", time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC), true},
		{"one minute more than 24h", time.Date(2025, 3, 9, 14, 59, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueForReminder("2025-03-10", "15:00", tt.now)
			if got != tt.want {
				t.Fatalf("DueForReminder(2025-03-10 15:00, %s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestDueForReminderUnparseable(t *testing.T) {
	now := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)
	if DueForReminder("10/03/2025", "15:00", now) {
		t.Fatal("unparseable date must not be due")
	}
	if DueForReminder("2025-03-10", "3pm", now) {
		t.Fatal("unparseable time must not be due")
	}
}

func TestCombineDateTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	at, err := CombineDateTime("2025-03-10", "15:00", loc)
	if err != nil {
		t.Fatalf("CombineDateTime: %v", err)
	}
	if at.Hour() != 15 || at.Location() != loc {
		t.Fatalf("expected 15:00 in BRT, got %s", at)
	}
}
