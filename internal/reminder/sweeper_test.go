package reminder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agendou/backend/internal/model"
)

type fakeStore struct {
	mu         sync.Mutex
	candidates []model.Appointment
	listErr    error
	marked     map[string]string // id -> note
}

func (f *fakeStore) ListReminderCandidates(_ context.Context, _ string) ([]model.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.candidates, nil
}

func (f *fakeStore) MarkReminderSent(_ context.Context, id string, _ time.Time, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marked == nil {
		f.marked = map[string]string{}
	}
	f.marked[id] = note
	return nil
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]error
}

func (f *fakeSender) SendReminder(_ context.Context, appt model.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[appt.ID]; err != nil {
		return err
	}
	f.sent = append(f.sent, appt.ID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestSweeper(store Store, sender Sender) *Sweeper {
	return NewSweeper(store, sender, nil, testLogger(), Config{
		SendDelay:   -1, // no throttling in tests; normalized to 0 is fine
		SendTimeout: time.Second,
	})
}

func futureAppt(id, date, timeOfDay string) model.Appointment {
	return model.Appointment{
		ID:           id,
		Service:      "Corte",
		Professional: "Ana",
		Date:         date,
		Time:         timeOfDay,
		ClientName:   "Joana",
		ContactEmail: "joana@x.com",
		Status:       model.StatusConfirmed,
	}
}

func TestSweepSendsOnlyInsideWindow(t *testing.T) {
	now := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)
	store := &fakeStore{candidates: []model.Appointment{
		futureAppt("in-window", "2025-03-10", "15:00"),  // 23h away
		futureAppt("too-far", "2025-03-11", "10:00"),    // >24h away
		futureAppt("same-sweep", "2025-03-09", "17:30"), // 1.5h away
	}}
	sender := &fakeSender{}

	summary, err := newTestSweeper(store, sender).Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if summary.TotalCandidates != 3 {
		t.Fatalf("TotalCandidates = %d, want 3", summary.TotalCandidates)
	}
	if summary.RemindersSent != 2 {
		t.Fatalf("RemindersSent = %d, want 2", summary.RemindersSent)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sender got %v", sender.sent)
	}
	for _, id := range sender.sent {
		if id == "too-far" {
			t.Fatal("appointment outside the window was reminded")
		}
	}
}

func TestSweepMarksSentWithAuditNote(t *testing.T) {
	now := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)
	store := &fakeStore{candidates: []model.Appointment{futureAppt("a1", "2025-03-10", "15:00")}}
	sender := &fakeSender{}

	if _, err := newTestSweeper(store, sender).Sweep(context.Background(), now); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	note, ok := store.marked["a1"]
	if !ok {
		t.Fatal("appointment was not marked as reminded")
	}
	if !strings.HasPrefix(note, "Lembrete enviado em: ") {
		t.Fatalf("unexpected audit note %q", note)
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	now := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)
	store := &fakeStore{candidates: []model.Appointment{
		futureAppt("bad", "2025-03-10", "15:00"),
		futureAppt("good", "2025-03-10", "15:00"),
	}}
	sender := &fakeSender{failFor: map[string]error{"bad": errors.New("smtp down")}}

	summary, err := newTestSweeper(store, sender).Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if summary.RemindersSent != 1 {
		t.Fatalf("RemindersSent = %d, want 1", summary.RemindersSent)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 per-item results, got %d", len(summary.Results))
	}
	var sawFailure bool
	for _, r := range summary.Results {
		if r.AppointmentID == "bad" {
			sawFailure = true
			if r.Sent || r.Error == "" {
				t.Fatalf("failed item not recorded: %+v", r)
			}
		}
	}
	if !sawFailure {
		t.Fatal("failed item missing from results")
	}
	if _, marked := store.marked["bad"]; marked {
		t.Fatal("failed send must not be marked as reminded")
	}
}

func TestSweepStoreFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db unreachable")}
	summary, err := newTestSweeper(store, &fakeSender{}).Sweep(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error when the store is unreachable")
	}
	if summary.Success {
		t.Fatal("summary must not report success")
	}
}

func TestConcurrentSweepIsRejected(t *testing.T) {
	block := make(chan struct{})
	store := &blockingStore{listing: make(chan struct{}), unblock: block}
	sw := newTestSweeper(store, &fakeSender{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sw.Sweep(context.Background(), time.Now())
	}()

	<-store.listing
	if _, err := sw.Sweep(context.Background(), time.Now()); !errors.Is(err, ErrSweepInProgress) {
		t.Fatalf("expected ErrSweepInProgress, got %v", err)
	}
	close(block)
	<-done

	// Guard must be released once the first sweep finishes.
	if _, err := sw.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("sweep after completion: %v", err)
	}
}

type blockingStore struct {
	listingOnce sync.Once
	listing     chan struct{}
	unblock     chan struct{}
}

func (b *blockingStore) ListReminderCandidates(_ context.Context, _ string) ([]model.Appointment, error) {
	b.listingOnce.Do(func() { close(b.listing) })
	<-b.unblock
	return nil, nil
}

func (b *blockingStore) MarkReminderSent(_ context.Context, _ string, _ time.Time, _ string) error {
	return nil
}
