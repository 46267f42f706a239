package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendou/backend/internal/model"
)

// recordingQuerier stands in for an open transaction and fails every query
// with a recognizable error, so tests can tell which querier a call hit.
type recordingQuerier struct {
	err  error
	sqls []string
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.sqls = append(q.sqls, sql)
	return pgconn.CommandTag{}, q.err
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sqls = append(q.sqls, sql)
	return nil, q.err
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.sqls = append(q.sqls, sql)
	return errRow{err: q.err}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestWithTxRoutesQueriesThroughTransaction(t *testing.T) {
	sentinel := errors.New("reached the transaction querier")
	q := &recordingQuerier{err: sentinel}
	// A nil pool panics if anything escapes the transaction view.
	repo := NewAppointmentRepository(nil).WithTx(q)

	ctx := context.Background()
	if _, err := repo.ListActiveBySlot(ctx, "2025-03-10", "15:00"); !errors.Is(err, sentinel) {
		t.Fatalf("ListActiveBySlot err = %v, want sentinel", err)
	}
	if _, err := repo.ListActiveByEmailAndDate(ctx, "joana@x.com", "2025-03-10"); !errors.Is(err, sentinel) {
		t.Fatalf("ListActiveByEmailAndDate err = %v, want sentinel", err)
	}
	if err := repo.Create(ctx, &model.Appointment{}); !errors.Is(err, sentinel) {
		t.Fatalf("Create err = %v, want sentinel", err)
	}
	if len(q.sqls) != 3 {
		t.Fatalf("expected 3 queries on the transaction, got %d", len(q.sqls))
	}
}
