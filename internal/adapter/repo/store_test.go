package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"communityfund/internal/domain"
	"communityfund/internal/sqlinline"
)

const complaintID = "5b7f2c1a-3d4e-4f60-8a9b-0c1d2e3f4a5b"

func fillComplaint(remaining, fund int64, extra ...any) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*string) = complaintID
		*dest[1].(*string) = "Broken streetlight"
		*dest[2].(*string) = "infrastructure"
		*dest[7].(*string) = "open"
		*dest[9].(*int64) = 100
		*dest[10].(*int64) = remaining
		*dest[11].(*int64) = fund
		for i, v := range extra {
			*dest[14+i].(*int64) = v.(int64)
		}
		return nil
	}
}

func TestGetComplaintNotFound(t *testing.T) {
	store := NewStore(&stubExec{})
	_, err := store.GetComplaint(context.Background(), complaintID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAtomicAdjustComplaintScansPreviousRemaining(t *testing.T) {
	exec := &stubExec{row: func(query string, args []any) pgx.Row {
		return stubRow{scan: fillComplaint(0, 120, int64(20))}
	}}
	change, err := NewStore(exec).AtomicAdjustComplaint(context.Background(), complaintID, 120, -120)
	if err != nil {
		t.Fatalf("AtomicAdjustComplaint: %v", err)
	}
	if change.PreviousRemaining != 20 || change.Complaint.TargetRemaining != 0 || change.Complaint.FundCollected != 120 {
		t.Fatalf("unexpected change: %+v", change)
	}
	if change.Complaint.Status != domain.ComplaintStatusOpen {
		t.Fatalf("status = %q", change.Complaint.Status)
	}
	if exec.queries[0] != sqlinline.QAdjustComplaint {
		t.Fatal("expected adjust query")
	}
	if got := exec.args[0]; got[1].(int64) != 120 || got[2].(int64) != -120 {
		t.Fatalf("args = %v", got)
	}
}

func TestAtomicAdjustComplaintMissing(t *testing.T) {
	_, err := NewStore(&stubExec{}).AtomicAdjustComplaint(context.Background(), complaintID, 1, -1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateComplaintDuplicateTitle(t *testing.T) {
	exec := &stubExec{execErr: &pgconn.PgError{Code: "23505"}}
	c := &domain.Complaint{ID: complaintID, ComplaintDetails: domain.ComplaintDetails{Title: "Flooded road"}}
	if err := NewStore(exec).CreateComplaint(context.Background(), c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestDeleteComplaintReportsExistence(t *testing.T) {
	exec := &stubExec{execTag: pgconn.NewCommandTag("DELETE 1")}
	ok, err := NewStore(exec).DeleteComplaint(context.Background(), complaintID)
	if err != nil || !ok {
		t.Fatalf("DeleteComplaint = %v, %v", ok, err)
	}
	exec.execTag = pgconn.NewCommandTag("DELETE 0")
	ok, err = NewStore(exec).DeleteComplaint(context.Background(), complaintID)
	if err != nil || ok {
		t.Fatalf("DeleteComplaint missing = %v, %v", ok, err)
	}
}

func TestInsertContributionDuplicateKey(t *testing.T) {
	exec := &stubExec{row: func(string, []any) pgx.Row {
		return stubRow{scan: func(...any) error { return &pgconn.PgError{Code: "23505"} }}
	}}
	key := "k-1"
	_, err := NewStore(exec).InsertContribution(context.Background(), &domain.Contribution{
		ID:             "01J0000000000000000000000",
		ComplaintID:    complaintID,
		Amount:         5,
		IdempotencyKey: &key,
	})
	if !errors.Is(err, domain.ErrDuplicateOperation) {
		t.Fatalf("err = %v, want ErrDuplicateOperation", err)
	}
	if contributor := exec.args[0][2].(string); contributor != "" {
		t.Fatalf("anonymous contributor sent as %q", contributor)
	}
	if sent := exec.args[0][6].(string); sent != key {
		t.Fatalf("key sent as %q", sent)
	}
}

func TestListContributionsStreamsRows(t *testing.T) {
	now := time.Now().UTC()
	row := func(id string, amount int64) func(dest ...any) error {
		return func(dest ...any) error {
			*dest[0].(*string) = id
			*dest[1].(*string) = complaintID
			*dest[3].(*int64) = amount
			*dest[7].(*time.Time) = now
			return nil
		}
	}
	exec := &stubExec{rows: func(string) (pgx.Rows, error) {
		return &stubRows{rows: []func(dest ...any) error{row("a", 10), row("b", 15), row("c", 20)}}, nil
	}}

	var ids []string
	for c, err := range NewStore(exec).ListContributionsByComplaint(context.Background(), complaintID) {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		ids = append(ids, c.ID)
		if len(ids) == 2 {
			break
		}
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestListContributionsYieldsRowsError(t *testing.T) {
	boom := errors.New("connection reset")
	exec := &stubExec{rows: func(string) (pgx.Rows, error) {
		return &stubRows{err: boom}, nil
	}}
	var got error
	for _, err := range NewStore(exec).ListContributions(context.Background()) {
		got = err
	}
	if !errors.Is(got, boom) {
		t.Fatalf("err = %v, want %v", got, boom)
	}
}

func TestUpsertUserTotalIncrementKind(t *testing.T) {
	for _, tc := range []struct {
		created bool
		want    domain.CreditKind
	}{
		{created: true, want: domain.CreditCreated},
		{created: false, want: domain.CreditIncremented},
	} {
		exec := &stubExec{row: func(string, []any) pgx.Row {
			return stubRow{scan: func(dest ...any) error {
				*dest[0].(*string) = "alice"
				*dest[1].(*int64) = 10
				*dest[4].(*bool) = tc.created
				return nil
			}}
		}}
		out, err := NewStore(exec).UpsertUserTotalIncrement(context.Background(), "alice", 10)
		if err != nil {
			t.Fatalf("UpsertUserTotalIncrement: %v", err)
		}
		if out.Kind != tc.want || out.Total.TotalContributed != 10 {
			t.Fatalf("outcome = %+v, want kind %v", out, tc.want)
		}
	}
}

func TestBalanceOverflowIsInvalidAmount(t *testing.T) {
	overflow := func(string, []any) pgx.Row {
		return stubRow{scan: func(...any) error {
			return &pgconn.PgError{Code: "22003", Message: "bigint out of range"}
		}}
	}
	_, err := NewStore(&stubExec{row: overflow}).AtomicAdjustComplaint(context.Background(), complaintID, 5, -5)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("adjust err = %v, want ErrInvalidAmount", err)
	}
	_, err = NewStore(&stubExec{row: overflow}).UpsertUserTotalIncrement(context.Background(), "alice", 5)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("upsert err = %v, want ErrInvalidAmount", err)
	}
}

func TestSwapUserTotal(t *testing.T) {
	for _, tc := range []struct {
		written int64
		want    bool
	}{
		{written: 1, want: true},
		{written: 0, want: false},
	} {
		exec := &stubExec{row: func(string, []any) pgx.Row {
			return stubRow{scan: func(dest ...any) error {
				*dest[0].(*int64) = tc.written
				return nil
			}}
		}}
		swapped, err := NewStore(exec).SwapUserTotal(context.Background(), "alice", 10, 15)
		if err != nil {
			t.Fatalf("SwapUserTotal: %v", err)
		}
		if swapped != tc.want {
			t.Fatalf("swapped = %v, want %v", swapped, tc.want)
		}
		if exec.queries[0] != sqlinline.QSwapUserTotal {
			t.Fatal("unexpected query")
		}
		if args := exec.args[0]; args[1] != int64(10) || args[2] != int64(15) {
			t.Fatalf("args = %v, want expected 10 and total 15", args)
		}
	}
}

func TestGetUserTotalNotFound(t *testing.T) {
	_, err := NewStore(&stubExec{}).GetUserTotal(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWithinTxRequiresTransactionalExecutor(t *testing.T) {
	err := NewStore(&stubExec{}).WithinTx(context.Background(), func(domain.RecordStore) error { return nil })
	if err == nil {
		t.Fatal("expected error for executor without transactions")
	}
}

func TestWithinTxPropagatesError(t *testing.T) {
	exec := stubTxExec{&stubExec{}}
	boom := errors.New("boom")
	var inner domain.RecordStore
	err := NewStore(exec).WithinTx(context.Background(), func(tx domain.RecordStore) error {
		inner = tx
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if inner == nil {
		t.Fatal("fn was not called")
	}
	if exec.inTx != 1 {
		t.Fatalf("InTx calls = %d", exec.inTx)
	}
}
