package memstore

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"communityfund/internal/domain"
)

func seedComplaint(t *testing.T, s *Store, target int64) *domain.Complaint {
	t.Helper()
	c, err := domain.NewComplaint(domain.ComplaintDetails{
		Title:       "Drainage",
		Category:    "sanitation",
		Location:    "Block C",
		Description: "Blocked drain",
		DateCreated: time.Now(),
	}, target)
	if err != nil {
		t.Fatalf("NewComplaint: %v", err)
	}
	if err := s.CreateComplaint(context.Background(), c); err != nil {
		t.Fatalf("CreateComplaint: %v", err)
	}
	return c
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedComplaint(t, s, 100)
	boom := errors.New("boom")

	key := "k-1"
	err := s.WithinTx(ctx, func(tx domain.RecordStore) error {
		if _, err := tx.AtomicAdjustComplaint(ctx, c.ID, 40, -40); err != nil {
			return err
		}
		id, at := domain.NewContributionID()
		if _, err := tx.InsertContribution(ctx, &domain.Contribution{ID: id, ComplaintID: c.ID, Amount: 40, IdempotencyKey: &key, RecordedAt: at}); err != nil {
			return err
		}
		if _, err := tx.UpsertUserTotalIncrement(ctx, "a@example.com", 40); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	got, err := s.GetComplaint(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetComplaint: %v", err)
	}
	if got.FundCollected != 0 || got.TargetRemaining != 100 {
		t.Fatalf("balances not restored: collected=%d remaining=%d", got.FundCollected, got.TargetRemaining)
	}
	count := 0
	for range s.ListContributions(ctx) {
		count++
	}
	if count != 0 {
		t.Fatalf("expected no contributions after rollback, got %d", count)
	}
	if _, err := s.FindContributionByKey(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("idempotency key survived rollback: %v", err)
	}
	if _, err := s.GetUserTotal(ctx, "a@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user total survived rollback: %v", err)
	}
}

func TestUpsertUserTotalIncrement(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.UpsertUserTotalIncrement(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Kind != domain.CreditCreated || first.Total.TotalContributed != 5 {
		t.Fatalf("first upsert = %+v", first)
	}
	second, err := s.UpsertUserTotalIncrement(ctx, "u1", 7)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Kind != domain.CreditIncremented || second.Total.TotalContributed != 12 {
		t.Fatalf("second upsert = %+v", second)
	}
}

func TestDuplicateIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := "same"
	for i, want := range []error{nil, domain.ErrDuplicateOperation} {
		id, at := domain.NewContributionID()
		_, err := s.InsertContribution(ctx, &domain.Contribution{ID: id, ComplaintID: "c", Amount: 1, IdempotencyKey: &key, RecordedAt: at})
		if !errors.Is(err, want) {
			t.Fatalf("insert %d error = %v, want %v", i, err, want)
		}
	}
}

func TestListContributionsByContributorOrdered(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := "b@example.com"
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{3 * time.Second, time.Second, 2 * time.Second} {
		_, err := s.InsertContribution(ctx, &domain.Contribution{
			ID:            string(rune('a' + i)),
			ComplaintID:   "c",
			ContributorID: &user,
			Amount:        int64(i + 1),
			RecordedAt:    base.Add(offset),
		})
		if err != nil {
			t.Fatalf("InsertContribution: %v", err)
		}
	}
	var amounts []int64
	for c, err := range s.ListContributionsByContributor(ctx, user) {
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		amounts = append(amounts, c.Amount)
	}
	want := []int64{2, 3, 1}
	if len(amounts) != len(want) {
		t.Fatalf("got %v, want %v", amounts, want)
	}
	for i := range want {
		if amounts[i] != want[i] {
			t.Fatalf("got %v, want %v", amounts, want)
		}
	}
}

func TestSwapUserTotalComparesStoredValue(t *testing.T) {
	ctx := context.Background()
	s := New()

	if swapped, err := s.SwapUserTotal(ctx, "ana", 3, 9); err != nil || swapped {
		t.Fatalf("swap on missing total with expected 3 = %v, %v; want false", swapped, err)
	}
	if swapped, err := s.SwapUserTotal(ctx, "ana", 0, 9); err != nil || !swapped {
		t.Fatalf("swap on missing total = %v, %v; want true", swapped, err)
	}
	if _, err := s.UpsertUserTotalIncrement(ctx, "ana", 1); err != nil {
		t.Fatalf("UpsertUserTotalIncrement: %v", err)
	}
	if swapped, _ := s.SwapUserTotal(ctx, "ana", 9, 20); swapped {
		t.Fatal("swap succeeded against a stale expected value")
	}
	total, err := s.GetUserTotal(ctx, "ana")
	if err != nil {
		t.Fatalf("GetUserTotal: %v", err)
	}
	if total.TotalContributed != 10 {
		t.Fatalf("total = %d, want 10", total.TotalContributed)
	}
}

func TestWritesRejectOverflow(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := seedComplaint(t, s, 100)

	if _, err := s.AtomicAdjustComplaint(ctx, c.ID, math.MaxInt64, -math.MaxInt64); err != nil {
		t.Fatalf("AtomicAdjustComplaint: %v", err)
	}
	if _, err := s.AtomicAdjustComplaint(ctx, c.ID, 1, -1); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("adjust err = %v, want ErrInvalidAmount", err)
	}
	got, _ := s.GetComplaint(ctx, c.ID)
	if got.FundCollected != math.MaxInt64 || got.TargetRemaining != 0 {
		t.Fatalf("complaint = %+v, want unchanged balances", got)
	}

	if _, err := s.UpsertUserTotalIncrement(ctx, "ana", math.MaxInt64); err != nil {
		t.Fatalf("UpsertUserTotalIncrement: %v", err)
	}
	err := s.WithinTx(ctx, func(tx domain.RecordStore) error {
		_, err := tx.UpsertUserTotalIncrement(ctx, "ana", 1)
		return err
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("tx upsert err = %v, want ErrInvalidAmount", err)
	}
	total, _ := s.GetUserTotal(ctx, "ana")
	if total.TotalContributed != math.MaxInt64 {
		t.Fatalf("total = %d, want MaxInt64", total.TotalContributed)
	}
}
