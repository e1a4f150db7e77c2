package ledger

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"

	"communityfund/internal/adapter/memstore"
	"communityfund/internal/domain"
)

func sampleDetails(title string) domain.ComplaintDetails {
	return domain.ComplaintDetails{
		Title:       title,
		Category:    "sanitation",
		Location:    "Block C",
		Description: "Overflowing bins",
		DateCreated: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestComplaintsLifecycle(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	svc := NewComplaints(memstore.New(), zerolog.Nop())

	created, err := svc.Create(ctx, sampleDetails("  Bins  "), 500)
	c.Assert(err, qt.IsNil)
	c.Check(created.Title, qt.Equals, "Bins")
	c.Check(created.Status, qt.Equals, domain.ComplaintStatusOpen)
	c.Check(created.TargetRemaining, qt.Equals, int64(500))

	_, err = svc.Create(ctx, sampleDetails("bins"), 100)
	c.Check(err, qt.ErrorIs, domain.ErrConflict)

	got, err := svc.Get(ctx, created.ID)
	c.Assert(err, qt.IsNil)
	c.Check(got.ID, qt.Equals, created.ID)

	d := sampleDetails("Bins")
	d.Status = domain.ComplaintStatusResolved
	updated, err := svc.Update(ctx, created.ID, d)
	c.Assert(err, qt.IsNil)
	c.Check(updated.Status, qt.Equals, domain.ComplaintStatusResolved)
	c.Check(updated.OriginalTarget, qt.Equals, int64(500))

	list, err := svc.List(ctx)
	c.Assert(err, qt.IsNil)
	c.Check(list, qt.HasLen, 1)

	c.Assert(svc.Delete(ctx, created.ID), qt.IsNil)
	c.Check(svc.Delete(ctx, created.ID), qt.ErrorIs, domain.ErrNotFound)
	_, err = svc.Get(ctx, created.ID)
	c.Check(err, qt.ErrorIs, domain.ErrNotFound)
}

func TestComplaintsRejectInvalidInput(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	svc := NewComplaints(memstore.New(), zerolog.Nop())

	c.Run("missing field", func(c *qt.C) {
		d := sampleDetails("Lights")
		d.Location = " "
		_, err := svc.Create(ctx, d, 10)
		c.Check(err, qt.ErrorIs, domain.ErrInvalidInput)
	})
	c.Run("non-positive target", func(c *qt.C) {
		_, err := svc.Create(ctx, sampleDetails("Lights"), 0)
		c.Check(err, qt.ErrorIs, domain.ErrInvalidAmount)
	})
	c.Run("bad id", func(c *qt.C) {
		c.Check(svc.Delete(ctx, "not-a-uuid"), qt.ErrorIs, domain.ErrInvalidComplaintID)
		_, err := svc.Get(ctx, "")
		c.Check(err, qt.ErrorIs, domain.ErrInvalidComplaintID)
		_, err = svc.Update(ctx, "42", sampleDetails("Lights"))
		c.Check(err, qt.ErrorIs, domain.ErrInvalidComplaintID)
	})
	c.Run("rename onto taken title", func(c *qt.C) {
		a, err := svc.Create(ctx, sampleDetails("Road A"), 10)
		c.Assert(err, qt.IsNil)
		_, err = svc.Create(ctx, sampleDetails("Road B"), 10)
		c.Assert(err, qt.IsNil)
		_, err = svc.Update(ctx, a.ID, sampleDetails("road b"))
		c.Check(err, qt.ErrorIs, domain.ErrConflict)
	})
}
