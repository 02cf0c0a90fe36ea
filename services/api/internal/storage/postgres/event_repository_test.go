package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/cimillas/festival/services/api/internal/testutil"
	"github.com/google/uuid"
)

var day = time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time {
	return day.Add(time.Duration(h) * time.Hour)
}

func newEvent(name string, areaID string, start, end time.Time) domain.Event {
	e := domain.Event{
		ID:         uuid.NewString(),
		Name:       name,
		StartsAt:   start,
		EndsAt:     end,
		Status:     domain.EventStatusDraft,
		CreatedAt:  day,
		ModifiedAt: day,
	}
	if areaID != "" {
		e.AreaID = &areaID
	}
	return e
}

func TestEventRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewEventRepository(pool)
	artists := NewRelationStore(pool, EventArtists)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateEvent and GetEventForUpdate round trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		areaID := testutil.InsertArea(t, ctx, pool, "Main Stage", 500)

		capacity := 300
		desc := "opening night"
		event := newEvent("Opening", areaID, at(10), at(12))
		event.Capacity = &capacity
		event.Description = &desc
		event.Status = domain.EventStatusPublished

		if err := repo.CreateEvent(ctx, event); err != nil {
			t.Fatalf("create: %v", err)
		}

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			got, err := repo.GetEventForUpdate(txCtx, event.ID)
			if err != nil {
				return err
			}
			if got.Name != "Opening" || got.Status != domain.EventStatusPublished {
				t.Fatalf("unexpected event: %+v", got)
			}
			if !got.StartsAt.Equal(at(10)) || !got.EndsAt.Equal(at(12)) {
				t.Fatalf("unexpected window: %v - %v", got.StartsAt, got.EndsAt)
			}
			if got.Capacity == nil || *got.Capacity != 300 {
				t.Fatalf("unexpected capacity: %v", got.Capacity)
			}
			if got.AreaID == nil || *got.AreaID != areaID {
				t.Fatalf("unexpected area: %v", got.AreaID)
			}
			if got.Description == nil || *got.Description != desc || got.Image != nil {
				t.Fatalf("unexpected optional fields: %+v", got)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		_, err = repo.GetEventForUpdate(ctx, uuid.NewString())
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		_, err = repo.GetEventForUpdate(ctx, "not-a-uuid")
		if !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("CreateEvent with unknown area returns ErrAreaNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		err := repo.CreateEvent(ctx, newEvent("Ghost", uuid.NewString(), at(10), at(12)))
		if !errors.Is(err, domain.ErrAreaNotFound) {
			t.Fatalf("expected ErrAreaNotFound, got %v", err)
		}
	})

	t.Run("UpdateEvent and DeleteEvent report missing rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if err := repo.UpdateEvent(ctx, newEvent("Nobody", "", at(10), at(12))); !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound on update, got %v", err)
		}
		if err := repo.DeleteEvent(ctx, uuid.NewString()); !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound on delete, got %v", err)
		}
	})

	t.Run("UpdateEvent keeps created_at", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		event := newEvent("Opening", "", at(10), at(12))
		if err := repo.CreateEvent(ctx, event); err != nil {
			t.Fatalf("create: %v", err)
		}
		event.Name = "Opening (moved)"
		event.StartsAt, event.EndsAt = at(12), at(14)
		event.ModifiedAt = day.Add(time.Hour)
		if err := repo.UpdateEvent(ctx, event); err != nil {
			t.Fatalf("update: %v", err)
		}

		got, err := repo.GetEventDetails(ctx, event.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != "Opening (moved)" || !got.StartsAt.Equal(at(12)) {
			t.Fatalf("unexpected event: %+v", got.Event)
		}
		if !got.CreatedAt.Equal(day) || !got.ModifiedAt.Equal(day.Add(time.Hour)) {
			t.Fatalf("unexpected timestamps: created %v modified %v", got.CreatedAt, got.ModifiedAt)
		}
	})

	t.Run("FindAreaOverlap uses inclusive bounds and exclusion", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		areaID := testutil.InsertArea(t, ctx, pool, "Main Stage", 500)
		otherArea := testutil.InsertArea(t, ctx, pool, "Tent", 100)

		existing := newEvent("Opening", areaID, at(10), at(12))
		if err := repo.CreateEvent(ctx, existing); err != nil {
			t.Fatalf("create: %v", err)
		}

		cases := []struct {
			name    string
			area    string
			window  domain.TimeWindow
			exclude string
			want    bool
		}{
			{"overlapping", areaID, domain.TimeWindow{Start: at(11), End: at(13)}, "", true},
			{"touching end", areaID, domain.TimeWindow{Start: at(12), End: at(14)}, "", true},
			{"touching start", areaID, domain.TimeWindow{Start: at(8), End: at(10)}, "", true},
			{"disjoint", areaID, domain.TimeWindow{Start: at(13), End: at(14)}, "", false},
			{"other area", otherArea, domain.TimeWindow{Start: at(10), End: at(12)}, "", false},
			{"self excluded", areaID, domain.TimeWindow{Start: at(11), End: at(13)}, existing.ID, false},
		}
		for _, tc := range cases {
			got, err := repo.FindAreaOverlap(ctx, tc.area, tc.window, tc.exclude)
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			if tc.want {
				if got == nil || got.ID != existing.ID {
					t.Fatalf("%s: expected overlap with %s, got %+v", tc.name, existing.ID, got)
				}
			} else if got != nil {
				t.Fatalf("%s: expected no overlap, got %+v", tc.name, got)
			}
		}
	})

	t.Run("FindArtistOverlap reports artist and event", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		areaX := testutil.InsertArea(t, ctx, pool, "Main Stage", 500)
		a1 := testutil.InsertArtist(t, ctx, pool, "A1")
		a2 := testutil.InsertArtist(t, ctx, pool, "A2")

		existing := newEvent("Opening", areaX, at(10), at(12))
		if err := repo.CreateEvent(ctx, existing); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := artists.Attach(ctx, existing.ID, []string{a1}); err != nil {
			t.Fatalf("attach: %v", err)
		}

		got, err := repo.FindArtistOverlap(ctx, []string{a2, a1}, domain.TimeWindow{Start: at(11), End: at(13)}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.ArtistID != a1 || got.ArtistName != "A1" || got.EventID != existing.ID || got.EventName != "Opening" {
			t.Fatalf("unexpected booking: %+v", got)
		}
		if !got.Window.Start.Equal(at(10)) || !got.Window.End.Equal(at(12)) {
			t.Fatalf("unexpected window: %+v", got.Window)
		}

		got, err = repo.FindArtistOverlap(ctx, []string{a2}, domain.TimeWindow{Start: at(11), End: at(13)}, "")
		if err != nil || got != nil {
			t.Fatalf("expected no overlap for A2, got %+v (%v)", got, err)
		}
		got, err = repo.FindArtistOverlap(ctx, []string{a1}, domain.TimeWindow{Start: at(11), End: at(13)}, existing.ID)
		if err != nil || got != nil {
			t.Fatalf("expected self to be excluded, got %+v (%v)", got, err)
		}
	})

	t.Run("exclusion constraint rejects overlapping area rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		areaID := testutil.InsertArea(t, ctx, pool, "Main Stage", 500)

		if err := repo.CreateEvent(ctx, newEvent("Opening", areaID, at(10), at(12))); err != nil {
			t.Fatalf("create: %v", err)
		}
		err := repo.CreateEvent(ctx, newEvent("Sneaky", areaID, at(11), at(13)))
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) || conflict.Kind != domain.ConflictAreaOverlap {
			t.Fatalf("expected area conflict, got %v", err)
		}
	})

	t.Run("LockBookings requires a transaction", func(t *testing.T) {
		ctx := context.Background()

		if err := repo.LockBookings(ctx, uuid.NewString(), nil); !errors.Is(err, errLockOutsideTx) {
			t.Fatalf("expected errLockOutsideTx, got %v", err)
		}

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.LockBookings(txCtx, uuid.NewString(), []string{uuid.NewString(), uuid.NewString()})
		})
		if err != nil {
			t.Fatalf("expected locks inside tx, got %v", err)
		}
	})

	t.Run("LockBookings blocks a second writer until commit", func(t *testing.T) {
		ctx := context.Background()
		areaID := uuid.NewString()

		locked := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error, 1)
		go func() {
			done <- repo.WithTx(ctx, func(txCtx context.Context) error {
				if err := repo.LockBookings(txCtx, areaID, nil); err != nil {
					return err
				}
				close(locked)
				<-release
				return nil
			})
		}()
		<-locked

		waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		err := repo.WithTx(waitCtx, func(txCtx context.Context) error {
			return repo.LockBookings(txCtx, areaID, nil)
		})
		if err == nil {
			t.Fatalf("expected second lock to wait for the first transaction")
		}

		close(release)
		if err := <-done; err != nil {
			t.Fatalf("first tx failed: %v", err)
		}

		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.LockBookings(txCtx, areaID, nil)
		})
		if err != nil {
			t.Fatalf("expected lock after release, got %v", err)
		}
	})

	t.Run("DeleteEvent cascades join rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		a1 := testutil.InsertArtist(t, ctx, pool, "A1")
		tag := testutil.InsertTag(t, ctx, pool, "rock")

		event := newEvent("Opening", "", at(10), at(12))
		if err := repo.CreateEvent(ctx, event); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := artists.Attach(ctx, event.ID, []string{a1}); err != nil {
			t.Fatalf("attach artists: %v", err)
		}
		if err := NewRelationStore(pool, EventTags).Attach(ctx, event.ID, []string{tag}); err != nil {
			t.Fatalf("attach tags: %v", err)
		}

		if err := repo.DeleteEvent(ctx, event.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if n := testutil.CountRows(t, ctx, pool, "event_artists", "event_id", event.ID); n != 0 {
			t.Fatalf("expected no event_artists rows, got %d", n)
		}
		if n := testutil.CountRows(t, ctx, pool, "event_tags", "event_id", event.ID); n != 0 {
			t.Fatalf("expected no event_tags rows, got %d", n)
		}
	})
}
