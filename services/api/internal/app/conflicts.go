package app

import (
	"context"

	"github.com/cimillas/festival/services/api/internal/domain"
)

// BookingQuerier answers the two overlap questions conflict validation needs.
// Both return nil when nothing overlaps.
type BookingQuerier interface {
	FindAreaOverlap(ctx context.Context, areaID string, window domain.TimeWindow, excludeEventID string) (*domain.Event, error)
	FindArtistOverlap(ctx context.Context, artistIDs []string, window domain.TimeWindow, excludeEventID string) (*domain.ArtistBooking, error)
}

// CheckConflicts reports the first booking rule the proposed event would break:
// the area is checked before the artists. It never writes.
func CheckConflicts(ctx context.Context, q BookingQuerier, b domain.Booking) error {
	if b.AreaID != "" {
		existing, err := q.FindAreaOverlap(ctx, b.AreaID, b.Window, b.ExcludeEventID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &domain.ConflictError{
				Kind:      domain.ConflictAreaOverlap,
				EventID:   existing.ID,
				EventName: existing.Name,
			}
		}
	}

	if len(b.ArtistIDs) > 0 {
		booked, err := q.FindArtistOverlap(ctx, b.ArtistIDs, b.Window, b.ExcludeEventID)
		if err != nil {
			return err
		}
		if booked != nil {
			return &domain.ConflictError{
				Kind:       domain.ConflictArtistOverlap,
				EventID:    booked.EventID,
				EventName:  booked.EventName,
				ArtistID:   booked.ArtistID,
				ArtistName: booked.ArtistName,
			}
		}
	}
	return nil
}
