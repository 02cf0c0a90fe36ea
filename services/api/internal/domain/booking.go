package domain

import "time"

// TimeWindow is a closed interval [Start, End].
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (w TimeWindow) Valid() bool {
	return w.End.After(w.Start)
}

// Overlaps uses inclusive boundaries: windows that only touch still overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return !w.Start.After(other.End) && !w.End.Before(other.Start)
}

// Booking is the shape of an event as seen by conflict validation.
type Booking struct {
	AreaID    string
	ArtistIDs []string
	Window    TimeWindow
	// ExcludeEventID is set on update so an event never conflicts with itself.
	ExcludeEventID string
}

// ArtistBooking identifies an existing event that already books an artist.
type ArtistBooking struct {
	ArtistID   string
	ArtistName string
	EventID    string
	EventName  string
	Window     TimeWindow
}
