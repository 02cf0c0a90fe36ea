package domain

import "time"

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusSoldOut   EventStatus = "soldout"
	EventStatusHidden    EventStatus = "hidden"
)

// Valid reports whether s is one of the known lifecycle states.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusSoldOut, EventStatusHidden:
		return true
	}
	return false
}

// Event is a scheduled performance slot, optionally bound to an Area.
type Event struct {
	ID          string
	Name        string
	Description *string
	Image       *string
	StartsAt    time.Time
	EndsAt      time.Time
	Capacity    *int
	Status      EventStatus
	AreaID      *string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Window returns the booked interval of the event.
func (e Event) Window() TimeWindow {
	return TimeWindow{Start: e.StartsAt, End: e.EndsAt}
}

// EventDetails is an Event joined with its Area, Artists and Tags.
type EventDetails struct {
	Event
	Area    *Area
	Artists []ArtistDetails
	Tags    []Tag
}

// EventFilter narrows event listings. Zero values mean "any".
type EventFilter struct {
	AreaID string
	Status EventStatus
	From   *time.Time
	To     *time.Time
}
