package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cimillas/festival/services/api/internal/clock"
	"github.com/cimillas/festival/services/api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type EventRepository interface {
	BookingQuerier
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockBookings serializes writers touching the same area or artists until
	// the surrounding transaction ends.
	LockBookings(ctx context.Context, areaID string, artistIDs []string) error
	GetEventForUpdate(ctx context.Context, id string) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) error
	UpdateEvent(ctx context.Context, event domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetEventDetails(ctx context.Context, id string) (domain.EventDetails, error)
	ListEventDetails(ctx context.Context, filter domain.EventFilter) ([]domain.EventDetails, error)
}

// AreaLookup resolves areas for capacity checks. GetArea returns nil when the
// area does not exist.
type AreaLookup interface {
	GetArea(ctx context.Context, id string) (*domain.Area, error)
}

// RelationStore maintains one join table keyed by a parent id.
type RelationStore interface {
	Attach(ctx context.Context, parentID string, childIDs []string) error
	Replace(ctx context.Context, parentID string, childIDs []string) error
	RemoveAll(ctx context.Context, parentID string) error
}

type EventService struct {
	repo    EventRepository
	areas   AreaLookup
	artists RelationStore
	tags    RelationStore
	clock   clock.Clock
	logger  *slog.Logger
	metrics WriteMetrics
}

func NewEventService(repo EventRepository, areas AreaLookup, artists, tags RelationStore, clk clock.Clock, opts ...EventServiceOption) *EventService {
	svc := &EventService{
		repo:    repo,
		areas:   areas,
		artists: artists,
		tags:    tags,
		clock:   clk,
		logger:  slog.New(slog.DiscardHandler),
		metrics: NoopMetrics{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type EventServiceOption func(*EventService)

func WithMetrics(m WriteMetrics) EventServiceOption {
	return func(s *EventService) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(logger *slog.Logger) EventServiceOption {
	return func(s *EventService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// EventInput carries the writable fields of an event. Status is optional:
// creation defaults it to draft, update keeps the current one.
type EventInput struct {
	Name        string
	Description *string
	Image       *string
	StartsAt    time.Time
	EndsAt      time.Time
	Capacity    *int
	Status      domain.EventStatus
	AreaID      *string
	ArtistIDs   []string
	TagIDs      []string
}

func normalizeEventInput(in EventInput) (EventInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, domain.NewValidationError("name", domain.ErrEventNameRequired)
	}
	if !(domain.TimeWindow{Start: in.StartsAt, End: in.EndsAt}).Valid() {
		return in, domain.NewValidationError("end", domain.ErrInvalidTimeWindow)
	}
	in.StartsAt = in.StartsAt.UTC()
	in.EndsAt = in.EndsAt.UTC()
	if in.Status != "" && !in.Status.Valid() {
		return in, domain.NewValidationError("status", domain.ErrInvalidStatus)
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return in, domain.NewValidationError("capacity", domain.ErrInvalidCapacity)
	}
	if in.AreaID != nil {
		if *in.AreaID == "" {
			in.AreaID = nil
		} else {
			areaID, err := canonicalID(*in.AreaID)
			if err != nil {
				return in, domain.NewValidationError("area_id", err)
			}
			in.AreaID = &areaID
		}
	}

	var err error
	if in.ArtistIDs, err = normalizeIDs("artist_ids", in.ArtistIDs); err != nil {
		return in, err
	}
	if in.TagIDs, err = normalizeIDs("tag_ids", in.TagIDs); err != nil {
		return in, err
	}
	return in, nil
}

func (in EventInput) apply(event *domain.Event) {
	event.Name = in.Name
	event.Description = in.Description
	event.Image = in.Image
	event.StartsAt = in.StartsAt
	event.EndsAt = in.EndsAt
	event.Capacity = in.Capacity
	event.AreaID = in.AreaID
	if in.Status != "" {
		event.Status = in.Status
	}
}

func (s *EventService) CreateEvent(ctx context.Context, in EventInput) (_ domain.Event, err error) {
	ctx, span := startSpan(ctx, "event.create")
	defer s.observe(ctx, span, "create", time.Now(), &err)

	in, err = normalizeEventInput(in)
	if err != nil {
		return domain.Event{}, err
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:         newID(),
		Status:     domain.EventStatusDraft,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	in.apply(&event)
	span.SetAttributes(attribute.String("event.id", event.ID))

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.checkBooking(txCtx, event, in.ArtistIDs, ""); err != nil {
			return err
		}
		if err := s.repo.CreateEvent(txCtx, event); err != nil {
			return err
		}
		if err := s.artists.Attach(txCtx, event.ID, in.ArtistIDs); err != nil {
			return err
		}
		return s.tags.Attach(txCtx, event.ID, in.TagIDs)
	})
	if err != nil {
		s.logRejected("create", event.ID, err)
		return domain.Event{}, err
	}

	s.logger.Info("event created", "event_id", event.ID, "status", event.Status, "artists", len(in.ArtistIDs))
	return event, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id string, in EventInput) (_ domain.Event, err error) {
	ctx, span := startSpan(ctx, "event.update", attribute.String("event.id", id))
	defer s.observe(ctx, span, "update", time.Now(), &err)

	if err := validateID(id); err != nil {
		return domain.Event{}, err
	}

	// The event is loaded before the input is judged, so a missing event is
	// reported as not found whatever the body holds.
	var result domain.Event
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if in, err = normalizeEventInput(in); err != nil {
			return err
		}
		in.apply(&event)
		event.ModifiedAt = s.clock.Now()

		if err := s.checkBooking(txCtx, event, in.ArtistIDs, id); err != nil {
			return err
		}
		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		if err := s.artists.Replace(txCtx, id, in.ArtistIDs); err != nil {
			return err
		}
		if err := s.tags.Replace(txCtx, id, in.TagIDs); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		s.logRejected("update", id, err)
		return domain.Event{}, err
	}

	s.logger.Info("event updated", "event_id", id, "status", result.Status, "artists", len(in.ArtistIDs))
	return result, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "event.delete", attribute.String("event.id", id))
	defer s.observe(ctx, span, "delete", time.Now(), &err)

	if err := validateID(id); err != nil {
		return err
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetEventForUpdate(txCtx, id); err != nil {
			return err
		}
		if err := s.artists.RemoveAll(txCtx, id); err != nil {
			return err
		}
		if err := s.tags.RemoveAll(txCtx, id); err != nil {
			return err
		}
		return s.repo.DeleteEvent(txCtx, id)
	})
	if err != nil {
		s.logRejected("delete", id, err)
		return err
	}

	s.logger.Info("event deleted", "event_id", id)
	return nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (domain.EventDetails, error) {
	if err := validateID(id); err != nil {
		return domain.EventDetails{}, err
	}
	return s.repo.GetEventDetails(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.EventDetails, error) {
	if filter.AreaID != "" {
		if err := validateID(filter.AreaID); err != nil {
			return nil, domain.NewValidationError("area_id", err)
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", domain.ErrInvalidStatus)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.NewValidationError("to", domain.ErrInvalidTimeWindow)
	}
	return s.repo.ListEventDetails(ctx, filter)
}

// checkBooking runs inside the write transaction so the checks and the writes
// that follow see the same locked state.
func (s *EventService) checkBooking(ctx context.Context, event domain.Event, artistIDs []string, excludeEventID string) error {
	var areaID string
	if event.AreaID != nil {
		areaID = *event.AreaID
	}

	if err := s.repo.LockBookings(ctx, areaID, artistIDs); err != nil {
		return err
	}

	if areaID != "" {
		area, err := s.areas.GetArea(ctx, areaID)
		if err != nil {
			return err
		}
		if area == nil {
			return domain.ErrAreaNotFound
		}
		if event.Capacity != nil && *event.Capacity > area.Capacity {
			return domain.NewValidationError("capacity", domain.ErrCapacityExceedsArea)
		}
	}

	return CheckConflicts(ctx, s.repo, domain.Booking{
		AreaID:         areaID,
		ArtistIDs:      artistIDs,
		Window:         event.Window(),
		ExcludeEventID: excludeEventID,
	})
}

// observe closes the write span and records metrics. errp points at the
// caller's named error result so the final value is seen.
func (s *EventService) observe(ctx context.Context, span trace.Span, op string, start time.Time, errp *error) {
	endSpan(span, *errp)
	s.metrics.RecordWrite(ctx, op, *errp, time.Since(start))
}

func (s *EventService) logRejected(op, eventID string, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		s.logger.Debug("event write rejected", "op", op, "event_id", eventID, "conflict", conflict.Kind, "conflicting_event_id", conflict.EventID)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidID):
		s.logger.Debug("event write rejected", "op", op, "event_id", eventID, "error", err)
	default:
		s.logger.Error("event write failed", "op", op, "event_id", eventID, "error", err)
	}
}
