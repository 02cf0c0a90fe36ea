package app

import (
	"context"
	"errors"
	"sort"

	"github.com/cimillas/festival/services/api/internal/domain"
)

var errInjected = errors.New("injected failure")

// fakeStore is an in-memory stand-in for Postgres. WithTx snapshots all state
// and restores it when fn fails, mirroring a rollback.
type fakeStore struct {
	areas   map[string]domain.Area
	artists map[string]domain.Artist
	tags    map[string]domain.Tag
	events  map[string]domain.Event

	eventArtists *fakeRelation
	eventTags    *fakeRelation
	artistTags   *fakeRelation

	lockCalls [][]string
	failOn    map[string]error
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		areas:   map[string]domain.Area{},
		artists: map[string]domain.Artist{},
		tags:    map[string]domain.Tag{},
		events:  map[string]domain.Event{},
		failOn:  map[string]error{},
	}
	s.eventArtists = &fakeRelation{store: s, name: "event_artists", rows: map[string][]string{}}
	s.eventTags = &fakeRelation{store: s, name: "event_tags", rows: map[string][]string{}}
	s.artistTags = &fakeRelation{store: s, name: "artist_tags", rows: map[string][]string{}}
	return s
}

func (s *fakeStore) addArea(id, name string, capacity int) {
	s.areas[id] = domain.Area{ID: id, Name: name, Capacity: capacity}
}

func (s *fakeStore) addArtist(id, name string) {
	s.artists[id] = domain.Artist{ID: id, Name: name}
}

func (s *fakeStore) addTag(id, name string) {
	s.tags[id] = domain.Tag{ID: id, Name: name}
}

func (s *fakeStore) fail(op string) error {
	return s.failOn[op]
}

type fakeSnapshot struct {
	events       map[string]domain.Event
	eventArtists map[string][]string
	eventTags    map[string][]string
	artistTags   map[string][]string
}

func (s *fakeStore) snapshot() fakeSnapshot {
	events := make(map[string]domain.Event, len(s.events))
	for k, v := range s.events {
		events[k] = v
	}
	return fakeSnapshot{
		events:       events,
		eventArtists: s.eventArtists.clone(),
		eventTags:    s.eventTags.clone(),
		artistTags:   s.artistTags.clone(),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.events = snap.events
	s.eventArtists.rows = snap.eventArtists
	s.eventTags.rows = snap.eventTags
	s.artistTags.rows = snap.artistTags
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) LockBookings(_ context.Context, areaID string, artistIDs []string) error {
	keys := []string{}
	if areaID != "" {
		keys = append(keys, "area:"+areaID)
	}
	for _, id := range artistIDs {
		keys = append(keys, "artist:"+id)
	}
	s.lockCalls = append(s.lockCalls, keys)
	return s.fail("lock")
}

func (s *fakeStore) sortedEvents() []domain.Event {
	out := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out
}

func (s *fakeStore) FindAreaOverlap(_ context.Context, areaID string, window domain.TimeWindow, excludeEventID string) (*domain.Event, error) {
	for _, e := range s.sortedEvents() {
		if e.ID == excludeEventID || e.AreaID == nil || *e.AreaID != areaID {
			continue
		}
		if e.Window().Overlaps(window) {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindArtistOverlap(_ context.Context, artistIDs []string, window domain.TimeWindow, excludeEventID string) (*domain.ArtistBooking, error) {
	for _, e := range s.sortedEvents() {
		if e.ID == excludeEventID || !e.Window().Overlaps(window) {
			continue
		}
		booked := s.eventArtists.rows[e.ID]
		for _, artistID := range artistIDs {
			for _, b := range booked {
				if b == artistID {
					return &domain.ArtistBooking{
						ArtistID:   artistID,
						ArtistName: s.artists[artistID].Name,
						EventID:    e.ID,
						EventName:  e.Name,
						Window:     e.Window(),
					}, nil
				}
			}
		}
	}
	return nil, nil
}

func (s *fakeStore) GetEventForUpdate(_ context.Context, id string) (domain.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, nil
}

func (s *fakeStore) CreateEvent(_ context.Context, event domain.Event) error {
	if err := s.fail("event.create"); err != nil {
		return err
	}
	s.events[event.ID] = event
	return nil
}

func (s *fakeStore) UpdateEvent(_ context.Context, event domain.Event) error {
	if err := s.fail("event.update"); err != nil {
		return err
	}
	if _, ok := s.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	s.events[event.ID] = event
	return nil
}

func (s *fakeStore) DeleteEvent(_ context.Context, id string) error {
	if err := s.fail("event.delete"); err != nil {
		return err
	}
	if _, ok := s.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *fakeStore) details(e domain.Event) domain.EventDetails {
	d := domain.EventDetails{Event: e}
	if e.AreaID != nil {
		if a, ok := s.areas[*e.AreaID]; ok {
			d.Area = &a
		}
	}
	for _, artistID := range s.eventArtists.rows[e.ID] {
		ad := domain.ArtistDetails{Artist: s.artists[artistID]}
		for _, tagID := range s.artistTags.rows[artistID] {
			ad.Tags = append(ad.Tags, s.tags[tagID])
		}
		d.Artists = append(d.Artists, ad)
	}
	for _, tagID := range s.eventTags.rows[e.ID] {
		d.Tags = append(d.Tags, s.tags[tagID])
	}
	return d
}

func (s *fakeStore) GetEventDetails(_ context.Context, id string) (domain.EventDetails, error) {
	e, ok := s.events[id]
	if !ok {
		return domain.EventDetails{}, domain.ErrEventNotFound
	}
	return s.details(e), nil
}

func (s *fakeStore) ListEventDetails(_ context.Context, filter domain.EventFilter) ([]domain.EventDetails, error) {
	var out []domain.EventDetails
	for _, e := range s.sortedEvents() {
		if filter.AreaID != "" && (e.AreaID == nil || *e.AreaID != filter.AreaID) {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.From != nil && e.EndsAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.StartsAt.After(*filter.To) {
			continue
		}
		out = append(out, s.details(e))
	}
	return out, nil
}

func (s *fakeStore) GetArea(_ context.Context, id string) (*domain.Area, error) {
	a, ok := s.areas[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *fakeStore) ArtistExists(_ context.Context, id string) (bool, error) {
	_, ok := s.artists[id]
	return ok, nil
}

type fakeRelation struct {
	store *fakeStore
	name  string
	rows  map[string][]string
}

func (r *fakeRelation) clone() map[string][]string {
	out := make(map[string][]string, len(r.rows))
	for k, v := range r.rows {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (r *fakeRelation) Attach(_ context.Context, parentID string, childIDs []string) error {
	if err := r.store.fail(r.name + ".attach"); err != nil {
		return err
	}
	for _, id := range childIDs {
		if r.has(parentID, id) {
			continue
		}
		r.rows[parentID] = append(r.rows[parentID], id)
	}
	return nil
}

func (r *fakeRelation) Replace(ctx context.Context, parentID string, childIDs []string) error {
	if err := r.RemoveAll(ctx, parentID); err != nil {
		return err
	}
	if err := r.store.fail(r.name + ".replace"); err != nil {
		return err
	}
	return r.Attach(ctx, parentID, childIDs)
}

func (r *fakeRelation) RemoveAll(_ context.Context, parentID string) error {
	if err := r.store.fail(r.name + ".remove"); err != nil {
		return err
	}
	delete(r.rows, parentID)
	return nil
}

func (r *fakeRelation) has(parentID, childID string) bool {
	for _, id := range r.rows[parentID] {
		if id == childID {
			return true
		}
	}
	return false
}
