package http

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cimillas/festival/services/api/internal/app"
	"github.com/cimillas/festival/services/api/internal/domain"
)

var testNow = time.Date(2025, 7, 12, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeEventService struct {
	mu sync.Mutex

	createErr error
	updateErr error
	deleteErr error
	getErr    error
	listErr   error

	lastInput    app.EventInput
	lastUpdateID string
	lastDeleteID string
	lastFilter   domain.EventFilter
	details      domain.EventDetails
	listResult   []domain.EventDetails
}

func (f *fakeEventService) CreateEvent(ctx context.Context, in app.EventInput) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastInput = in
	if f.createErr != nil {
		return domain.Event{}, f.createErr
	}
	return domain.Event{ID: "event-1", Name: in.Name, StartsAt: in.StartsAt, EndsAt: in.EndsAt}, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, in app.EventInput) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastInput = in
	f.lastUpdateID = id
	if f.updateErr != nil {
		return domain.Event{}, f.updateErr
	}
	return domain.Event{ID: id, Name: in.Name}, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDeleteID = id
	return f.deleteErr
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.EventDetails{}, f.getErr
	}
	d := f.details
	if d.ID == "" {
		d.ID = id
		d.Name = "Opening"
		d.Status = domain.EventStatusDraft
		d.StartsAt = testNow.Add(time.Hour)
		d.EndsAt = testNow.Add(3 * time.Hour)
	}
	return d, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.EventDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	return f.listResult, f.listErr
}

type fakeCatalogService struct {
	createErr error
	areas     []domain.Area
}

func (f *fakeCatalogService) CreateArea(ctx context.Context, in app.CreateAreaInput) (domain.Area, error) {
	if f.createErr != nil {
		return domain.Area{}, f.createErr
	}
	return domain.Area{ID: "area-1", Name: in.Name, Type: in.Type, Capacity: in.Capacity}, nil
}

func (f *fakeCatalogService) ListAreas(ctx context.Context) ([]domain.Area, error) {
	return f.areas, nil
}

func (f *fakeCatalogService) CreateArtist(ctx context.Context, in app.CreateArtistInput) (domain.Artist, error) {
	if f.createErr != nil {
		return domain.Artist{}, f.createErr
	}
	return domain.Artist{ID: "artist-1", Name: in.Name, Links: in.Links}, nil
}

func (f *fakeCatalogService) ListArtists(ctx context.Context) ([]domain.Artist, error) {
	return nil, nil
}

func (f *fakeCatalogService) CreateTag(ctx context.Context, in app.CreateTagInput) (domain.Tag, error) {
	if f.createErr != nil {
		return domain.Tag{}, f.createErr
	}
	return domain.Tag{ID: "tag-1", Name: in.Name}, nil
}

func (f *fakeCatalogService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return nil, nil
}

type fakeArtistTagService struct {
	err          error
	lastArtistID string
	lastTagIDs   []string
}

func (f *fakeArtistTagService) ReplaceArtistTags(ctx context.Context, artistID string, tagIDs []string) error {
	f.lastArtistID = artistID
	f.lastTagIDs = tagIDs
	return f.err
}

type published struct {
	topic string
	msg   any
}

type recordingPublisher struct {
	mu   sync.Mutex
	err  error
	msgs []published
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, msg any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, msg: msg})
	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}

var errStoreDown = errors.New("connection refused")
