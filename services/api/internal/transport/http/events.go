package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cimillas/festival/services/api/internal/app"
	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/cimillas/festival/services/api/internal/notify"
	"github.com/go-chi/chi/v5"
)

// EventService is the subset of the event lifecycle the HTTP layer needs.
type EventService interface {
	CreateEvent(ctx context.Context, in app.EventInput) (domain.Event, error)
	UpdateEvent(ctx context.Context, id string, in app.EventInput) (domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (domain.EventDetails, error)
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.EventDetails, error)
}

type eventHandlers struct {
	svc       EventService
	publisher notify.Publisher
	logger    *slog.Logger
}

func (h *eventHandlers) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidQuery, err.Error())
		return
	}

	events, err := h.svc.ListEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, newEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *eventHandlers) get(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventResponse(details))
}

func (h *eventHandlers) create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.publish(r.Context(), notify.TopicEventCreated, event.ID)
	h.respondWithDetails(w, r, http.StatusCreated, event.ID)
}

func (h *eventHandlers) update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeEventRequest(w, r)
	if !ok {
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.publish(r.Context(), notify.TopicEventUpdated, event.ID)
	h.respondWithDetails(w, r, http.StatusOK, event.ID)
}

func (h *eventHandlers) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.publish(r.Context(), notify.TopicEventDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// respondWithDetails re-reads the committed event so the response carries the
// same joined shape as GET /events/{id}.
func (h *eventHandlers) respondWithDetails(w http.ResponseWriter, r *http.Request, status int, id string) {
	details, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, status, newEventResponse(details))
}

func (h *eventHandlers) publish(ctx context.Context, topic, eventID string) {
	if err := h.publisher.Publish(ctx, topic, notify.EventChanged{EventID: eventID}); err != nil {
		h.logger.Warn("publish event change failed", "topic", topic, "event_id", eventID, "error", err)
	}
}

type eventRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Capacity    *int     `json:"capacity,omitempty"`
	Status      string   `json:"status,omitempty"`
	AreaID      *string  `json:"area_id,omitempty"`
	ArtistIDs   []string `json:"artist_ids,omitempty"`
	TagIDs      []string `json:"tag_ids,omitempty"`
}

func decodeEventRequest(w http.ResponseWriter, r *http.Request) (app.EventInput, bool) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return app.EventInput{}, false
	}
	if req.Start == "" || req.End == "" {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "start and end are required")
		return app.EventInput{}, false
	}
	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidStart, "invalid start format")
		return app.EventInput{}, false
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidEnd, "invalid end format")
		return app.EventInput{}, false
	}

	return app.EventInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		StartsAt:    start,
		EndsAt:      end,
		Capacity:    req.Capacity,
		Status:      domain.EventStatus(req.Status),
		AreaID:      req.AreaID,
		ArtistIDs:   req.ArtistIDs,
		TagIDs:      req.TagIDs,
	}, true
}

func parseEventFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		AreaID: q.Get("area_id"),
		Status: domain.EventStatus(q.Get("status")),
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.EventFilter{}, &queryError{param: p.key}
		}
		*p.dst = &t
	}
	return filter, nil
}

type queryError struct {
	param string
}

func (e *queryError) Error() string {
	return "invalid " + e.param + " format"
}

type eventResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Capacity    *int             `json:"capacity,omitempty"`
	Status      string           `json:"status"`
	AreaID      *string          `json:"area_id,omitempty"`
	Area        *areaResponse    `json:"area,omitempty"`
	Artists     []artistResponse `json:"artists"`
	Tags        []tagResponse    `json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	ModifiedAt  time.Time        `json:"modified_at"`
}

func newEventResponse(d domain.EventDetails) eventResponse {
	resp := eventResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		Start:       d.StartsAt,
		End:         d.EndsAt,
		Capacity:    d.Capacity,
		Status:      string(d.Status),
		AreaID:      d.AreaID,
		Artists:     make([]artistResponse, 0, len(d.Artists)),
		Tags:        newTagResponses(d.Tags),
		CreatedAt:   d.CreatedAt,
		ModifiedAt:  d.ModifiedAt,
	}
	if d.Area != nil {
		area := newAreaResponse(*d.Area)
		resp.Area = &area
	}
	for _, a := range d.Artists {
		artist := newArtistResponse(a.Artist)
		artist.Tags = newTagResponses(a.Tags)
		resp.Artists = append(resp.Artists, artist)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
