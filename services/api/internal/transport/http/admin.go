package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cimillas/festival/services/api/internal/app"
	"github.com/cimillas/festival/services/api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CatalogService is the minimal interface needed for the admin catalog endpoints.
type CatalogService interface {
	CreateArea(ctx context.Context, in app.CreateAreaInput) (domain.Area, error)
	ListAreas(ctx context.Context) ([]domain.Area, error)
	CreateArtist(ctx context.Context, in app.CreateArtistInput) (domain.Artist, error)
	ListArtists(ctx context.Context) ([]domain.Artist, error)
	CreateTag(ctx context.Context, in app.CreateTagInput) (domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// ArtistTagService replaces the tag set of an artist.
type ArtistTagService interface {
	ReplaceArtistTags(ctx context.Context, artistID string, tagIDs []string) error
}

type adminHandlers struct {
	catalog    CatalogService
	artistTags ArtistTagService
	logger     *slog.Logger
}

func (h *adminHandlers) listAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.catalog.ListAreas(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	resp := make([]areaResponse, 0, len(areas))
	for _, a := range areas {
		resp = append(resp, newAreaResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *adminHandlers) createArea(w http.ResponseWriter, r *http.Request) {
	var req createAreaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	area, err := h.catalog.CreateArea(r.Context(), app.CreateAreaInput{
		Name:        req.Name,
		Type:        req.Type,
		Capacity:    req.Capacity,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAreaResponse(area))
}

func (h *adminHandlers) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.ListArtists(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	resp := make([]artistResponse, 0, len(artists))
	for _, a := range artists {
		resp = append(resp, newArtistResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *adminHandlers) createArtist(w http.ResponseWriter, r *http.Request) {
	var req createArtistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	artist, err := h.catalog.CreateArtist(r.Context(), app.CreateArtistInput{
		Name:     req.Name,
		Nickname: req.Nickname,
		Bio:      req.Bio,
		Links:    req.Links,
		Image:    req.Image,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newArtistResponse(artist))
}

func (h *adminHandlers) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newTagResponses(tags))
}

func (h *adminHandlers) createTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := h.catalog.CreateTag(r.Context(), app.CreateTagInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTagResponse(tag))
}

func (h *adminHandlers) replaceArtistTags(w http.ResponseWriter, r *http.Request) {
	var req replaceArtistTagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TagIDs == nil {
		writeError(w, http.StatusBadRequest, codeMissingRequiredField, "tag_ids is required")
		return
	}
	if err := h.artistTags.ReplaceArtistTags(r.Context(), chi.URLParam(r, "id"), req.TagIDs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}

type createAreaRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Capacity    int      `json:"capacity"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

type createArtistRequest struct {
	Name     string   `json:"name"`
	Nickname *string  `json:"nickname,omitempty"`
	Bio      *string  `json:"bio,omitempty"`
	Links    []string `json:"links,omitempty"`
	Image    *string  `json:"image,omitempty"`
}

type createTagRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type replaceArtistTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

type areaResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Capacity    int      `json:"capacity"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

func newAreaResponse(a domain.Area) areaResponse {
	return areaResponse{
		ID:          a.ID,
		Name:        a.Name,
		Type:        a.Type,
		Capacity:    a.Capacity,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		Description: a.Description,
		Image:       a.Image,
	}
}

type artistResponse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Nickname *string       `json:"nickname,omitempty"`
	Bio      *string       `json:"bio,omitempty"`
	Links    []string      `json:"links"`
	Image    *string       `json:"image,omitempty"`
	Tags     []tagResponse `json:"tags,omitempty"`
}

func newArtistResponse(a domain.Artist) artistResponse {
	links := a.Links
	if links == nil {
		links = []string{}
	}
	return artistResponse{
		ID:       a.ID,
		Name:     a.Name,
		Nickname: a.Nickname,
		Bio:      a.Bio,
		Links:    links,
		Image:    a.Image,
	}
}

type tagResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func newTagResponse(t domain.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Description: t.Description}
}

func newTagResponses(tags []domain.Tag) []tagResponse {
	resp := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		resp = append(resp, newTagResponse(t))
	}
	return resp
}
