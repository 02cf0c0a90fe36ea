package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cimillas/festival/services/api/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeMissingRequiredField = "missing_required_field"
	codeInvalidStart         = "invalid_start"
	codeInvalidEnd           = "invalid_end"
	codeInvalidQuery         = "invalid_query"
	codeInvalidID            = "invalid_id"
	codeValidationFailed     = "validation_failed"
	codeEventNameRequired    = "event_name_required"
	codeAreaNameRequired     = "area_name_required"
	codeArtistNameRequired   = "artist_name_required"
	codeTagNameRequired      = "tag_name_required"
	codeInvalidTimeWindow    = "invalid_time_window"
	codeInvalidStatus        = "invalid_status"
	codeInvalidCapacity      = "invalid_capacity"
	codeCapacityExceedsArea  = "capacity_exceeds_area"
	codeEventNotFound        = "event_not_found"
	codeAreaNotFound         = "area_not_found"
	codeArtistNotFound       = "artist_not_found"
	codeTagNotFound          = "tag_not_found"
	codeTagAlreadyExists     = "tag_already_exists"
	codeConflict             = "conflict"
	codeForbidden            = "forbidden"
	codeNotReady             = "not_ready"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

var validationCodes = map[error]string{
	domain.ErrEventNameRequired:   codeEventNameRequired,
	domain.ErrAreaNameRequired:    codeAreaNameRequired,
	domain.ErrArtistNameRequired:  codeArtistNameRequired,
	domain.ErrTagNameRequired:     codeTagNameRequired,
	domain.ErrInvalidTimeWindow:   codeInvalidTimeWindow,
	domain.ErrInvalidStatus:       codeInvalidStatus,
	domain.ErrInvalidCapacity:     codeInvalidCapacity,
	domain.ErrCapacityExceedsArea: codeCapacityExceedsArea,
	domain.ErrInvalidID:           codeInvalidID,
}

var notFoundCodes = map[error]string{
	domain.ErrEventNotFound:  codeEventNotFound,
	domain.ErrAreaNotFound:   codeAreaNotFound,
	domain.ErrArtistNotFound: codeArtistNotFound,
	domain.ErrTagNotFound:    codeTagNotFound,
}

// writeServiceError maps an application error to its HTTP status and code.
// Anything unrecognized is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		code, ok := validationCodes[validation.Err]
		if !ok {
			code = codeValidationFailed
		}
		writeErrorResponse(w, http.StatusBadRequest, errorResponse{
			Error: validation.Error(),
			Code:  code,
			Field: validation.Field,
		})
	case errors.As(err, &conflict):
		code := string(conflict.Kind)
		if code == "" {
			code = codeConflict
		}
		writeError(w, http.StatusConflict, code, conflict.Error())
	case errors.Is(err, domain.ErrTagAlreadyExists):
		writeError(w, http.StatusConflict, codeTagAlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusNotFound, codeInvalidID, err.Error())
	case domain.IsNotFound(err):
		code := codeNotFound
		for sentinel, c := range notFoundCodes {
			if errors.Is(err, sentinel) {
				code = c
				break
			}
		}
		writeError(w, http.StatusNotFound, code, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
