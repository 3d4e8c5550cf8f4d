package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"club-ladder/internal/club"
	"club-ladder/internal/ladder"
	"club-ladder/internal/store"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error     string `json:"error"`
	Set       int    `json:"set,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var errBadBody = errors.New("request body could not be read")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto status codes. Unexpected errors are
// logged and reported without detail, carrying only the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var setErr *ladder.SetScoreError
	switch {
	case errors.As(err, &setErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: setErr.Error(), Set: setErr.Set})
	case ladder.IsValidationError(err), errors.Is(err, club.ErrUnknownPlayer), errors.Is(err, store.ErrInvalidPlayer):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrDuplicateName):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, club.ErrPlayerNotFound), errors.Is(err, club.ErrMatchNotFound), errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, club.ErrNoEligibleOpponent):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, errBadBody):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", RequestID: GetRequestID(r.Context())})
	}
}
