package web

import (
	"net/http"
	"strings"

	"club-ladder/internal/ladder"
	"club-ladder/internal/model"

	"github.com/go-chi/chi/v5"
)

type playerRequest struct {
	Name string `json:"name"`
}

type opponentsResponse struct {
	PlayerID  string   `json:"player_id"`
	Opponents []string `json:"opponents"`
}

func (s *Server) handleLadder(w http.ResponseWriter, r *http.Request) {
	entries, err := s.club.Ladder(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch strings.ToLower(r.URL.Query().Get("group")) {
	case "":
		writeJSON(w, http.StatusOK, entries)
	case "record":
		writeJSON(w, http.StatusOK, ladder.GroupByRecord(entries))
	case "wins":
		writeJSON(w, http.StatusOK, ladder.GroupByWins(entries))
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "group must be record or wins"})
	}
}

func (s *Server) handlePlayersList(w http.ResponseWriter, r *http.Request) {
	players, err := s.club.Players(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if isJSON(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		req.Name = r.FormValue("name")
	}
	player, err := s.club.RegisterPlayer(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handlePlayerShow(w http.ResponseWriter, r *http.Request) {
	profile, err := s.club.PlayerProfile(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePlayerOpponents(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	ids, err := s.club.Opponents(r.Context(), playerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opponentsResponse{PlayerID: playerID, Opponents: ids})
}

func (s *Server) handlePlayerSuggestion(w http.ResponseWriter, r *http.Request) {
	entry, err := s.club.SuggestOpponent(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handlePlayerDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.club.DeletePlayer(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMatchesList(w http.ResponseWriter, r *http.Request) {
	matches, err := s.club.Matches(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleMatchCreate(w http.ResponseWriter, r *http.Request) {
	sub, err := parseSubmission(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	match, err := s.club.SubmitMatch(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, match)
}

func (s *Server) handleMatchDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.club.DeleteMatch(r.Context(), chi.URLParam(r, "matchID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
