package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"club-ladder/internal/club"
	"club-ladder/internal/ladder"
	"club-ladder/internal/model"
	"club-ladder/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T, adminPassword string) http.Handler {
	t.Helper()
	opts := ServerOptions{}
	if adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		opts.AdminPasswordHash = string(hash)
	}
	svc := club.New(store.NewMemoryStore(), zerolog.Nop(), club.Options{Seed: 3})
	return NewServer(svc, zerolog.Nop(), opts).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func createPlayer(t *testing.T, h http.Handler, name string) model.Player {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/players", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating %s, got %d: %s", name, rec.Code, rec.Body.String())
	}
	return decode[model.Player](t, rec)
}

func score(a, b int) map[string]int { return map[string]int{"a": a, "b": b} }

func TestHealthzAndRequestID(t *testing.T) {
	h := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}
}

func TestPlayerEndpoints(t *testing.T) {
	h := newTestServer(t, "")
	createPlayer(t, h, "Bob")
	createPlayer(t, h, "Alice")

	rec := doJSON(t, h, http.MethodPost, "/api/players", map[string]string{"name": "Bob"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/api/players", map[string]string{"name": "  "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for blank name, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/api/players", map[string]string{"nickname": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/players", nil)
	players := decode[[]model.Player](t, rec)
	if len(players) != 2 || players[0].Name != "Alice" {
		t.Fatalf("expected Alice first of two, got %+v", players)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/players/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMatchSubmissionJSON(t *testing.T) {
	h := newTestServer(t, "")
	alice := createPlayer(t, h, "Alice")
	bob := createPlayer(t, h, "Bob")

	rec := doJSON(t, h, http.MethodPost, "/api/matches", map[string]any{
		"player_a_id": alice.ID,
		"player_b_id": bob.ID,
		"set1":        score(6, 4),
		"set2":        score(3, 6),
		"set3":        score(10, 8),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decode[model.Match](t, rec)
	if m.WinnerID != alice.ID || m.Deciding == nil {
		t.Fatalf("expected alice to win in three, got %+v", m)
	}

	entries := decode[[]ladder.Entry](t, doJSON(t, h, http.MethodGet, "/api/ladder", nil))
	if len(entries) != 2 || entries[0].Player.ID != alice.ID || entries[0].Record != "1-0" || entries[1].Rank != 2 {
		t.Fatalf("unexpected ladder: %+v", entries)
	}
}

func TestMatchSubmissionErrors(t *testing.T) {
	h := newTestServer(t, "")
	alice := createPlayer(t, h, "Alice")
	bob := createPlayer(t, h, "Bob")

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		wantSet int
		wantMsg string
	}{
		{"missing player", map[string]any{"player_a_id": alice.ID, "set1": score(6, 0), "set2": score(6, 0)}, http.StatusUnprocessableEntity, 0, "please select both players"},
		{"same player", map[string]any{"player_a_id": alice.ID, "player_b_id": alice.ID, "set1": score(6, 0), "set2": score(6, 0)}, http.StatusUnprocessableEntity, 0, ""},
		{"six five", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 5), "set2": score(6, 0)}, http.StatusUnprocessableEntity, 1, "cannot be 6-5"},
		{"missing set two", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 0)}, http.StatusUnprocessableEntity, 2, "scores are required"},
		{"missing decider", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 0), "set2": score(0, 6)}, http.StatusUnprocessableEntity, 0, "set 3 tiebreaker scores are required"},
		{"bad tiebreak", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 0), "set2": score(0, 6), "set3": score(10, 9)}, http.StatusUnprocessableEntity, 3, "win by at least 2"},
		{"unknown player", map[string]any{"player_a_id": alice.ID, "player_b_id": "ghost", "set1": score(6, 0), "set2": score(6, 0)}, http.StatusUnprocessableEntity, 0, ""},
		{"bad first set with half decider", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 5), "set2": score(3, 6), "set3": map[string]int{"a": 10}}, http.StatusUnprocessableEntity, 1, "cannot be 6-5"},
		{"bad second set with half decider", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 3), "set2": score(4, 5), "set3": map[string]int{"b": 4}}, http.StatusUnprocessableEntity, 2, "winner must have at least 6 games"},
		{"missing player with half decider", map[string]any{"player_a_id": alice.ID, "set1": score(6, 0), "set2": score(0, 6), "set3": map[string]int{"a": 10}}, http.StatusUnprocessableEntity, 0, "please select both players"},
		{"half decider", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 0), "set2": score(0, 6), "set3": map[string]int{"a": 10}}, http.StatusUnprocessableEntity, 3, "scores are required"},
		{"empty decider object", map[string]any{"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 0), "set2": score(0, 6), "set3": map[string]int{}}, http.StatusUnprocessableEntity, 0, "set 3 tiebreaker scores are required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/matches", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			body := decode[errorResponse](t, rec)
			if body.Set != tc.wantSet {
				t.Fatalf("expected set %d, got %d", tc.wantSet, body.Set)
			}
			if tc.wantMsg != "" && !strings.Contains(body.Error, tc.wantMsg) {
				t.Fatalf("expected error containing %q, got %q", tc.wantMsg, body.Error)
			}
		})
	}

	matches := decode[[]model.Match](t, doJSON(t, h, http.MethodGet, "/api/matches", nil))
	if len(matches) != 0 {
		t.Fatalf("expected no stored matches, got %d", len(matches))
	}
}

func TestMatchSubmissionForm(t *testing.T) {
	h := newTestServer(t, "")
	alice := createPlayer(t, h, "Alice")
	bob := createPlayer(t, h, "Bob")

	post := func(values url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/matches", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post(url.Values{
		"player_a": {alice.ID}, "player_b": {bob.ID},
		"set_1_a": {"4"}, "set_1_b": {"6"},
		"set_2_a": {"5"}, "set_2_b": {"7"},
		"set_3_a": {"10"}, "set_3_b": {"0"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	m := decode[model.Match](t, rec)
	if m.WinnerID != bob.ID || m.Deciding != nil {
		t.Fatalf("expected bob straight-sets win with decider dropped, got %+v", m)
	}

	rec = post(url.Values{
		"player_a": {alice.ID}, "player_b": {bob.ID},
		"set_1_a": {"six"}, "set_1_b": {"2"},
		"set_2_a": {"6"}, "set_2_b": {"2"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for non-numeric score, got %d", rec.Code)
	}
	if body := decode[errorResponse](t, rec); body.Set != 1 {
		t.Fatalf("expected set 1 error, got %+v", body)
	}

	rec = post(url.Values{
		"player_a": {alice.ID}, "player_b": {bob.ID},
		"set_1_a": {"6"}, "set_1_b": {"5"},
		"set_2_a": {"3"}, "set_2_b": {"6"},
		"set_3_a": {"10"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for illegal set 1, got %d", rec.Code)
	}
	if body := decode[errorResponse](t, rec); body.Set != 1 || !strings.Contains(body.Error, "cannot be 6-5") {
		t.Fatalf("expected set 1 error ahead of set 3, got %+v", body)
	}

	rec = post(url.Values{
		"player_a": {alice.ID}, "player_b": {bob.ID},
		"set_1_a": {"6"}, "set_1_b": {"1"},
		"set_2_a": {"3"}, "set_2_b": {"6"},
		"set_3_b": {"7"},
	})
	if body := decode[errorResponse](t, rec); rec.Code != http.StatusUnprocessableEntity || body.Set != 3 {
		t.Fatalf("expected set 3 error once sets 1 and 2 are legal, got %d %+v", rec.Code, body)
	}
}

func TestLadderGrouping(t *testing.T) {
	h := newTestServer(t, "")
	alice := createPlayer(t, h, "Alice")
	bob := createPlayer(t, h, "Bob")
	createPlayer(t, h, "Carol")
	doJSON(t, h, http.MethodPost, "/api/matches", map[string]any{
		"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 1), "set2": score(6, 1),
	})

	groups := decode[[]ladder.Group](t, doJSON(t, h, http.MethodGet, "/api/ladder?group=record", nil))
	if len(groups) != 3 || groups[0].Key != "1-0" || groups[1].Key != "0-1" || groups[2].Key != "0-0" {
		t.Fatalf("unexpected record groups: %+v", groups)
	}
	groups = decode[[]ladder.Group](t, doJSON(t, h, http.MethodGet, "/api/ladder?group=wins", nil))
	if len(groups) != 2 || groups[0].Key != "1" || len(groups[1].Entries) != 2 {
		t.Fatalf("unexpected win groups: %+v", groups)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/ladder?group=elo", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown grouping, got %d", rec.Code)
	}
}

func TestOpponentsAndSuggestion(t *testing.T) {
	h := newTestServer(t, "")
	alice := createPlayer(t, h, "Alice")
	bob := createPlayer(t, h, "Bob")
	carol := createPlayer(t, h, "Carol")
	doJSON(t, h, http.MethodPost, "/api/matches", map[string]any{
		"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 1), "set2": score(6, 1),
	})

	opp := decode[opponentsResponse](t, doJSON(t, h, http.MethodGet, "/api/players/"+alice.ID+"/opponents", nil))
	if len(opp.Opponents) != 1 || opp.Opponents[0] != bob.ID {
		t.Fatalf("expected bob as only opponent, got %+v", opp)
	}

	pick := decode[ladder.Entry](t, doJSON(t, h, http.MethodGet, "/api/players/"+alice.ID+"/suggestion", nil))
	if pick.Player.ID != carol.ID {
		t.Fatalf("expected carol suggestion, got %+v", pick)
	}

	doJSON(t, h, http.MethodPost, "/api/matches", map[string]any{
		"player_a_id": alice.ID, "player_b_id": carol.ID, "set1": score(6, 1), "set2": score(6, 1),
	})
	if rec := doJSON(t, h, http.MethodGet, "/api/players/"+alice.ID+"/suggestion", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without eligible opponents, got %d", rec.Code)
	}
}

func TestAdminGuard(t *testing.T) {
	h := newTestServer(t, "s3cret")
	alice := createPlayer(t, h, "Alice")
	bob := createPlayer(t, h, "Bob")
	m := decode[model.Match](t, doJSON(t, h, http.MethodPost, "/api/matches", map[string]any{
		"player_a_id": alice.ID, "player_b_id": bob.ID, "set1": score(6, 1), "set2": score(6, 1),
	}))

	if rec := doJSON(t, h, http.MethodDelete, "/api/matches/"+m.ID, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without password, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, "/api/matches/"+m.ID, nil, adminPasswordHeader, "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong password, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, "/api/matches/"+m.ID, nil, adminPasswordHeader, "s3cret"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, "/api/matches/"+m.ID, nil, adminPasswordHeader, "s3cret"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, "/api/players/"+alice.ID, nil, adminPasswordHeader, "s3cret"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting player, got %d", rec.Code)
	}
	players := decode[[]model.Player](t, doJSON(t, h, http.MethodGet, "/api/players", nil))
	if len(players) != 1 || players[0].ID != bob.ID {
		t.Fatalf("expected only bob left, got %+v", players)
	}
}

type unavailableStore struct {
	*store.MemoryStore
}

func (unavailableStore) ListPlayers(ctx context.Context) ([]model.Player, error) {
	return nil, errors.New("connection refused")
}

func TestInternalErrorCarriesRequestID(t *testing.T) {
	svc := club.New(unavailableStore{store.NewMemoryStore()}, zerolog.Nop(), club.Options{Seed: 1})
	h := NewServer(svc, zerolog.Nop(), ServerOptions{}).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/ladder", nil)
	req.Header.Set("X-Request-ID", "req-500")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.RequestID != "req-500" || body.Error != "internal error" {
		t.Fatalf("expected hidden error with request id, got %+v", body)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected storage detail to stay out of the response, got %s", rec.Body.String())
	}
}
