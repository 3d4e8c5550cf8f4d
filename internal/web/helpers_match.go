package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"club-ladder/internal/club"
	"club-ladder/internal/ladder"
	"club-ladder/internal/model"
)

const maxBodyBytes = 1 << 16

type setPayload struct {
	A *int `json:"a"`
	B *int `json:"b"`
}

type matchPayload struct {
	PlayerAID string      `json:"player_a_id"`
	PlayerBID string      `json:"player_b_id"`
	Set1      *setPayload `json:"set1"`
	Set2      *setPayload `json:"set2"`
	Set3      *setPayload `json:"set3"`
}

// parseSubmission reads a match report from a JSON body or an HTML form.
func parseSubmission(w http.ResponseWriter, r *http.Request) (club.Submission, error) {
	if isJSON(r) {
		var p matchPayload
		if err := decodeJSON(w, r, &p); err != nil {
			return club.Submission{}, err
		}
		return p.submission()
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return club.Submission{}, fmt.Errorf("%w: %v", errBadBody, err)
	}
	return parseSubmissionForm(r)
}

func (p matchPayload) submission() (club.Submission, error) {
	sub := club.Submission{PlayerAID: p.PlayerAID, PlayerBID: p.PlayerBID}
	var err error
	if sub.Set1, err = p.Set1.score(1); err != nil {
		return club.Submission{}, err
	}
	if sub.Set2, err = p.Set2.score(2); err != nil {
		return club.Submission{}, err
	}
	if ladder.NeedsDecidingSet(sub.Set1, sub.Set2) && !p.Set3.empty() {
		deciding, err := p.Set3.score(ladder.DecidingSetIndex)
		if err != nil {
			return club.Submission{}, earlierError(sub, err)
		}
		sub.Deciding = &deciding
	}
	return sub, nil
}

// empty reports a set object with neither score, treated like an omitted set.
func (s *setPayload) empty() bool {
	return s == nil || (s.A == nil && s.B == nil)
}

func (s *setPayload) score(index int) (model.SetScore, error) {
	if s == nil || s.A == nil || s.B == nil {
		return model.SetScore{}, &ladder.SetScoreError{Set: index, Reason: "scores are required"}
	}
	return model.SetScore{A: *s.A, B: *s.B}, nil
}

// parseSubmissionForm reads player_a, player_b and set_N_a/set_N_b fields.
// Set 3 is only read when the first two sets were split and at least one of
// its fields is filled in.
func parseSubmissionForm(r *http.Request) (club.Submission, error) {
	sub := club.Submission{
		PlayerAID: formValue(r, "player_a_id", "player_a"),
		PlayerBID: formValue(r, "player_b_id", "player_b"),
	}
	var err error
	if sub.Set1, err = formSet(r, 1); err != nil {
		return club.Submission{}, err
	}
	if sub.Set2, err = formSet(r, 2); err != nil {
		return club.Submission{}, err
	}
	if !ladder.NeedsDecidingSet(sub.Set1, sub.Set2) {
		return sub, nil
	}
	a, b := setFields(ladder.DecidingSetIndex)
	if strings.TrimSpace(r.FormValue(a)) == "" && strings.TrimSpace(r.FormValue(b)) == "" {
		return sub, nil
	}
	deciding, err := formSet(r, ladder.DecidingSetIndex)
	if err != nil {
		return club.Submission{}, earlierError(sub, err)
	}
	sub.Deciding = &deciding
	return sub, nil
}

// earlierError returns the resolver's verdict on the players and sets 1 and 2
// when it fails, and decidingErr otherwise, so the earliest problem is reported.
func earlierError(sub club.Submission, decidingErr error) error {
	_, err := ladder.ResolveMatch(sub.PlayerAID, sub.PlayerBID, sub.Set1, sub.Set2, nil)
	if err != nil && !errors.Is(err, ladder.ErrMissingDecidingSet) {
		return err
	}
	return decidingErr
}

func formSet(r *http.Request, index int) (model.SetScore, error) {
	a, b := setFields(index)
	return ladder.ParseSetScore(index, r.FormValue(a), r.FormValue(b))
}

func setFields(index int) (string, string) {
	return fmt.Sprintf("set_%d_a", index), fmt.Sprintf("set_%d_b", index)
}

func formValue(r *http.Request, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(r.FormValue(key)); v != "" {
			return v
		}
	}
	return ""
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}
