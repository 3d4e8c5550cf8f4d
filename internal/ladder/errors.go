package ladder

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPlayer      = errors.New("please select both players")
	ErrDuplicatePlayers   = errors.New("players must be different")
	ErrInvalidSetScore    = errors.New("invalid set score")
	ErrMissingDecidingSet = errors.New("set 3 tiebreaker scores are required")
	ErrAmbiguousSetSplit  = errors.New("match must be best of 3 sets")
)

// SetScoreError reports a malformed or illegal score for one set.
// It matches ErrInvalidSetScore with errors.Is.
type SetScoreError struct {
	Set    int
	Reason string
}

func (e *SetScoreError) Error() string {
	return fmt.Sprintf("set %d %s", e.Set, e.Reason)
}

func (e *SetScoreError) Is(target error) bool {
	return target == ErrInvalidSetScore
}

func setError(set int, reason string) error {
	return &SetScoreError{Set: set, Reason: reason}
}

// IsValidationError reports whether err rejects a submission rather than
// signalling an internal failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingPlayer) ||
		errors.Is(err, ErrDuplicatePlayers) ||
		errors.Is(err, ErrInvalidSetScore) ||
		errors.Is(err, ErrMissingDecidingSet) ||
		errors.Is(err, ErrAmbiguousSetSplit)
}
