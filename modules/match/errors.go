package match

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist (or is already resolved).
	ErrNotFound = errors.New("match: not found")
	// ErrMatchExists indicates a match with the same number already exists.
	ErrMatchExists = errors.New("match: match already exists")
	// ErrUnknownMap indicates the requested map has no seeded roster.
	ErrUnknownMap = errors.New("match: unknown map")
	// ErrDuplicateName indicates the currency name is already taken in the match.
	ErrDuplicateName = errors.New("match: currency name already taken")
	// ErrDuplicateTicker indicates the ticker is already taken in the match.
	ErrDuplicateTicker = errors.New("match: ticker already taken")
	// ErrPendingExists indicates the user already has a pending request in the match.
	ErrPendingExists = errors.New("match: pending request already exists")
)
