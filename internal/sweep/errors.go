package sweep

import "errors"

var (
	// ErrInvalidParameter is returned before any invocation when sweep arguments are out of range.
	ErrInvalidParameter = errors.New("invalid sweep parameter")
	// ErrEmptyBatch means every trial of a batch was rejected.
	ErrEmptyBatch = errors.New("empty observation batch")
)
