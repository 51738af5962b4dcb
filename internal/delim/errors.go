package delim

import "errors"

var (
	// ErrNotDelimited is returned when no separator yields a consistent
	// column count over the sampled lines. It is a format error and is not
	// retried with other assumptions.
	ErrNotDelimited = errors.New("input could not be recognized as a delimited file")

	// ErrNoSource is returned when the opener does not know the source name.
	ErrNoSource = errors.New("source not found")

	// ErrMarkerNotFound is returned when a skip-until marker never appears.
	ErrMarkerNotFound = errors.New("skip-until marker not found")

	// ErrInvalidSeparator is returned when a separator setting cannot be
	// parsed.
	ErrInvalidSeparator = errors.New("invalid separator")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")
)
