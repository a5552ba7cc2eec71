package errors

import "errors"

var (
	ErrNotFound = errors.New("professional not found")

	ErrInvalidID = errors.New("invalid professional ID format")
)
