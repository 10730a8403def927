package domain

import "errors"

var (
	ErrMoodRequired       = errors.New("mood is required")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrMovieNotFound      = errors.New("movie not found")
	ErrHistoryUnavailable = errors.New("recommendation history is not configured")
)
