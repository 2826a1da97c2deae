package repository

import "errors"

var (
	// ErrNotFound indicates the requested aggregate does not exist (or is deleted).
	ErrNotFound = errors.New("repository: not found")
	// ErrVersionConflict indicates the stream advanced past the expected version.
	// The conflict is retryable: callers may reload, reapply and re-save; the
	// core itself never retries.
	ErrVersionConflict = errors.New("repository: stream version conflict")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
