package validation

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/storage"
)

var (
	ErrMissingURL    = errors.New("RSS URL cannot be empty")
	ErrMissingSeason = errors.New("season cannot be empty")
	ErrMissingTitle  = errors.New("title cannot be empty")
	ErrMissingOffset = errors.New("episode offset cannot be empty")
)

// FieldError names the subscription field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }

// Subscription checks the fields every stored subscription must carry. A
// nil exclude list is repaired to an empty one rather than rejected.
func Subscription(sub *storage.Subscription) error {
	if sub == nil {
		return &FieldError{Field: "url", Err: ErrMissingURL}
	}
	if strings.TrimSpace(sub.URL) == "" {
		return &FieldError{Field: "url", Err: ErrMissingURL}
	}
	if sub.Exclude == nil {
		sub.Exclude = []string{}
	}
	if sub.Season == nil {
		return &FieldError{Field: "season", Err: ErrMissingSeason}
	}
	if strings.TrimSpace(sub.Title) == "" {
		return &FieldError{Field: "title", Err: ErrMissingTitle}
	}
	if sub.Offset == nil {
		return &FieldError{Field: "offset", Err: ErrMissingOffset}
	}
	return nil
}
