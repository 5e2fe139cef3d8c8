package subscription

import (
	"github.com/pkg/errors"
)

var (
	// ErrFetchFailed matches every ProviderError.
	ErrFetchFailed = errors.New("fetching subscription info failed")

	// ErrDuplicate is returned by Add for a URL that is already subscribed.
	ErrDuplicate = errors.New("subscription already exists")
)

// ProviderError reports a failure of the provider that describes a new
// subscription. No record is produced when it occurs. The cause is kept
// for the message only and does not unwrap, so a provider fetch never
// matches the feed transport errors of offset inference.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + ErrFetchFailed.Error() + ": " + e.Err.Error()
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrFetchFailed
}
