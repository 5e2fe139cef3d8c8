package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/anirss/internal/storage"
)

func validSubscription() *storage.Subscription {
	sub := storage.NewSubscription()
	sub.URL = "https://mikanani.me/RSS/Bangumi?bangumiId=3141&subgroupid=583"
	sub.Title = "葬送的芙莉莲"
	return sub
}

func TestSubscription_Valid(t *testing.T) {
	assert.NoError(t, Subscription(validSubscription()))
}

func TestSubscription_FieldFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*storage.Subscription)
		field  string
		target error
	}{
		{
			name:   "blank url",
			mutate: func(s *storage.Subscription) { s.URL = "   " },
			field:  "url",
			target: ErrMissingURL,
		},
		{
			name:   "null season",
			mutate: func(s *storage.Subscription) { s.Season = nil },
			field:  "season",
			target: ErrMissingSeason,
		},
		{
			name:   "blank title",
			mutate: func(s *storage.Subscription) { s.Title = "" },
			field:  "title",
			target: ErrMissingTitle,
		},
		{
			name:   "null offset",
			mutate: func(s *storage.Subscription) { s.Offset = nil },
			field:  "offset",
			target: ErrMissingOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubscription()
			tt.mutate(sub)

			err := Subscription(sub)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestSubscription_FailuresAreDistinct(t *testing.T) {
	targets := []error{ErrMissingURL, ErrMissingSeason, ErrMissingTitle, ErrMissingOffset}
	for i, a := range targets {
		for j, b := range targets {
			if i != j {
				assert.False(t, errors.Is(a, b))
			}
		}
	}
}

func TestSubscription_RepairsNilExclude(t *testing.T) {
	sub := validSubscription()
	sub.Exclude = nil

	require.NoError(t, Subscription(sub))
	assert.NotNil(t, sub.Exclude)
	assert.Empty(t, sub.Exclude)
}

func TestSubscription_Nil(t *testing.T) {
	assert.ErrorIs(t, Subscription(nil), ErrMissingURL)
}

func TestFeedURL(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"  https://mikanani.me/RSS/Bangumi?bangumiId=1  ", "https://mikanani.me/RSS/Bangumi?bangumiId=1", false},
		{"http://127.0.0.1:1200/mikan/bangumi/1", "http://127.0.0.1:1200/mikan/bangumi/1", false},
		{"", "", true},
		{"ftp://example.com/feed", "", true},
		{"mikanani.me/RSS", "", true},
		{"https://exa<mple.com", "", true},
		{"https://" + strings.Repeat("a", MaxURLLength), "", true},
	}

	for _, tt := range tests {
		got, err := FeedURL(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}
