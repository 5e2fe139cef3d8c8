package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/anirss/internal/storage"
)

// mockProvider is a test provider for testing the registry
type mockProvider struct {
	name      string
	priority  int
	canHandle func(string) bool
	populate  func(context.Context, Request, *storage.Subscription) error
}

func (p *mockProvider) Name() string {
	return p.name
}

func (p *mockProvider) CanHandle(typ string) bool {
	if p.canHandle != nil {
		return p.canHandle(typ)
	}
	return false
}

func (p *mockProvider) Populate(ctx context.Context, req Request, sub *storage.Subscription) error {
	if p.populate != nil {
		return p.populate(ctx, req, sub)
	}
	sub.Title = "Mock Title"
	return nil
}

func (p *mockProvider) Priority() int {
	return p.priority
}

type stubParser struct {
	subgroupID string
	err        error
}

func (s *stubParser) Parse(_ context.Context, sub *storage.Subscription, subgroupID string) error {
	s.subgroupID = subgroupID
	if s.err != nil {
		return s.err
	}
	sub.Title = "葬送的芙莉莲"
	sub.Subgroup = "ANi"
	return nil
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.NotNil(t, registry)
	assert.Equal(t, 0, len(registry.providers))

	registry = NewRegistry(NewOther(), NewMikan(&stubParser{}))
	assert.Equal(t, 2, len(registry.providers))
}

func TestRegistry_Find(t *testing.T) {
	registry := NewRegistry()

	low := &mockProvider{
		name:      "low-priority",
		priority:  10,
		canHandle: func(typ string) bool { return typ == "mikan" },
	}
	high := &mockProvider{
		name:      "high-priority",
		priority:  100,
		canHandle: func(typ string) bool { return typ == "mikan" },
	}
	other := &mockProvider{
		name:      "different-type",
		priority:  200,
		canHandle: func(typ string) bool { return typ == "other" },
	}

	registry.Register(low)
	registry.Register(high)
	registry.Register(other)

	t.Run("finds highest priority provider", func(t *testing.T) {
		assert.Equal(t, high, registry.Find("mikan"))
	})

	t.Run("finds specific provider", func(t *testing.T) {
		assert.Equal(t, other, registry.Find("other"))
	})

	t.Run("returns nil for no matching provider", func(t *testing.T) {
		assert.Nil(t, registry.Find("nyaa"))
	})
}

func TestRegistry_Populate(t *testing.T) {
	t.Run("without matching provider", func(t *testing.T) {
		_, err := NewRegistry().Populate(context.Background(), Request{Type: "mikan"}, storage.NewSubscription())
		assert.True(t, errors.Is(err, ErrNoProvider))
	})

	t.Run("mikan type goes to mikan", func(t *testing.T) {
		parser := &stubParser{}
		registry := NewRegistry(NewOther(), NewMikan(parser))
		sub := storage.NewSubscription()

		p, err := registry.Populate(context.Background(), Request{Type: "mikan", SubgroupID: "583", BgmURL: "ignored"}, sub)
		require.NoError(t, err)
		assert.Equal(t, "mikan", p.Name())
		assert.Equal(t, "583", parser.subgroupID)
		assert.Equal(t, "ANi", sub.Subgroup)
		assert.Empty(t, sub.BgmURL)
	})

	t.Run("any other type falls back", func(t *testing.T) {
		registry := NewRegistry(NewOther(), NewMikan(&stubParser{}))
		sub := storage.NewSubscription()

		p, err := registry.Populate(context.Background(), Request{Type: "other", BgmURL: "https://bgm.tv/subject/1"}, sub)
		require.NoError(t, err)
		assert.Equal(t, "other", p.Name())
		assert.Equal(t, "https://bgm.tv/subject/1", sub.BgmURL)
		assert.Equal(t, storage.UnknownSubgroup, sub.Subgroup)
	})

	t.Run("provider failure is returned", func(t *testing.T) {
		boom := errors.New("boom")
		registry := NewRegistry(NewMikan(&stubParser{err: boom}))
		_, err := registry.Populate(context.Background(), Request{Type: "mikan"}, storage.NewSubscription())
		assert.ErrorIs(t, err, boom)
	})
}
