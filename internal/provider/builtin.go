package provider

import (
	"context"

	"github.com/pders01/anirss/internal/storage"
)

// MikanParser is the part of mikan.Client the Mikan provider needs.
type MikanParser interface {
	Parse(ctx context.Context, sub *storage.Subscription, subgroupID string) error
}

// Mikan describes feeds published by mikanani.me by scraping the show page.
type Mikan struct {
	client MikanParser
}

func NewMikan(client MikanParser) *Mikan {
	return &Mikan{client: client}
}

func (p *Mikan) Name() string { return storage.TypeMikan }

func (p *Mikan) CanHandle(typ string) bool { return typ == storage.TypeMikan }

func (p *Mikan) Priority() int { return 50 }

func (p *Mikan) Populate(ctx context.Context, req Request, sub *storage.Subscription) error {
	return p.client.Parse(ctx, sub, req.SubgroupID)
}

// Other accepts any feed. It knows nothing about the release group and
// takes the catalog link from the caller.
type Other struct{}

func NewOther() *Other { return &Other{} }

func (p *Other) Name() string { return storage.TypeOther }

func (p *Other) CanHandle(string) bool { return true }

func (p *Other) Priority() int { return 0 }

func (p *Other) Populate(_ context.Context, req Request, sub *storage.Subscription) error {
	sub.BgmURL = req.BgmURL
	sub.Subgroup = storage.UnknownSubgroup
	return nil
}
