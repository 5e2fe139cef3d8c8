// Package provider dispatches a new subscription to the source that knows
// how to describe it.
package provider

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/storage"
)

// ErrNoProvider is returned when no registered provider handles a type.
var ErrNoProvider = errors.New("no provider for subscription type")

// Request carries what the caller knows about a subscription before any
// provider has looked at it.
type Request struct {
	URL        string
	Type       string
	SubgroupID string
	BgmURL     string
}

// Provider fills in a subscription for the feed types it understands.
type Provider interface {
	// Name returns the provider name for identification
	Name() string

	// CanHandle returns true if this provider understands the subscription type
	CanHandle(typ string) bool

	// Populate writes what the provider knows about req into sub. This may
	// involve HTTP requests.
	Populate(ctx context.Context, req Request, sub *storage.Subscription) error

	// Priority returns the priority of this provider (higher = higher priority)
	// Useful when multiple providers can handle the same type
	Priority() int
}

// Registry manages all registered providers
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make([]Provider, 0, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider to the registry
func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
}

// Find returns the provider with highest priority that can handle typ.
func (r *Registry) Find(typ string) Provider {
	var best Provider
	highestPriority := -1

	for _, p := range r.providers {
		if p.CanHandle(typ) && p.Priority() > highestPriority {
			best = p
			highestPriority = p.Priority()
		}
	}

	return best
}

// Populate runs the best provider for req.Type against sub.
func (r *Registry) Populate(ctx context.Context, req Request, sub *storage.Subscription) (Provider, error) {
	p := r.Find(req.Type)
	if p == nil {
		return nil, errors.Wrapf(ErrNoProvider, "type %q", req.Type)
	}
	return p, p.Populate(ctx, req, sub)
}

