package subscription

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/anirss/internal/debuglog"
)

const coverWorkers = 4

// RefreshCovers re-caches the cover of every stored subscription and
// persists the new names. It returns the number of records that changed.
func (r *Resolver) RefreshCovers(ctx context.Context, overwrite bool) (int, error) {
	if r.deps.Covers == nil {
		return 0, nil
	}
	subs := r.deps.Store.All()
	names := make([]string, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(coverWorkers)
	for i, sub := range subs {
		image := sub.Image
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			names[i] = r.deps.Covers.Save(gctx, image, overwrite)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	changed := 0
	for i, sub := range subs {
		if sub.Cover == names[i] {
			continue
		}
		updated := sub.Clone()
		updated.Cover = names[i]
		if r.deps.Store.Replace(updated) {
			changed++
		}
	}
	if changed > 0 {
		if res := r.deps.Store.Sync(); !res.OK() {
			debuglog.Warnf("covers refreshed but not persisted: %v", res.Err)
		}
	}
	return changed, nil
}
