// Package refresh implements the two cache-population strategies:
// a background sweep fired once after the LSP "initialized"
// notification, and an on-demand fill run inside did_open/did_change.
// Both share the cache's fetching_since lock primitive and the same
// per-kind stagger, so the sweep and a document's fill never flood one
// registry with simultaneous requests for the kind they overlap on.
package refresh

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skanehira/version-lsp/internal/cache"
	"github.com/skanehira/version-lsp/internal/domain"
	"github.com/skanehira/version-lsp/internal/errs"
	"github.com/skanehira/version-lsp/internal/logctx"
	"github.com/skanehira/version-lsp/internal/resolver"
	"github.com/skanehira/version-lsp/pkg/observability"
)

// stagger is the per-fetch delay within one kind's batch: the Nth fetch
// waits N*stagger before starting.
const stagger = 10 * time.Millisecond

// Orchestrator runs the background sweep and on-demand fill against one
// cache and resolver registry.
type Orchestrator struct {
	Cache           *cache.Cache
	Registry        *resolver.Registry
	RefreshInterval time.Duration
}

// Sweep groups stale (kind, name) rows by kind and fetches each,
// staggered within a kind and parallel across kinds. It never blocks
// "initialized" — callers invoke it with `go orch.Sweep(ctx)` — and
// never returns an error to the caller: every per-package failure is
// logged and swallowed.
func (o *Orchestrator) Sweep(ctx context.Context) {
	sweepID := uuid.NewString()
	logger := logctx.FromContext(ctx).With("sweep_id", sweepID)
	ctx = logctx.WithLogger(ctx, logger)

	stale, err := o.Cache.GetPackagesNeedingRefresh(ctx, o.RefreshInterval, now())
	if err != nil {
		logger.Warn("listing packages needing refresh", "error", err)
		return
	}
	if len(stale) == 0 {
		return
	}
	logger.Info("sweep starting", "stale_count", len(stale))

	byKind := map[domain.RegistryKind][]cache.Package{}
	for _, p := range stale {
		byKind[p.Kind] = append(byKind[p.Kind], p)
	}

	g, gctx := errgroup.WithContext(ctx)
	for kind, pkgs := range byKind {
		kind, pkgs := kind, pkgs
		g.Go(func() error {
			o.fetchBatch(gctx, kind, pkgs)
			return nil
		})
	}
	_ = g.Wait()
}

// fetchBatch fetches every package in pkgs (all the same kind),
// staggering the Nth fetch by N*stagger.
func (o *Orchestrator) fetchBatch(ctx context.Context, kind domain.RegistryKind, pkgs []cache.Package) {
	logger := logctx.FromContext(ctx)
	res := o.Registry.For(kind)
	if res == nil {
		return
	}

	observability.Resolve().OnFillStart(ctx, string(kind), len(pkgs))
	start := time.Now()
	fetched := 0
	for i, p := range pkgs {
		if i > 0 {
			select {
			case <-ctx.Done():
				observability.Resolve().OnFillComplete(ctx, string(kind), fetched, time.Since(start))
				return
			case <-time.After(time.Duration(i) * stagger):
			}
		}
		if err := o.fetchOne(ctx, res, kind, p.Name); err != nil {
			logger.Warn("refresh fetch failed", "kind", kind, "name", p.Name, "error", err)
		}
		fetched++
	}
	observability.Resolve().OnFillComplete(ctx, string(kind), fetched, time.Since(start))
}

// FillMissing fetches exactly the names in names (a kind's on-demand
// worklist), staggered the same way as the sweep, skipping any name
// whose lock another process already holds. Returns the names that were
// actually fetched (successfully or not); names skipped for a held lock
// are not included.
func (o *Orchestrator) FillMissing(ctx context.Context, kind domain.RegistryKind, names []string) []string {
	res := o.Registry.For(kind)
	if res == nil || len(names) == 0 {
		return nil
	}
	logger := logctx.FromContext(ctx)

	observability.Resolve().OnFillStart(ctx, string(kind), len(names))
	start := time.Now()

	var fetched []string
	for i, name := range names {
		if i > 0 {
			select {
			case <-ctx.Done():
				observability.Resolve().OnFillComplete(ctx, string(kind), len(fetched), time.Since(start))
				return fetched
			case <-time.After(time.Duration(i) * stagger):
			}
		}
		claimed, err := o.Cache.TryStartFetch(ctx, kind, name, now())
		if err != nil {
			logger.Warn("claiming fetch lock failed", "kind", kind, "name", name, "error", err)
			continue
		}
		if !claimed {
			continue
		}
		if err := o.doFetch(ctx, res, kind, name); err != nil {
			logger.Warn("on-demand fetch failed", "kind", kind, "name", name, "error", err)
		}
		fetched = append(fetched, name)
	}
	observability.Resolve().OnFillComplete(ctx, string(kind), len(fetched), time.Since(start))
	return fetched
}

// fetchOne claims the lock, fetches, and releases the lock — the
// sweep's unit of work. It returns an error only to drive the caller's
// one log line; the lock is always released either way.
func (o *Orchestrator) fetchOne(ctx context.Context, res *resolver.Resolver, kind domain.RegistryKind, name string) error {
	claimed, err := o.Cache.TryStartFetch(ctx, kind, name, now())
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	return o.doFetch(ctx, res, kind, name)
}

// doFetch performs the fetch against an already-claimed lock and always
// releases it: on success via ReplaceVersions/MarkNotFound (which clear
// the lock themselves), on any other error via FinishFetch.
func (o *Orchestrator) doFetch(ctx context.Context, res *resolver.Resolver, kind domain.RegistryKind, name string) error {
	result, err := res.Client.Fetch(ctx, name)
	if err != nil {
		if isNotFound(err) {
			if merr := o.Cache.MarkNotFound(ctx, kind, name, now()); merr != nil {
				_ = o.Cache.FinishFetch(ctx, kind, name)
				return merr
			}
			return nil
		}
		if ferr := o.Cache.FinishFetch(ctx, kind, name); ferr != nil {
			return ferr
		}
		return err
	}
	if err := o.Cache.ReplaceVersions(ctx, kind, name, result.Versions, result.DistTags, now()); err != nil {
		_ = o.Cache.FinishFetch(ctx, kind, name)
		return err
	}
	return nil
}

func isNotFound(err error) bool { return errs.Is(err, errs.CodeNotFound) }

func now() time.Time { return time.Now() }
