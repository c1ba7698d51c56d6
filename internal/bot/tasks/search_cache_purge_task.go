package tasks

import (
	"context"
	"fmt"
)

// newSearchCachePurgeTask drops cached searches older than the cache TTL.
func newSearchCachePurgeTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "search_cache_purge")

	return func(ctx context.Context) error {
		cutoff := deps.Clock.Now().Add(-deps.Config.YouTube.CacheTTL).Unix()

		n, err := deps.Store.PurgeSearchCache(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Search cache purge failed", "error", err)
			return fmt.Errorf("search cache purge failed: %w", err)
		}

		log.InfoContext(ctx, "Purged stale search cache entries", "rows", n, "cutoff", cutoff)
		return nil
	}
}
