package cache

import "sync/atomic"

// Stats is a snapshot of the cache counters. SharedFetches counts reads
// answered by a fetch that served more than one reader; Discarded counts
// fetch results dropped because a local write raced them.
type Stats struct {
	Hits          int64
	Misses        int64
	Fetches       int64
	SharedFetches int64
	Discarded     int64
	Invalidations int64
}

type counters struct {
	hits          atomic.Int64
	misses        atomic.Int64
	fetches       atomic.Int64
	sharedFetches atomic.Int64
	discarded     atomic.Int64
	invalidations atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Fetches:       c.fetches.Load(),
		SharedFetches: c.sharedFetches.Load(),
		Discarded:     c.discarded.Load(),
		Invalidations: c.invalidations.Load(),
	}
}
