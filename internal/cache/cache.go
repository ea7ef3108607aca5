// Package cache keeps the client's view of the task collections. Reads of a
// key share one fetch, optimistic creates show up at once, and a fetch that
// raced a local write is never stored over it.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"todo-sync/internal/config"
	"todo-sync/internal/domain"
	"todo-sync/internal/logging"
)

// Source loads the collections the cache holds.
type Source interface {
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	SearchTasks(ctx context.Context, query string) ([]*domain.Task, error)
}

// Options tune the cache. StaleTime is how long a fetched collection is
// served without a refetch; zero refetches on every read. FetchTimeout bounds
// one fetch, independent of any caller. MaxRefetch bounds how often a fetch
// that raced a local write is retried.
type Options struct {
	StaleTime    time.Duration
	FetchTimeout time.Duration
	MaxRefetch   int
	Now          func() time.Time
}

// OptionsFromConfig builds options from the cache section of the config.
func OptionsFromConfig(cfg config.CacheConfig) Options {
	return Options{
		StaleTime:    cfg.StaleTime,
		FetchTimeout: cfg.FetchTimeout,
		MaxRefetch:   cfg.MaxRefetch,
	}
}

type entry struct {
	tasks     []*domain.Task
	pending   []*domain.Task
	loaded    bool
	stale     bool
	fetchedAt time.Time
	gen       uint64
}

// TaskCache is safe for concurrent use. Its mutex is never held across a
// call to the source.
type TaskCache struct {
	source Source
	opts   Options
	group  singleflight.Group
	stats  counters

	mu      sync.Mutex
	entries map[QueryKey]*entry
	clock   uint64
}

// New creates an empty cache over source.
func New(source Source, opts Options) *TaskCache {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.MaxRefetch < 0 {
		opts.MaxRefetch = 0
	}
	return &TaskCache{
		source:  source,
		opts:    opts,
		entries: make(map[QueryKey]*entry),
	}
}

// entryLocked returns the entry for key, creating an empty one. c.mu must be held.
func (c *TaskCache) entryLocked(key QueryKey) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{gen: c.clock}
		c.entries[key] = e
	}
	return e
}

// touchLocked records a local write to e. c.mu must be held.
func (c *TaskCache) touchLocked(e *entry) {
	c.clock++
	e.gen = c.clock
}

func (c *TaskCache) freshLocked(e *entry) bool {
	return e.loaded && !e.stale && c.opts.Now().Sub(e.fetchedAt) < c.opts.StaleTime
}

// Get returns the collection for key, fetching it when it is absent, stale
// or invalidated. Concurrent callers share one fetch. A caller whose context
// ends stops waiting at once; the fetch itself carries on for the others.
func (c *TaskCache) Get(ctx context.Context, key QueryKey) ([]*domain.Task, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	if c.freshLocked(e) {
		out := copyTasks(e.tasks)
		c.mu.Unlock()
		c.stats.hits.Add(1)
		logging.Logger().Debug("cache hit", "key", key)
		return out, nil
	}
	gen := e.gen
	c.mu.Unlock()
	c.stats.misses.Add(1)

	flightKey := fmt.Sprintf("%s@%d", key, gen)
	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		return c.fetch(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.stats.sharedFetches.Add(1)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return copyTasks(res.Val.([]*domain.Task)), nil
	}
}

// fetch loads key and stores the result if no local write happened while it
// was in flight. Otherwise it tries again, up to MaxRefetch times, and then
// gives up leaving the entry stale.
func (c *TaskCache) fetch(ctx context.Context, key QueryKey) ([]*domain.Task, error) {
	for attempt := 0; ; attempt++ {
		c.mu.Lock()
		gen := c.entryLocked(key).gen
		c.mu.Unlock()

		tasks, err := c.load(ctx, key)
		if err != nil {
			logging.Logger().Debug("cache fetch failed", "key", key, "err", err)
			return nil, err
		}

		c.mu.Lock()
		e := c.entryLocked(key)
		if e.gen == gen {
			e.tasks = withPending(tasks, e.pending)
			e.loaded = true
			e.stale = false
			e.fetchedAt = c.opts.Now()
			out := e.tasks
			c.mu.Unlock()
			logging.Logger().Debug("cache stored", "key", key, "count", len(out), "attempt", attempt)
			return out, nil
		}

		c.stats.discarded.Add(1)
		if attempt >= c.opts.MaxRefetch {
			var out []*domain.Task
			if e.loaded {
				out = e.tasks
			} else {
				out = withPending(tasks, e.pending)
			}
			c.mu.Unlock()
			logging.Logger().Warn("cache refetch limit reached", "key", key, "attempts", attempt+1)
			return out, nil
		}
		c.mu.Unlock()
		logging.Logger().Debug("cache fetch raced a local write, refetching", "key", key)
	}
}

func (c *TaskCache) load(ctx context.Context, key QueryKey) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()

	c.stats.fetches.Add(1)
	if key.IsAll() {
		return c.source.ListTasks(ctx)
	}
	return c.source.SearchTasks(ctx, key.Text())
}

// Peek returns the cached collection for key without fetching.
func (c *TaskCache) Peek(key QueryKey) ([]*domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.loaded {
		return nil, false
	}
	return copyTasks(e.tasks), true
}

// Find looks a task up by id across every cached collection.
func (c *TaskCache) Find(id string) (*domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		for _, t := range e.tasks {
			if t.ID == id {
				cp := *t
				return &cp, true
			}
		}
	}
	return nil, false
}

// Pending is an optimistic task waiting for the store's answer. Exactly one
// of Confirm or Rollback takes effect; later calls do nothing.
type Pending struct {
	cache *TaskCache
	task  *domain.Task
	once  sync.Once
}

// Task returns the placeholder as shown in the list.
func (p *Pending) Task() domain.Task {
	return *p.task
}

// ApplyOptimisticCreate appends task to the AllTasks collection under a
// temporary id. It stays there, through refetches, until resolved. task.ID,
// when set, is the id the store will give the task; a refetch that already
// returns that id hides the placeholder.
func (c *TaskCache) ApplyOptimisticCreate(task domain.Task) *Pending {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.ID = PlaceholderPrefix + task.ID
	placeholder := &task

	c.mu.Lock()
	e := c.entryLocked(AllTasks())
	e.tasks = append(copySlice(e.tasks), placeholder)
	e.pending = append(copySlice(e.pending), placeholder)
	c.touchLocked(e)
	c.mu.Unlock()

	logging.Logger().Debug("optimistic create", "placeholder", task.ID)
	return &Pending{cache: c, task: placeholder}
}

// Confirm replaces the placeholder with the stored task.
func (p *Pending) Confirm(confirmed domain.Task) {
	p.once.Do(func() { p.cache.resolve(p.task.ID, &confirmed) })
}

// Rollback removes the placeholder, leaving the list as it was before.
func (p *Pending) Rollback() {
	p.once.Do(func() { p.cache.resolve(p.task.ID, nil) })
}

func (c *TaskCache) resolve(placeholderID string, confirmed *domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[AllTasks()]
	if !ok || !containsID(e.pending, placeholderID) {
		// Dropped by Reset: the list now belongs to another session.
		return
	}
	e.pending = removeID(e.pending, placeholderID)
	e.tasks = Reconcile(e.tasks, placeholderID, confirmed)
	c.touchLocked(e)
	logging.Logger().Debug("optimistic create resolved", "placeholder", placeholderID, "confirmed", confirmed != nil)
}

// Invalidate marks key stale so the next read refetches.
func (c *TaskCache) Invalidate(key QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.invalidateLocked(e)
	}
}

// InvalidateSearches marks every search collection stale, leaving AllTasks.
func (c *TaskCache) InvalidateSearches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !key.IsAll() {
			c.invalidateLocked(e)
		}
	}
}

// InvalidateAll marks every collection stale.
func (c *TaskCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		c.invalidateLocked(e)
	}
}

func (c *TaskCache) invalidateLocked(e *entry) {
	e.stale = true
	c.touchLocked(e)
	c.stats.invalidations.Add(1)
}

// Reset drops every collection and pending placeholder. Fetches in flight
// when it is called are not stored.
func (c *TaskCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[QueryKey]*entry)
	c.clock++
	logging.Logger().Debug("cache reset")
}

// Stats returns a snapshot of the counters.
func (c *TaskCache) Stats() Stats {
	return c.stats.snapshot()
}

// withPending returns fetched followed by the unresolved placeholders whose
// stored row is not already part of fetched.
func withPending(fetched, pending []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, 0, len(fetched)+len(pending))
	out = append(out, fetched...)
	for _, p := range pending {
		if !containsID(fetched, StoredID(p.ID)) {
			out = append(out, p)
		}
	}
	return out
}

// copyTasks returns copies of the tasks so callers cannot change the cache.
func copyTasks(tasks []*domain.Task) []*domain.Task {
	out := make([]*domain.Task, len(tasks))
	for i, t := range tasks {
		cp := *t
		out[i] = &cp
	}
	return out
}

func copySlice(tasks []*domain.Task) []*domain.Task {
	return append(make([]*domain.Task, 0, len(tasks)+1), tasks...)
}

func containsID(tasks []*domain.Task, id string) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func removeID(tasks []*domain.Task, id string) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
