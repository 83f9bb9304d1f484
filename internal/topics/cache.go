// Package topics keeps the exam topic list available to screens with a
// stale-while-revalidate cache persisted in local storage.
package topics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/internal/storage"
	"github.com/example/certifai/pkg/models"
)

// ErrTopicsUnavailable is returned by Load when the first fetch fails and nothing is cached.
var ErrTopicsUnavailable = errors.New("topics unavailable")

// State is the lifecycle state of the cache
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Origin tells where the topics currently held came from
type Origin int

const (
	OriginNone Origin = iota
	OriginCache
	OriginRemote
)

// Cache holds the topic list for one login session.
//
// Load surfaces a persisted list immediately, whatever its age, and refreshes it in
// the background once it is older than the staleness window. Without a persisted list
// it blocks on the source. Refresh results are applied only while the generation that
// started them is current; Reset and Close start a new generation.
type Cache struct {
	store  storage.Store
	source Source
	log    *logger.Logger

	now          func() time.Time
	window       time.Duration
	fetchTimeout time.Duration

	mu         sync.RWMutex
	state      State
	origin     Origin
	topics     []models.Topic
	fetchedAt  time.Time
	err        error
	generation uint64
	closed     bool
	loadDone   chan struct{}

	refreshes singleflight.Group
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// Option configures a Cache
type Option func(*Cache)

// WithClock overrides the wall clock
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithStalenessWindow overrides the 24h staleness window
func WithStalenessWindow(d time.Duration) Option {
	return func(c *Cache) { c.window = d }
}

// WithFetchTimeout bounds every call to the source; zero means no bound
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fetchTimeout = d }
}

// New creates an uninitialized cache
func New(store storage.Store, source Source, log *logger.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:        store,
		source:       source,
		log:          log.With("component", "topics.Cache"),
		now:          time.Now,
		window:       StalenessWindow,
		fetchTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Load moves the cache out of Uninitialized. It runs once per login session;
// later calls wait for the first one and return its outcome.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("topic cache is closed")
	}
	if c.state == StateLoading {
		done := c.loadDone
		c.mu.Unlock()
		select {
		case <-done:
			return c.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if c.state != StateUninitialized {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.state = StateLoading
	done := make(chan struct{})
	c.loadDone = done
	gen := c.generation
	c.mu.Unlock()
	defer close(done)

	if entry, ok := c.readPersisted(ctx); ok {
		if !c.apply(gen, entry.Topics, entry.FetchedAt(), OriginCache) {
			return nil
		}
		if entry.IsStale(c.now(), c.window) {
			c.log.Info("cached topics expired, refreshing in background",
				"fetched_at", entry.FetchedAt(), "count", len(entry.Topics))
			c.refreshInBackground(gen)
		} else {
			c.log.Debug("using cached topics", "count", len(entry.Topics))
		}
		return nil
	}

	c.log.Info("no cached topics, fetching from source")
	fetchedAt := c.now()
	fetched, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			return nil
		}
		c.state = StateError
		c.err = fmt.Errorf("%w: %v", ErrTopicsUnavailable, err)
		c.log.Error("failed to load topics", "error", err)
		return c.err
	}
	if !c.apply(gen, fetched, fetchedAt, OriginRemote) {
		return nil
	}
	c.persist(ctx, fetched, fetchedAt)
	return nil
}

// Revalidate starts a background refresh when the held topics are older than the
// staleness window. It reports whether a refresh was started and never blocks on the source.
func (c *Cache) Revalidate() bool {
	c.mu.RLock()
	state, gen, fetchedAt := c.state, c.generation, c.fetchedAt
	c.mu.RUnlock()

	if state != StateReady || c.now().Sub(fetchedAt) <= c.window {
		return false
	}
	return c.refreshInBackground(gen)
}

// TopicsForExam returns the modules of the exam, matched on prova ignoring case and
// surrounding whitespace, with the first letter upper-cased. It never fails: no
// data, a blank exam id and no match all give an empty slice.
func (c *Cache) TopicsForExam(examID string) []string {
	modules := []string{}
	exam := strings.ToLower(strings.TrimSpace(examID))
	if exam == "" {
		return modules
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.topics {
		if strings.ToLower(strings.TrimSpace(t.Prova)) == exam {
			modules = append(modules, capitalizeFirst(t.Modulo))
		}
	}
	return modules
}

// Exams returns the distinct exam ids of the held topics, lower-cased and trimmed,
// in order of first appearance.
func (c *Cache) Exams() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exams := []string{}
	seen := make(map[string]bool)
	for _, t := range c.topics {
		exam := strings.ToLower(strings.TrimSpace(t.Prova))
		if exam == "" || seen[exam] {
			continue
		}
		seen[exam] = true
		exams = append(exams, exam)
	}
	return exams
}

// Topics returns a copy of the full topic list
func (c *Cache) Topics() []models.Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// State returns the lifecycle state
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Origin returns where the held topics came from
func (c *Cache) Origin() Origin {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin
}

// Loading reports whether the blocking first load is in progress
func (c *Cache) Loading() bool {
	return c.State() == StateLoading
}

// Err returns the load error, set only in StateError
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// FetchedAt returns when the held topics were fetched from the source
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Reset ends the login session. The in-memory list is dropped and results of
// fetches still in flight are discarded; the persisted record is kept.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.state = StateUninitialized
	c.origin = OriginNone
	c.topics = nil
	c.fetchedAt = time.Time{}
	c.err = nil
}

// Close discards in-flight results and waits for background refreshes to return.
func (c *Cache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func (c *Cache) readPersisted(ctx context.Context) (Entry, bool) {
	raw, ok, err := c.store.Get(ctx, CacheKey)
	if err != nil {
		c.log.Warn("failed to read cached topics", "error", err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	entry, err := DecodeEntry(raw)
	if err != nil {
		c.log.Warn("ignoring cached topics", "error", err)
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) fetch(ctx context.Context) ([]models.Topic, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}
	fetched, err := c.source.FetchTopics(ctx)
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		fetched = []models.Topic{}
	}
	return fetched, nil
}

// apply installs topics if gen is still the current generation.
func (c *Cache) apply(gen uint64, list []models.Topic, fetchedAt time.Time, origin Origin) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		c.log.Debug("discarding topics from a superseded session", "generation", gen)
		return false
	}
	c.topics = list
	c.fetchedAt = fetchedAt
	c.origin = origin
	c.state = StateReady
	c.err = nil
	return true
}

func (c *Cache) persist(ctx context.Context, list []models.Topic, fetchedAt time.Time) {
	raw, err := NewEntry(list, fetchedAt).Encode()
	if err != nil {
		c.log.Warn("failed to encode topics for cache", "error", err)
		return
	}
	if err := c.store.Set(ctx, CacheKey, raw); err != nil {
		c.log.Warn("failed to persist topics", "error", err)
		return
	}
	c.log.Info("topics updated from source", "count", len(list))
}

// refreshInBackground starts a refresh for gen unless one is already running.
func (c *Cache) refreshInBackground(gen uint64) bool {
	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		key := strconv.FormatUint(gen, 10)
		_, _, _ = c.refreshes.Do(key, func() (interface{}, error) {
			return nil, c.refresh(gen)
		})
	}()
	return true
}

func (c *Cache) refresh(gen uint64) error {
	fetchedAt := c.now()
	fetched, err := c.fetch(c.ctx)
	if err != nil {
		c.log.Warn("background topic refresh failed, keeping cached topics", "error", err)
		return err
	}
	if !c.apply(gen, fetched, fetchedAt, OriginRemote) {
		return nil
	}
	c.persist(c.ctx, fetched, fetchedAt)
	return nil
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
