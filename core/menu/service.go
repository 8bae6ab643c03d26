package menu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

// DefaultBuildTimeout bounds the badge queries of a single build.
const DefaultBuildTimeout = 5 * time.Second

type Option func(*Service)

// WithCounter overrides the counter of badge b.
func WithCounter(b Badge, fn CounterFunc) Option {
	return func(s *Service) { s.counters[b] = fn }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithBuildTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.buildTimeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithPublisher(p RefreshPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

type Service struct {
	counters     Counters
	cache        Cache
	publisher    RefreshPublisher
	logger       core.Logger
	metrics      *Metrics
	ttl          time.Duration
	buildTimeout time.Duration

	builds singleflight.Group

	mu   sync.Mutex
	keys map[string]*keyState // only keys with a build or an Invalidate in flight
}

// keyState orders the cache writes of builds with the invalidations of one key.
type keyState struct {
	mu   sync.Mutex // held from the generation check through cache.Set, and around Invalidate's Delete
	gen  uint64     // bumped by Invalidate
	refs int        // guarded by Service.mu
}

var _ notification.Invalidator = (*Service)(nil)

func NewService(repo Repository, cache Cache, logger core.Logger, opts ...Option) *Service {
	s := &Service{
		counters:     DefaultCounters(repo),
		cache:        cache,
		logger:       logger,
		metrics:      NewMetrics(nil),
		ttl:          DefaultTTL,
		buildTimeout: DefaultBuildTimeout,
		keys:         make(map[string]*keyState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMenu returns the sidebar menu of identity with the items under path marked active.
// A nil identity, a non-positive ID or an unknown role gets an empty Tree and no error.
// Badge failures return a *BuildError; cache failures only degrade to an uncached build.
func (s *Service) GetMenu(ctx context.Context, identity *user.Identity, path string) (Tree, error) {
	if identity == nil {
		return Tree{}, nil
	}
	if !identity.Valid() {
		s.logger.Debug(fmt.Sprintf("no menu for %s", identity), *identity)
		return Tree{}, nil
	}

	key := CacheKey(*identity)
	tree, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.cacheLookups.WithLabelValues("hit").Inc()
		return tree.WithActive(path), nil
	case errors.Cause(err) == ErrCacheMiss:
		s.metrics.cacheLookups.WithLabelValues("miss").Inc()
	default:
		s.metrics.cacheLookups.WithLabelValues("error").Inc()
		s.cacheFailed("get", key, err, *identity)
	}

	// concurrent misses on the same key share one build
	bctx := context.WithoutCancel(ctx)
	ch := s.builds.DoChan(key, func() (interface{}, error) {
		return s.buildAndStore(bctx, *identity, key)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Tree).WithActive(path), nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for menu build")
	}
}

func (s *Service) buildAndStore(ctx context.Context, identity user.Identity, key string) (Tree, error) {
	st := s.acquire(key)
	defer s.release(key, st)

	st.mu.Lock()
	gen := st.gen
	st.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.buildTimeout)
	defer cancel()

	timer := prometheus.NewTimer(s.metrics.buildDuration)
	tree, err := s.build(ctx, identity)
	timer.ObserveDuration()
	if err != nil {
		s.metrics.builds.WithLabelValues("error").Inc()
		s.logger.Error(fmt.Sprintf("building menu of %s: %v", identity, err), err, identity)
		return nil, err
	}
	s.metrics.builds.WithLabelValues("ok").Inc()

	// an Invalidate during the build means the counts may already be stale
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.gen != gen {
		return tree, nil
	}
	if err := s.cache.Set(ctx, key, tree, s.ttl); err != nil {
		s.cacheFailed("set", key, err, identity)
	}
	return tree, nil
}

// build fetches the badges of identity's menu concurrently and renders it once all succeeded.
func (s *Service) build(ctx context.Context, identity user.Identity) (Tree, error) {
	badges := Badges(identity.Role)
	counts := make(Counts, len(badges))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range badges {
		b := b
		count, ok := s.counters[b]
		if !ok || count == nil {
			count = Zero
		}
		g.Go(func() error {
			n, err := count(gctx, identity)
			if err == nil && n < 0 {
				err = errNegativeCount
			}
			if err != nil {
				return &BuildError{Identity: identity, Badge: b, Err: err}
			}
			mu.Lock()
			counts[b] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Build(identity.Role, counts), nil
}

// Invalidate drops the cached menu of identity and signals its clients to refresh.
// It must be called whenever data feeding identity's own badges changes.
func (s *Service) Invalidate(ctx context.Context, identity user.Identity) error {
	key := CacheKey(identity)

	st := s.acquire(key)
	st.mu.Lock()
	st.gen++
	s.builds.Forget(key)
	err := s.cache.Delete(ctx, key)
	st.mu.Unlock()
	s.release(key, st)

	if err != nil {
		s.metrics.cacheErrors.WithLabelValues("delete").Inc()
		return errors.Wrapf(err, "deleting cached menu %s", key)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRefresh(ctx, identity); err != nil {
			s.logger.Warn(fmt.Sprintf("publishing menu refresh of %s: %v", identity, err), err, identity)
		}
	}
	return nil
}

func (s *Service) acquire(key string) *keyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.keys[key]
	if !ok {
		st = new(keyState)
		s.keys[key] = st
	}
	st.refs++
	return st
}

// release forgets the key once nothing uses it; a build that starts later has nothing to be raced by.
func (s *Service) release(key string, st *keyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.refs--
	if st.refs == 0 {
		delete(s.keys, key)
	}
}

func (s *Service) cacheFailed(op, key string, err error, identity user.Identity) {
	s.metrics.cacheErrors.WithLabelValues(op).Inc()
	s.logger.Warn(fmt.Sprintf("menu cache %s %s: %v", op, key, err), err, identity)
}
