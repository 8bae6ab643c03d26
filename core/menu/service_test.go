package menu

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

var errDB = errors.New("db is down")

// fakeRepo counts unread notifications per type; the empty type holds the total.
type fakeRepo struct {
	mu                 sync.Mutex
	pendingCourses     int
	pendingInstructors int
	notifications      map[notification.Type]int
	reviews            int
	enrollments        int
	err                error
	block              chan struct{} // when set, counters wait on it

	calls int32
}

func (r *fakeRepo) enter(ctx context.Context) error {
	atomic.AddInt32(&r.calls, 1)
	r.mu.Lock()
	block, err := r.block, r.err
	r.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (r *fakeRepo) get(n *int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *n
}

func (r *fakeRepo) CountPendingCourses(ctx context.Context) (int, error) {
	if err := r.enter(ctx); err != nil {
		return 0, err
	}
	return r.get(&r.pendingCourses), nil
}

func (r *fakeRepo) CountPendingInstructors(ctx context.Context) (int, error) {
	if err := r.enter(ctx); err != nil {
		return 0, err
	}
	return r.get(&r.pendingInstructors), nil
}

func (r *fakeRepo) CountUnreadNotifications(ctx context.Context, _ int64, types ...notification.Type) (int, error) {
	if err := r.enter(ctx); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(types) == 0 {
		return r.notifications[""], nil
	}
	var n int
	for _, typ := range types {
		n += r.notifications[typ]
	}
	return n, nil
}

func (r *fakeRepo) CountUnreadReviews(ctx context.Context, _ int64) (int, error) {
	if err := r.enter(ctx); err != nil {
		return 0, err
	}
	return r.get(&r.reviews), nil
}

func (r *fakeRepo) CountActiveEnrollments(ctx context.Context, _ int64) (int, error) {
	if err := r.enter(ctx); err != nil {
		return 0, err
	}
	return r.get(&r.enrollments), nil
}

func (r *fakeRepo) set(fn func(r *fakeRepo)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

func (r *fakeRepo) callCount() int {
	return int(atomic.LoadInt32(&r.calls))
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]Tree
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]Tree)}
}

func (c *fakeCache) Get(_ context.Context, key string) (Tree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	tree, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return tree, nil
}

func (c *fakeCache) Set(_ context.Context, key string, tree Tree, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[key] = tree
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type fakePublisher struct {
	mu         sync.Mutex
	identities []user.Identity
}

func (p *fakePublisher) PublishRefresh(_ context.Context, identity user.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identities = append(p.identities, identity)
	return nil
}

// setHookCache runs onSet before storing, while the service still holds the key.
type setHookCache struct {
	*fakeCache
	onSet func()
}

func (c *setHookCache) Set(ctx context.Context, key string, tree Tree, ttl time.Duration) error {
	if c.onSet != nil {
		c.onSet()
	}
	return c.fakeCache.Set(ctx, key, tree, ttl)
}

func (s *Service) keyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func newTestService(repo *fakeRepo, cache Cache, opts ...Option) *Service {
	return NewService(repo, cache, core.NopLogger{}, opts...)
}

func badgeOf(t *testing.T, tree Tree, label string) int {
	t.Helper()
	it, ok := tree.Find(label)
	require.True(t, ok, "item %q not found", label)
	require.NotNil(t, it.Badge, "item %q has no badge", label)
	return *it.Badge
}

var (
	admin      = &user.Identity{ID: 1, Role: user.RoleAdmin}
	instructor = &user.Identity{ID: 2, Role: user.RoleInstructor}
	student    = &user.Identity{ID: 3, Role: user.RoleStudent}
)

func TestService_GetMenu_roles(t *testing.T) {
	repo := &fakeRepo{
		pendingCourses:     3,
		pendingInstructors: 2,
		reviews:            6,
		enrollments:        5,
		notifications: map[notification.Type]int{
			"":                              5,
			notification.TypeForumReply:     4,
			notification.TypeDirectMessage:  1,
			notification.TypeCourseApproval: 7,
		},
	}
	svc := newTestService(repo, newFakeCache())
	ctx := context.Background()

	tests := []struct {
		name       string
		identity   *user.Identity
		wantGroups []string
		wantBadges map[string]int
	}{
		{
			name:       "admin",
			identity:   admin,
			wantGroups: []string{"Administration", "System", "Personal"},
			wantBadges: map[string]int{"Approval Queue": 3, "Instructors": 2, "Payouts": 0, "Notifications": 5},
		},
		{
			name:       "instructor",
			identity:   instructor,
			wantGroups: []string{"Teaching", "Engagement", "Personal"},
			wantBadges: map[string]int{"Reviews": 6, "Messages": 1, "Notifications": 5},
		},
		{
			name:       "student",
			identity:   student,
			wantGroups: []string{"Learning", "Community", "Personal"},
			wantBadges: map[string]int{"Continue Learning": 5, "Discussion Forum": 4, "Wishlist": 0, "Notifications": 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := svc.GetMenu(ctx, tt.identity, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantGroups, tree.Labels())
			for label, want := range tt.wantBadges {
				assert.Equal(t, want, badgeOf(t, tree, label), label)
			}
		})
	}
}

func TestService_GetMenu_noMenu(t *testing.T) {
	repo := &fakeRepo{}
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	tests := []struct {
		name     string
		identity *user.Identity
	}{
		{name: "anonymous", identity: nil},
		{name: "unknown role", identity: &user.Identity{ID: 9, Role: "moderator"}},
		{name: "empty role", identity: &user.Identity{ID: 9}},
		{name: "zero id", identity: &user.Identity{Role: user.RoleAdmin}},
		{name: "negative id", identity: &user.Identity{ID: -1, Role: user.RoleStudent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := svc.GetMenu(context.Background(), tt.identity, "/")
			require.NoError(t, err)
			data, err := json.Marshal(tree)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(data))
		})
	}
	assert.Zero(t, repo.callCount())
	assert.Empty(t, cache.entries)
}

func TestService_GetMenu_cached(t *testing.T) {
	repo := &fakeRepo{enrollments: 5}
	cache := newFakeCache()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := newTestService(repo, cache, WithMetrics(metrics))
	ctx := context.Background()

	first, err := svc.GetMenu(ctx, student, "")
	require.NoError(t, err)
	calls := repo.callCount()
	assert.Equal(t, len(Badges(user.RoleStudent))-1 /* wishlist is not a repo call */, calls)
	assert.True(t, cache.has("3:student"))

	// counts changed without invalidation: the cached menu is served until it expires
	repo.set(func(r *fakeRepo) { r.enrollments = 8 })
	second, err := svc.GetMenu(ctx, student, "")
	require.NoError(t, err)
	assert.Equal(t, calls, repo.callCount())

	b1, _ := json.Marshal(first)
	b2, _ := json.Marshal(second)
	assert.Equal(t, string(b1), string(b2))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.builds.WithLabelValues("ok")))
}

func TestService_GetMenu_activeNotCached(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeCache())
	ctx := context.Background()

	tree, err := svc.GetMenu(ctx, student, "/student/courses/12")
	require.NoError(t, err)
	assert.Equal(t, []string{"Continue Learning"}, activeLabels(tree))

	tree, err = svc.GetMenu(ctx, student, "/forum")
	require.NoError(t, err)
	assert.Equal(t, []string{"Discussion Forum"}, activeLabels(tree))

	cached, err := svc.cache.Get(ctx, CacheKey(*student))
	require.NoError(t, err)
	assert.Nil(t, activeLabels(cached))
}

func TestService_Invalidate(t *testing.T) {
	repo := &fakeRepo{notifications: map[notification.Type]int{"": 5}}
	cache := newFakeCache()
	pub := &fakePublisher{}
	svc := newTestService(repo, cache, WithPublisher(pub))
	ctx := context.Background()

	tree, err := svc.GetMenu(ctx, instructor, "")
	require.NoError(t, err)
	assert.Equal(t, 5, badgeOf(t, tree, "Notifications"))

	repo.set(func(r *fakeRepo) { r.notifications[""] = 4 })
	require.NoError(t, svc.Invalidate(ctx, *instructor))
	assert.False(t, cache.has("2:instructor"))
	assert.Equal(t, []user.Identity{*instructor}, pub.identities)

	tree, err = svc.GetMenu(ctx, instructor, "")
	require.NoError(t, err)
	assert.Equal(t, 4, badgeOf(t, tree, "Notifications"))

	t.Run("other identities keep their entry", func(t *testing.T) {
		_, err := svc.GetMenu(ctx, student, "")
		require.NoError(t, err)
		require.NoError(t, svc.Invalidate(ctx, *instructor))
		assert.True(t, cache.has("3:student"))
	})

	t.Run("role is part of the key", func(t *testing.T) {
		promoted := &user.Identity{ID: instructor.ID, Role: user.RoleAdmin}
		tree, err := svc.GetMenu(ctx, promoted, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Administration", "System", "Personal"}, tree.Labels())
	})

	t.Run("cache errors are returned", func(t *testing.T) {
		cache.err = errors.New("redis is down")
		defer func() { cache.err = nil }()
		assert.Error(t, svc.Invalidate(ctx, *instructor))
	})
}

func TestService_GetMenu_buildFailure(t *testing.T) {
	repo := &fakeRepo{err: errDB}
	cache := newFakeCache()
	metrics := NewMetrics(nil)
	svc := newTestService(repo, cache, WithMetrics(metrics))
	ctx := context.Background()

	tree, err := svc.GetMenu(ctx, admin, "")
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.True(t, IsBuildFailure(err))
	assert.True(t, errors.Is(err, errDB))
	assert.False(t, cache.has("1:admin"), "failed builds must not be cached")
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.builds.WithLabelValues("error")))

	// the next request builds again
	repo.set(func(r *fakeRepo) { r.err = nil; r.pendingCourses = 1 })
	tree, err = svc.GetMenu(ctx, admin, "")
	require.NoError(t, err)
	assert.Equal(t, 1, badgeOf(t, tree, "Approval Queue"))
	assert.True(t, cache.has("1:admin"))
}

func TestService_GetMenu_negativeCount(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeCache(), WithCounter(BadgeWishlist,
		func(context.Context, user.Identity) (int, error) { return -1, nil }))

	_, err := svc.GetMenu(context.Background(), student, "")
	require.Error(t, err)
	var bErr *BuildError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, BadgeWishlist, bErr.Badge)
	assert.Equal(t, *student, bErr.Identity)
}

func TestService_GetMenu_cacheUnavailable(t *testing.T) {
	repo := &fakeRepo{pendingCourses: 3}
	cache := newFakeCache()
	cache.err = errors.New("redis is down")
	metrics := NewMetrics(nil)
	svc := newTestService(repo, cache, WithMetrics(metrics))

	for i := 0; i < 2; i++ {
		tree, err := svc.GetMenu(context.Background(), admin, "")
		require.NoError(t, err)
		assert.Equal(t, 3, badgeOf(t, tree, "Approval Queue"))
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("error")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.cacheErrors.WithLabelValues("set")))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.builds.WithLabelValues("ok")))
}

func TestService_GetMenu_singleBuild(t *testing.T) {
	block := make(chan struct{})
	repo := &fakeRepo{enrollments: 2, block: block}
	svc := newTestService(repo, newFakeCache())

	const n = 10
	var wg sync.WaitGroup
	results := make([]Tree, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetMenu(context.Background(), student, "")
		}(i)
	}
	time.Sleep(100 * time.Millisecond) // let every request join the build
	close(block)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, badgeOf(t, results[i], "Continue Learning"))
	}
	assert.Equal(t, 3, repo.callCount(), "one build: enrollments, forum replies, notifications")
}

func TestService_GetMenu_callerCancelled(t *testing.T) {
	block := make(chan struct{})
	repo := &fakeRepo{reviews: 1, block: block}
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.GetMenu(ctx, instructor, "")
	require.Error(t, err)
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(err))
	assert.False(t, IsBuildFailure(err))

	// the build goes on without the caller and fills the cache
	close(block)
	require.Eventually(t, func() bool { return cache.has("2:instructor") }, time.Second, 5*time.Millisecond)
}

func TestService_GetMenu_buildTimeout(t *testing.T) {
	repo := &fakeRepo{block: make(chan struct{})}
	svc := newTestService(repo, newFakeCache(), WithBuildTimeout(20*time.Millisecond))

	_, err := svc.GetMenu(context.Background(), admin, "")
	require.Error(t, err)
	assert.True(t, IsBuildFailure(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestService_Invalidate_duringBuild(t *testing.T) {
	block := make(chan struct{})
	repo := &fakeRepo{notifications: map[notification.Type]int{"": 5}, block: block}
	cache := newFakeCache()
	svc := newTestService(repo, cache)
	ctx := context.Background()

	done := make(chan error)
	go func() {
		_, err := svc.GetMenu(ctx, instructor, "")
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, svc.Invalidate(ctx, *instructor))
	close(block)
	require.NoError(t, <-done)

	assert.False(t, cache.has("2:instructor"), "a build raced by Invalidate must not be cached")
}

func TestService_Invalidate_duringSet(t *testing.T) {
	repo := &fakeRepo{notifications: map[notification.Type]int{"": 5}}
	cache := &setHookCache{fakeCache: newFakeCache()}
	svc := newTestService(repo, cache)
	ctx := context.Background()

	invalidated := make(chan error, 1)
	var once sync.Once
	cache.onSet = func() {
		once.Do(func() {
			repo.set(func(r *fakeRepo) { r.notifications[""] = 0 })
			go func() { invalidated <- svc.Invalidate(ctx, *instructor) }()
			time.Sleep(20 * time.Millisecond)
		})
	}

	tree, err := svc.GetMenu(ctx, instructor, "")
	require.NoError(t, err)
	assert.Equal(t, 5, badgeOf(t, tree, "Notifications"))
	require.NoError(t, <-invalidated)

	tree, err = svc.GetMenu(ctx, instructor, "")
	require.NoError(t, err)
	assert.Equal(t, 0, badgeOf(t, tree, "Notifications"), "Invalidate must not be overtaken by the raced Set")
}

func TestService_keysReleased(t *testing.T) {
	repo := &fakeRepo{notifications: map[notification.Type]int{"": 1}}
	svc := newTestService(repo, newFakeCache())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		identity := user.Identity{ID: i, Role: user.RoleStudent}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetMenu(ctx, &identity, "")
			assert.NoError(t, err)
			assert.NoError(t, svc.Invalidate(ctx, identity))
		}()
	}
	wg.Wait()
	require.NoError(t, svc.Invalidate(ctx, user.Identity{ID: 99, Role: user.RoleAdmin}))

	assert.Zero(t, svc.keyCount())
}

func TestService_WithCounter(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeCache(),
		WithCounter(BadgePendingPayouts, func(_ context.Context, identity user.Identity) (int, error) {
			return int(identity.ID) + 6, nil
		}),
	)
	tree, err := svc.GetMenu(context.Background(), admin, "")
	require.NoError(t, err)
	assert.Equal(t, 7, badgeOf(t, tree, "Payouts"))
}

func TestDefaultCounters(t *testing.T) {
	repo := &fakeRepo{
		pendingCourses:     1,
		pendingInstructors: 2,
		reviews:            3,
		enrollments:        4,
		notifications: map[notification.Type]int{
			"":                             5,
			notification.TypeDirectMessage: 6,
			notification.TypeForumReply:    7,
		},
	}
	counters := DefaultCounters(repo)
	want := map[Badge]int{
		BadgePendingCourses:      1,
		BadgePendingInstructors:  2,
		BadgeUnreadReviews:       3,
		BadgeIncompleteCourses:   4,
		BadgeUnreadNotifications: 5,
		BadgeUnreadMessages:      6,
		BadgeUnreadForumReplies:  7,
		BadgePendingPayouts:      0,
		BadgeWishlist:            0,
	}
	require.Len(t, counters, len(want))
	for b, n := range want {
		got, err := counters[b](context.Background(), *student)
		require.NoError(t, err, b.String())
		assert.Equal(t, n, got, b.String())
	}
}
