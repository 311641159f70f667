package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	metrics "github.com/suteetoe/tokokita/prometheus"
)

type item struct {
	ID string
}

func itemKey(i item) string { return i.ID }

type fakeBackend struct {
	mu      sync.Mutex
	pages   map[string][][]item
	gates   map[string]chan struct{}
	fail    map[int]error
	calls   []Query
	started chan Query
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		pages: map[string][][]item{},
		gates: map[string]chan struct{}{},
		fail:  map[int]error{},
	}
}

func (f *fakeBackend) fetch(ctx context.Context, q Query) (*model.Page[item], error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q.Search]
	err := f.fail[q.Page]
	pages := f.pages[q.Search]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- q
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	total := len(pages)
	if q.Page > total {
		return &model.Page[item]{PageNumber: q.Page, TotalPages: total}, nil
	}
	return &model.Page[item]{
		Items:      append([]item(nil), pages[q.Page-1]...),
		PageNumber: q.Page,
		TotalPages: total,
	}, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestLoadMoreAccumulatesWithoutDuplicates(t *testing.T) {
	backend := newFakeBackend()
	// Rows repeat across page boundaries and once inside a page
	backend.pages[""] = [][]item{
		{{"p1"}, {"p2"}, {"p3"}},
		{{"p3"}, {"p4"}, {"p4"}, {"p5"}},
		{{"p5"}, {"p1"}, {"p6"}},
	}
	m := metrics.New("listing_test")
	e := New("products", backend.fetch, itemKey, WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, e.Load(ctx, 1, Reset))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.LoadMore(ctx))
	}

	snap := e.Snapshot()
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5", "p6"}, ids(snap.Items))
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, 3, snap.Page)
	assert.Equal(t, 3, backend.callCount())

	seen := map[string]bool{}
	for _, id := range ids(snap.Items) {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Equal(t, float64(4), testutil.ToFloat64(m.ListDuplicatesDropped.WithLabelValues("products")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ListPagesLoaded.WithLabelValues("products", "append")))
}

func TestLoadMoreAtLastPageIsNoop(t *testing.T) {
	backend := newFakeBackend()
	backend.pages[""] = [][]item{{{"a"}}, {{"b"}}}
	e := New("products", backend.fetch, itemKey)
	ctx := context.Background()

	require.NoError(t, e.Load(ctx, 1, Reset))
	require.NoError(t, e.LoadMore(ctx))
	before := e.Snapshot()
	calls := backend.callCount()

	require.NoError(t, e.LoadMore(ctx))

	assert.Equal(t, calls, backend.callCount())
	assert.Equal(t, before, e.Snapshot())
}

func TestLoadMoreBeforeFirstLoadIsNoop(t *testing.T) {
	backend := newFakeBackend()
	e := New("products", backend.fetch, itemKey)

	require.NoError(t, e.LoadMore(context.Background()))
	assert.Equal(t, 0, backend.callCount())
	assert.Equal(t, Idle, e.Snapshot().State)
}

func TestEmptySearchMatchesUnfilteredLoad(t *testing.T) {
	backend := newFakeBackend()
	backend.pages[""] = [][]item{{{"a"}, {"b"}}, {{"c"}}}
	backend.pages["x"] = [][]item{{{"x1"}}}
	ctx := context.Background()

	plain := New("products", backend.fetch, itemKey)
	require.NoError(t, plain.Load(ctx, 1, Reset))

	searched := New("products", backend.fetch, itemKey)
	require.NoError(t, searched.Search(ctx, "x"))
	require.NoError(t, searched.Search(ctx, ""))

	assert.Equal(t, plain.Snapshot(), searched.Snapshot())
}

func TestRefreshClearsSearchAndAcceptsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.pages["kopi"] = [][]item{{{"k1"}}}
	e := New("products", backend.fetch, itemKey)
	ctx := context.Background()

	require.NoError(t, e.Search(ctx, "kopi"))
	require.NoError(t, e.Refresh(ctx))

	snap := e.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Empty(t, snap.Items)
	assert.Equal(t, "", snap.Search)
	assert.Equal(t, 1, snap.TotalPages)
}

func TestOutOfOrderResetKeepsLatest(t *testing.T) {
	backend := newFakeBackend()
	backend.pages["a"] = [][]item{{{"apel"}, {"anggur"}, {"abon"}}}
	backend.pages["ab"] = [][]item{{{"abon"}}}
	gate := make(chan struct{})
	backend.gates["a"] = gate
	backend.started = make(chan Query, 4)

	m := metrics.New("listing_test")
	e := New("products", backend.fetch, itemKey, WithMetrics(m))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- e.Search(ctx, "a") }()
	require.Equal(t, "a", (<-backend.started).Search)

	require.NoError(t, e.Search(ctx, "ab"))
	<-backend.started

	close(gate)
	require.NoError(t, <-done)

	snap := e.Snapshot()
	assert.Equal(t, []string{"abon"}, ids(snap.Items))
	assert.Equal(t, "ab", snap.Search)
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ListStaleResponses.WithLabelValues("products")))
}

func TestResetInvalidatesLoadMoreInFlight(t *testing.T) {
	backend := newFakeBackend()
	backend.pages[""] = [][]item{{{"a"}}, {{"b"}}}
	backend.pages["z"] = [][]item{{{"z"}}}
	e := New("products", backend.fetch, itemKey)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, 1, Reset))

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.gates[""] = gate
	backend.started = make(chan Query, 4)
	backend.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- e.LoadMore(ctx) }()
	<-backend.started

	t.Run("second load more is ignored while one is in flight", func(t *testing.T) {
		calls := backend.callCount()
		require.NoError(t, e.LoadMore(ctx))
		assert.Equal(t, calls, backend.callCount())
		assert.Equal(t, LoadingMore, e.Snapshot().State)
	})

	require.NoError(t, e.Search(ctx, "z"))
	<-backend.started
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"z"}, ids(e.Snapshot().Items))
}

func TestFailedLoadMoreKeepsItems(t *testing.T) {
	backend := newFakeBackend()
	backend.pages[""] = [][]item{{{"a"}}, {{"b"}}}
	backend.fail[2] = apperr.NetworkUnavailable(errors.New("timeout"))
	e := New("products", backend.fetch, itemKey)
	ctx := context.Background()

	require.NoError(t, e.Load(ctx, 1, Reset))
	err := e.LoadMore(ctx)
	require.True(t, apperr.Is(err, apperr.KindNetworkUnavailable))

	snap := e.Snapshot()
	assert.Equal(t, Error, snap.State)
	assert.Equal(t, []string{"a"}, ids(snap.Items))
	assert.Equal(t, 1, snap.Page)
	assert.Error(t, snap.Err)

	backend.mu.Lock()
	delete(backend.fail, 2)
	backend.mu.Unlock()

	require.NoError(t, e.LoadMore(ctx))
	snap = e.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, []string{"a", "b"}, ids(snap.Items))
	assert.NoError(t, snap.Err)
}

func TestFailedSearchKeepsPreviousQuery(t *testing.T) {
	for name, failure := range map[string]error{
		"network":         apperr.NetworkUnavailable(errors.New("timeout")),
		"unauthenticated": apperr.Unauthenticated("token expired"),
	} {
		t.Run(name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.pages[""] = [][]item{{{"all-1"}}, {{"all-2"}}, {{"all-3"}}}
			backend.pages["z"] = [][]item{{{"z-1"}}, {{"z-2"}}}
			e := New("products", backend.fetch, itemKey)
			ctx := context.Background()

			require.NoError(t, e.Load(ctx, 1, Reset))

			backend.mu.Lock()
			backend.fail[1] = failure
			backend.mu.Unlock()
			require.Error(t, e.Search(ctx, "z"))

			snap := e.Snapshot()
			assert.Equal(t, "", snap.Search)
			assert.Equal(t, []string{"all-1"}, ids(snap.Items))
			assert.Equal(t, 1, snap.Page)

			require.NoError(t, e.LoadMore(ctx))
			snap = e.Snapshot()
			assert.Equal(t, []string{"all-1", "all-2"}, ids(snap.Items))
			assert.Equal(t, "", snap.Search)

			backend.mu.Lock()
			last := backend.calls[len(backend.calls)-1]
			backend.mu.Unlock()
			assert.Equal(t, Query{Search: "", Page: 2}, last)
		})
	}
}

func TestUnauthenticatedRunsHook(t *testing.T) {
	backend := newFakeBackend()
	backend.fail[1] = apperr.Unauthenticated("token expired")

	navigated := 0
	e := New("customers", backend.fetch, itemKey, WithUnauthenticatedHook(func() { navigated++ }))

	err := e.Load(context.Background(), 1, Reset)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	assert.Equal(t, 1, navigated)

	snap := e.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.NoError(t, snap.Err)
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Loading: "loading", Ready: "ready", LoadingMore: "loading_more", Error: "error"} {
		assert.Equal(t, want, s.String(), fmt.Sprint(int(s)))
	}
}
