// Package listing drives incremental, searchable, server-paginated lists.
//
// An Engine accumulates pages in server order and never holds two items with
// the same key. Every reset (initial load, search, refresh) bumps a generation
// counter; a response tagged with an older generation is discarded, so a slow
// response for an earlier search term can never overwrite a newer one.
package listing

import (
	"context"
	"sync"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

// State of a list instance
type State int

const (
	Idle State = iota
	Loading
	Ready
	LoadingMore
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadingMore:
		return "loading_more"
	case Error:
		return "error"
	}
	return "unknown"
}

// Mode selects whether a fetched page replaces or extends the list
type Mode int

const (
	Reset Mode = iota
	Append
)

func (m Mode) String() string {
	if m == Append {
		return "append"
	}
	return "reset"
}

// Query is what a Fetcher is asked for
type Query struct {
	Search string
	Page   int
}

// Fetcher loads one page
type Fetcher[T any] func(ctx context.Context, q Query) (*model.Page[T], error)

// Snapshot is a copy of an engine's visible state
type Snapshot[T any] struct {
	Items      []T
	State      State
	Page       int
	TotalPages int
	Search     string
	Err        error
}

type options struct {
	log               *zap.Logger
	metrics           *metrics.Metrics
	onUnauthenticated func()
}

// Option configures an Engine
type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithUnauthenticatedHook is called, outside any lock, whenever a fetch fails
// because the session is no longer valid
func WithUnauthenticatedHook(fn func()) Option {
	return func(o *options) { o.onUnauthenticated = fn }
}

// Engine is a paginated list of T keyed by a string primary key
type Engine[T any] struct {
	name  string
	fetch Fetcher[T]
	key   func(T) string
	opts  options

	mu         sync.Mutex
	state      State
	items      []T
	seen       map[string]struct{}
	page       int
	totalPages int
	search     string
	err        error
	generation uint64
}

func New[T any](name string, fetch Fetcher[T], key func(T) string, opts ...Option) *Engine[T] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return &Engine[T]{
		name:  name,
		fetch: fetch,
		key:   key,
		opts:  o,
		seen:  make(map[string]struct{}),
		state: Idle,
	}
}

// Load fetches pageNumber. Reset replaces the list and supersedes every
// request in flight; Append extends it.
func (e *Engine[T]) Load(ctx context.Context, pageNumber int, mode Mode) error {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if mode == Append {
		e.mu.Lock()
		if e.state == Loading || e.state == LoadingMore {
			e.mu.Unlock()
			return nil
		}
		return e.appendLocked(ctx, pageNumber)
	}
	return e.reset(ctx, pageNumber, nil)
}

// Search resets to page 1 filtered by term; an empty term means no filter
func (e *Engine[T]) Search(ctx context.Context, term string) error {
	return e.reset(ctx, 1, &term)
}

// Refresh clears the search term and reloads page 1
func (e *Engine[T]) Refresh(ctx context.Context) error {
	empty := ""
	return e.reset(ctx, 1, &empty)
}

// LoadMore appends the next page. It does nothing while any load is in
// flight or when the last page has already been loaded.
func (e *Engine[T]) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if e.state == Loading || e.state == LoadingMore || e.page >= e.totalPages {
		e.mu.Unlock()
		return nil
	}
	return e.appendLocked(ctx, e.page+1)
}

// Snapshot returns a copy of the current state
func (e *Engine[T]) Snapshot() Snapshot[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot[T]{
		Items:      append([]T(nil), e.items...),
		State:      e.state,
		Page:       e.page,
		TotalPages: e.totalPages,
		Search:     e.search,
		Err:        e.err,
	}
}

func (e *Engine[T]) reset(ctx context.Context, pageNumber int, search *string) error {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	// The term is only adopted once its first page arrives, so a failed
	// reset leaves page and search describing the same query
	q := Query{Search: e.search, Page: pageNumber}
	if search != nil {
		q.Search = *search
	}
	e.state = Loading
	e.mu.Unlock()

	result, err := e.fetch(ctx, q)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.discardStale(q)
		return nil
	}
	if err != nil {
		return e.failLocked(err)
	}
	if result == nil {
		result = &model.Page[T]{}
	}

	e.search = q.Search
	e.items = e.items[:0]
	e.seen = make(map[string]struct{})
	dropped := e.mergeLocked(result.Items)
	e.applyPageLocked(result, pageNumber)
	e.mu.Unlock()

	e.recordLoaded(Reset, q, dropped)
	return nil
}

// appendLocked must be called with e.mu held; it releases it
func (e *Engine[T]) appendLocked(ctx context.Context, pageNumber int) error {
	gen := e.generation
	q := Query{Search: e.search, Page: pageNumber}
	e.state = LoadingMore
	e.mu.Unlock()

	result, err := e.fetch(ctx, q)

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		e.discardStale(q)
		return nil
	}
	if err != nil {
		return e.failLocked(err)
	}
	if result == nil {
		result = &model.Page[T]{}
	}

	dropped := e.mergeLocked(result.Items)
	e.applyPageLocked(result, pageNumber)
	e.mu.Unlock()

	e.recordLoaded(Append, q, dropped)
	return nil
}

// failLocked must be called with e.mu held; it releases it. Previously loaded
// items are always kept.
func (e *Engine[T]) failLocked(err error) error {
	if apperr.Is(err, apperr.KindUnauthenticated) {
		if e.page > 0 {
			e.state = Ready
		} else {
			e.state = Idle
		}
		hook := e.opts.onUnauthenticated
		e.mu.Unlock()

		e.opts.log.Info("List load needs a new session", zap.String("list", e.name))
		if hook != nil {
			hook()
		}
		return err
	}

	e.state = Error
	e.err = err
	e.mu.Unlock()

	e.opts.log.Warn("List load failed", zap.String("list", e.name), zap.Error(err))
	return err
}

// mergeLocked appends items whose key is not yet listed and returns how many
// were dropped as duplicates
func (e *Engine[T]) mergeLocked(items []T) int {
	dropped := 0
	for _, item := range items {
		k := e.key(item)
		if _, ok := e.seen[k]; ok {
			dropped++
			continue
		}
		e.seen[k] = struct{}{}
		e.items = append(e.items, item)
	}
	return dropped
}

func (e *Engine[T]) applyPageLocked(result *model.Page[T], requested int) {
	e.page = requested
	if result.PageNumber > 0 {
		e.page = result.PageNumber
	}
	e.totalPages = result.TotalPages
	if e.totalPages < 1 {
		e.totalPages = 1
	}
	e.state = Ready
	e.err = nil
}

func (e *Engine[T]) discardStale(q Query) {
	e.opts.metrics.RecordStaleResponse(e.name)
	e.opts.log.Warn("Discarded stale list response",
		zap.String("list", e.name),
		zap.String("search", q.Search),
		zap.Int("page", q.Page))
}

func (e *Engine[T]) recordLoaded(mode Mode, q Query, dropped int) {
	e.opts.metrics.RecordPageLoaded(e.name, mode.String())
	if dropped == 0 {
		return
	}
	// The backend is known to repeat rows across page boundaries; surface it
	e.opts.metrics.RecordDuplicatesDropped(e.name, dropped)
	e.opts.log.Warn("Dropped duplicate list rows",
		zap.String("list", e.name),
		zap.String("search", q.Search),
		zap.Int("page", q.Page),
		zap.Int("dropped", dropped))
}
