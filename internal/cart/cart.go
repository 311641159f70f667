// Package cart keeps the displayed cart in step with the server's cart.
//
// Mutations are commands: they return nothing authoritative and are always
// followed by a re-read. The badge counter is never incremented locally.
package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

// Backend is implemented by *api.Cart
type Backend interface {
	Lines(ctx context.Context, userID string) ([]model.CartLine, error)
	Insert(ctx context.Context, userID, code string, qty int) error
	Remove(ctx context.Context, userID, code string) error
	ItemCount(ctx context.Context, userID string) (int, error)
}

// Credentials is implemented by *session.Provider
type Credentials interface {
	Get() (model.Credential, bool)
}

// Snapshot is a copy of the displayed cart
type Snapshot struct {
	Lines []model.CartLine
	// Fetched is false until the first successful ListItems and again after
	// every add
	Fetched bool
	Count   int
}

// Total sums qty × unitPrice over the lines
func (s Snapshot) Total() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.Subtotal()
	}
	return total
}

type Option func(*Synchronizer)

func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// Synchronizer mediates between the displayed cart and the server cart
type Synchronizer struct {
	backend Backend
	creds   Credentials
	log     *zap.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	lines      []model.CartLine
	fetched    bool
	count      int
	generation uint64
}

func New(backend Backend, creds Credentials, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		backend: backend,
		creds:   creds,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synchronizer) userID() (string, error) {
	cred, ok := s.creds.Get()
	if !ok {
		return "", apperr.Unauthenticated("not logged in")
	}
	return cred.UserID, nil
}

// AddItem inserts or increments a product, marks the line list stale and
// re-reads the badge counter. A failed counter refresh does not fail the add.
func (s *Synchronizer) AddItem(ctx context.Context, code string, qty int) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperr.Validation("product code is required")
	}
	if qty < 1 {
		return apperr.Validation("quantity must be at least 1")
	}
	user, err := s.userID()
	if err != nil {
		return err
	}

	err = s.backend.Insert(ctx, user, code, qty)
	s.metrics.RecordCartMutation("add", err)
	if err != nil {
		s.log.Warn("Failed to add cart item", zap.String("code", code), zap.Error(err))
		return err
	}
	s.log.Info("Cart item added", zap.String("code", code), zap.Int("qty", qty))

	s.mu.Lock()
	s.generation++
	s.fetched = false
	s.mu.Unlock()

	if _, err := s.RefreshCount(ctx); err != nil {
		s.log.Warn("Failed to refresh cart counter", zap.Error(err))
	}
	return nil
}

// RemoveItem deletes one line. On success the line disappears from the
// displayed cart at once and a full re-read follows; the re-read wins.
func (s *Synchronizer) RemoveItem(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("product code is required")
	}
	user, err := s.userID()
	if err != nil {
		return err
	}

	err = s.backend.Remove(ctx, user, code)
	s.metrics.RecordCartMutation("remove", err)
	if err != nil {
		s.log.Warn("Failed to remove cart item", zap.String("code", code), zap.Error(err))
		return err
	}

	s.mu.Lock()
	// Invalidate any read that started before the removal
	s.generation++
	kept := s.lines[:0:0]
	for _, l := range s.lines {
		if l.ProductCode != code {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	s.mu.Unlock()

	if _, err := s.ListItems(ctx); err != nil {
		s.log.Warn("Failed to reconcile cart after removal", zap.String("code", code), zap.Error(err))
	}
	if _, err := s.RefreshCount(ctx); err != nil {
		s.log.Warn("Failed to refresh cart counter", zap.Error(err))
	}
	return nil
}

// ListItems re-reads the whole cart, keeping one line per product code.
// When a newer read or mutation started meanwhile, the result is dropped and
// the current lines are returned.
func (s *Synchronizer) ListItems(ctx context.Context) ([]model.CartLine, error) {
	user, err := s.userID()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	lines, err := s.backend.Lines(ctx, user)
	if err != nil {
		return nil, err
	}
	lines, dropped := dedupe(lines)
	if dropped > 0 {
		s.log.Warn("Dropped duplicate cart lines", zap.Int("dropped", dropped))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug("Discarded stale cart read")
		return append([]model.CartLine(nil), s.lines...), nil
	}
	s.lines = lines
	s.fetched = true
	return append([]model.CartLine(nil), lines...), nil
}

// RefreshCount re-reads the badge counter
func (s *Synchronizer) RefreshCount(ctx context.Context) (int, error) {
	user, err := s.userID()
	if err != nil {
		return 0, err
	}
	n, err := s.backend.ItemCount(ctx, user)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.count = n
	s.mu.Unlock()
	return n, nil
}

// Count is the last known badge counter
func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Lines:   append([]model.CartLine(nil), s.lines...),
		Fetched: s.fetched,
		Count:   s.count,
	}
}

func dedupe(lines []model.CartLine) ([]model.CartLine, int) {
	seen := make(map[string]struct{}, len(lines))
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductCode]; ok {
			continue
		}
		seen[l.ProductCode] = struct{}{}
		out = append(out, l)
	}
	return out, len(lines) - len(out)
}
