// Package checkout commits the cart as a sale and produces the invoice.
//
// The commit is durable once the server answers with an invoice number.
// Rendering the invoice document afterwards is best effort and never rolls
// the sale back.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/suteetoe/tokokita/internal/cart"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

// Transactions is implemented by *api.Transactions
type Transactions interface {
	Commit(ctx context.Context, req model.CommitRequest) (string, error)
}

// TotalSource is implemented by *api.Cart
type TotalSource interface {
	TotalDue(ctx context.Context, userID string) (int64, error)
}

// CartView is implemented by *cart.Synchronizer
type CartView interface {
	Snapshot() cart.Snapshot
	ListItems(ctx context.Context) ([]model.CartLine, error)
}

// Credentials is implemented by *session.Provider
type Credentials interface {
	Get() (model.Credential, bool)
}

// Renderer writes an invoice document and returns its path
type Renderer interface {
	Render(ctx context.Context, inv model.Invoice) (string, error)
}

// Outcome distinguishes the two successful endings of a checkout.
// A failed commit is the returned error, not an Outcome.
type Outcome int

const (
	OutcomeCommitted Outcome = iota
	OutcomeCommittedWithoutDocument
)

func (o Outcome) String() string {
	if o == OutcomeCommittedWithoutDocument {
		return "committed_without_document"
	}
	return "committed"
}

type Request struct {
	CustomerCode string
	CustomerName string
	// TotalAmount of zero asks the server for the amount due
	TotalAmount int64
}

type Result struct {
	Outcome      Outcome
	Invoice      model.Invoice
	DocumentPath string
	DocumentErr  error
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

type Engine struct {
	tx       Transactions
	totals   TotalSource
	cart     CartView
	creds    Credentials
	renderer Renderer
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(tx Transactions, totals TotalSource, c CartView, creds Credentials, renderer Renderer, opts ...Option) *Engine {
	e := &Engine{
		tx:       tx,
		totals:   totals,
		cart:     c,
		creds:    creds,
		renderer: renderer,
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Commit saves the sale and then renders its invoice
func (e *Engine) Commit(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.CustomerCode) == "" {
		return nil, apperr.Validation("customer required")
	}
	if req.TotalAmount < 0 {
		return nil, apperr.Validation("total amount cannot be negative")
	}
	cred, ok := e.creds.Get()
	if !ok {
		return nil, apperr.Unauthenticated("not logged in")
	}

	snap := e.cart.Snapshot()
	lines := snap.Lines
	if !snap.Fetched || len(lines) == 0 {
		fetched, err := e.cart.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		lines = fetched
	}
	if len(lines) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	total := req.TotalAmount
	if total == 0 {
		due, err := e.totals.TotalDue(ctx, cred.UserID)
		if err != nil {
			return nil, err
		}
		total = due
	}

	number, err := e.tx.Commit(ctx, model.CommitRequest{
		UserID:       cred.UserID,
		CustomerCode: req.CustomerCode,
		TotalAmount:  total,
	})
	if err != nil {
		e.metrics.RecordCheckoutOutcome("failed")
		e.log.Warn("Checkout failed", zap.String("customer", req.CustomerCode), zap.Error(err))
		return nil, err
	}

	inv := model.Invoice{
		Number:       number,
		CustomerCode: req.CustomerCode,
		CustomerName: req.CustomerName,
		IssuedAt:     e.now(),
		Lines:        ComputeLines(lines),
		Total:        total,
	}
	if inv.CustomerName == "" {
		inv.CustomerName = req.CustomerCode
	}
	if lt := inv.LinesTotal(); lt != total {
		e.log.Warn("Invoice lines do not add up to the committed total",
			zap.String("invoice", number),
			zap.Int64("lines_total", lt),
			zap.Int64("committed_total", total),
		)
	}
	e.log.Info("Transaction committed", zap.String("invoice", number), zap.Int64("total", total))

	// The server emptied the cart
	if _, err := e.cart.ListItems(ctx); err != nil {
		e.log.Warn("Failed to re-read cart after checkout", zap.Error(err))
	}

	result := &Result{Invoice: inv}
	path, err := e.renderer.Render(ctx, inv)
	if err != nil {
		result.Outcome = OutcomeCommittedWithoutDocument
		result.DocumentErr = err
		e.log.Warn("Transaction saved without invoice document", zap.String("invoice", number), zap.Error(err))
	} else {
		result.Outcome = OutcomeCommitted
		result.DocumentPath = path
	}
	e.metrics.RecordCheckoutOutcome(result.Outcome.String())
	return result, nil
}

// ComputeLines derives display lines from cart lines, subtotal = qty × unitPrice
func ComputeLines(lines []model.CartLine) []model.InvoiceLine {
	out := make([]model.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.InvoiceLine{
			ProductName: l.ProductName,
			Quantity:    int64(l.Quantity),
			UnitPrice:   int64(l.UnitPrice),
			Subtotal:    l.Subtotal(),
		})
	}
	return out
}

// ComputeTotal is the sum of qty × unitPrice
func ComputeTotal(lines []model.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
