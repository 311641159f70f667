package listing

import (
	"context"

	"github.com/suteetoe/tokokita/internal/model"
)

// ProductLister is implemented by *api.Products
type ProductLister interface {
	List(ctx context.Context, search string, page int) (*model.Page[model.Product], error)
}

// CustomerLister is implemented by *api.Customers
type CustomerLister interface {
	List(ctx context.Context, search string, page int) (*model.Page[model.Customer], error)
}

// NewProductList is the product catalog list, keyed by product code
func NewProductList(products ProductLister, opts ...Option) *Engine[model.Product] {
	fetch := func(ctx context.Context, q Query) (*model.Page[model.Product], error) {
		return products.List(ctx, q.Search, q.Page)
	}
	return New("products", fetch, func(p model.Product) string { return p.Code }, opts...)
}

// NewCustomerList is the customer directory list, keyed by customer code
func NewCustomerList(customers CustomerLister, opts ...Option) *Engine[model.Customer] {
	fetch := func(ctx context.Context, q Query) (*model.Page[model.Customer], error) {
		return customers.List(ctx, q.Search, q.Page)
	}
	return New("customers", fetch, func(c model.Customer) string { return c.Code }, opts...)
}
