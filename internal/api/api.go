// Package api wraps every backend endpoint in a typed call. Validation that
// can be decided locally happens here, before any request is sent.
package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/suteetoe/tokokita/pkg/client"
)

// Requester is the subset of *client.Client the resources use
type Requester interface {
	DoJSON(ctx context.Context, method, path string, body, out interface{}, opts ...client.RequestOption) error
	DoRaw(ctx context.Context, method, path string, opts ...client.RequestOption) ([]byte, string, error)
	Upload(ctx context.Context, path string, fields map[string]string, fileField, fileName string, content []byte, opts ...client.RequestOption) (json.RawMessage, error)
}

// API groups all remote resources over one Requester
type API struct {
	Products     *Products
	Customers    *Customers
	Cart         *Cart
	Transactions *Transactions
	Sales        *Sales
	Auth         *Auth
}

func New(r Requester) *API {
	return &API{
		Products:     &Products{r: r},
		Customers:    &Customers{r: r},
		Cart:         &Cart{r: r},
		Transactions: &Transactions{r: r},
		Sales:        &Sales{r: r},
		Auth:         &Auth{r: r},
	}
}

func listQuery(search string, page int) url.Values {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("search", search)
	q.Set("page", strconv.Itoa(page))
	return q
}

func segment(s string) string {
	return url.PathEscape(s)
}
