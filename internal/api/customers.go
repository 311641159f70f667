package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/client"
)

// Customers is the customer directory (pelanggan)
type Customers struct {
	r Requester
}

func (c *Customers) List(ctx context.Context, search string, page int) (*model.Page[model.Customer], error) {
	var out model.Page[model.Customer]
	err := c.r.DoJSON(ctx, http.MethodGet, "/pelanggan", nil, &out,
		client.WithQuery(listQuery(search, page)),
		client.WithRoute("pelanggan.list"),
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Customers) Get(ctx context.Context, code string) (*model.Customer, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperr.Validation("customer code is required")
	}
	var out model.Customer
	if err := c.r.DoJSON(ctx, http.MethodGet, "/pelanggan/"+segment(code), nil, &out, client.WithRoute("pelanggan.show")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Customers) Create(ctx context.Context, customer model.Customer) error {
	if err := ValidateCustomer(customer); err != nil {
		return err
	}
	return c.r.DoJSON(ctx, http.MethodPost, "/pelanggan", customer, nil, client.WithRoute("pelanggan.store"))
}

func (c *Customers) Update(ctx context.Context, code string, customer model.Customer) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("customer code is required")
	}
	if customer.Code == "" {
		customer.Code = code
	}
	if err := ValidateCustomer(customer); err != nil {
		return err
	}
	return c.r.DoJSON(ctx, http.MethodPut, "/pelanggan/"+segment(code), customer, nil, client.WithRoute("pelanggan.update"))
}

func (c *Customers) Delete(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("customer code is required")
	}
	return c.r.DoJSON(ctx, http.MethodDelete, "/pelanggan/"+segment(code), nil, nil, client.WithRoute("pelanggan.destroy"))
}

// ValidateCustomer checks the fields the backend requires
func ValidateCustomer(c model.Customer) error {
	fields := map[string]string{}
	if strings.TrimSpace(c.Code) == "" {
		fields["kodepelanggan"] = "required"
	}
	if strings.TrimSpace(c.Name) == "" {
		fields["namapelanggan"] = "required"
	}
	if strings.TrimSpace(string(c.Phone)) == "" {
		fields["nohp"] = "required"
	}
	if strings.TrimSpace(c.Address) == "" {
		fields["alamat"] = "required"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid customer", fields)
	}
	return nil
}
