package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/client"
)

// Products is the product catalog (barang)
type Products struct {
	r Requester
}

// List fetches one page of products; an empty search means no filter
func (p *Products) List(ctx context.Context, search string, page int) (*model.Page[model.Product], error) {
	var out model.Page[model.Product]
	err := p.r.DoJSON(ctx, http.MethodGet, "/barang", nil, &out,
		client.WithQuery(listQuery(search, page)),
		client.WithRoute("barang.list"),
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Get(ctx context.Context, code string) (*model.Product, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperr.Validation("product code is required")
	}
	var out model.Product
	if err := p.r.DoJSON(ctx, http.MethodGet, "/barang/"+segment(code), nil, &out, client.WithRoute("barang.show")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Products) Create(ctx context.Context, product model.Product) error {
	if err := ValidateProduct(product); err != nil {
		return err
	}
	return p.r.DoJSON(ctx, http.MethodPost, "/barang", product, nil, client.WithRoute("barang.store"))
}

func (p *Products) Update(ctx context.Context, code string, product model.Product) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("product code is required")
	}
	if product.Code == "" {
		product.Code = code
	}
	if err := ValidateProduct(product); err != nil {
		return err
	}
	return p.r.DoJSON(ctx, http.MethodPut, "/barang/"+segment(code), product, nil, client.WithRoute("barang.update"))
}

func (p *Products) Delete(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("product code is required")
	}
	return p.r.DoJSON(ctx, http.MethodDelete, "/barang/"+segment(code), nil, nil, client.WithRoute("barang.destroy"))
}

// UploadImage replaces the product picture
func (p *Products) UploadImage(ctx context.Context, code, fileName string, content []byte) error {
	if strings.TrimSpace(code) == "" {
		return apperr.Validation("product code is required")
	}
	if len(content) == 0 {
		return apperr.Validation("image is empty")
	}
	_, err := p.r.Upload(ctx, "/barang/upload/"+segment(code),
		map[string]string{"_method": http.MethodPut},
		"gambar", fileName, content,
		client.WithRoute("barang.upload"),
	)
	return err
}

// ValidateProduct checks the fields the backend requires
func ValidateProduct(p model.Product) error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Code) == "" {
		fields["kodebarang"] = "required"
	}
	if strings.TrimSpace(p.Name) == "" {
		fields["namabarang"] = "required"
	}
	if strings.TrimSpace(p.Unit) == "" {
		fields["satuan"] = "required"
	}
	if p.UnitPrice <= 0 {
		fields["harga"] = "must be greater than zero"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid product", fields)
	}
	return nil
}
