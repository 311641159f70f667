package api

import (
	"context"
	"net/http"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/client"
)

// Cart is the server-side pending order (keranjang) of one user
type Cart struct {
	r Requester
}

type cartLinesResponse struct {
	Data []model.CartLine `json:"data"`
}

type insertItemRequest struct {
	ProductCode string `json:"kodebarang"`
	Quantity    int    `json:"qty"`
}

func (c *Cart) Lines(ctx context.Context, userID string) ([]model.CartLine, error) {
	var out cartLinesResponse
	if err := c.r.DoJSON(ctx, http.MethodGet, "/get-keranjang/"+segment(userID), nil, &out, client.WithRoute("keranjang.list")); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Insert adds qty of a product, or increments an existing line
func (c *Cart) Insert(ctx context.Context, userID, code string, qty int) error {
	if code == "" || qty < 1 {
		return apperr.Validation("product code and a positive quantity are required")
	}
	body := insertItemRequest{ProductCode: code, Quantity: qty}
	return c.r.DoJSON(ctx, http.MethodPost, "/insert-temp/"+segment(userID), body, nil, client.WithRoute("keranjang.insert"))
}

func (c *Cart) Remove(ctx context.Context, userID, code string) error {
	if code == "" {
		return apperr.Validation("product code is required")
	}
	path := "/hapus-item-keranjang/" + segment(userID) + "/" + segment(code)
	return c.r.DoJSON(ctx, http.MethodDelete, path, nil, nil, client.WithRoute("keranjang.remove"))
}

// ItemCount is the badge counter
func (c *Cart) ItemCount(ctx context.Context, userID string) (int, error) {
	var out struct {
		TotalItems model.Amount `json:"totalItems"`
	}
	if err := c.r.DoJSON(ctx, http.MethodGet, "/total-items/"+segment(userID), nil, &out, client.WithRoute("keranjang.count")); err != nil {
		return 0, err
	}
	return int(out.TotalItems), nil
}

// TotalDue is the amount the server expects for the current cart
func (c *Cart) TotalDue(ctx context.Context, userID string) (int64, error) {
	var out struct {
		Total model.Amount `json:"total"`
	}
	if err := c.r.DoJSON(ctx, http.MethodGet, "/total-pembayaran/"+segment(userID), nil, &out, client.WithRoute("keranjang.total")); err != nil {
		return 0, err
	}
	return int64(out.Total), nil
}
