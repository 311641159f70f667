package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/internal/api"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/internal/sandbox"
	"github.com/suteetoe/tokokita/internal/sandbox/sandboxtest"
	"github.com/suteetoe/tokokita/pkg/apperr"
)

func TestProducts(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{PageSize: 10})
	ctx := context.Background()

	page, err := env.API.Products.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 3, page.TotalPages)

	p := model.Product{Code: "BRG900", Name: "Kerupuk Udang", UnitPrice: 8000, Unit: "bungkus"}
	require.NoError(t, env.API.Products.Create(ctx, p))

	got, err := env.API.Products.Get(ctx, "BRG900")
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	p.UnitPrice = 8500
	require.NoError(t, env.API.Products.Update(ctx, "BRG900", p))
	require.NoError(t, env.API.Products.UploadImage(ctx, "BRG900", "kerupuk.jpg", []byte{0xff, 0xd8, 0xff}))

	got, err = env.API.Products.Get(ctx, "BRG900")
	require.NoError(t, err)
	assert.Equal(t, model.Amount(8500), got.UnitPrice)
	assert.Equal(t, "gambar/BRG900/kerupuk.jpg", got.ImagePath)

	require.NoError(t, env.API.Products.Delete(ctx, "BRG900"))
	_, err = env.API.Products.Get(ctx, "BRG900")
	assert.True(t, apperr.Is(err, apperr.KindServerRejected))
}

func TestLocalValidationSkipsNetwork(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{})
	ctx := context.Background()

	err := env.API.Products.Create(ctx, model.Product{Code: "X"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Fields, "namabarang")
	assert.Contains(t, e.Fields, "harga")

	err = env.API.Customers.Create(ctx, model.Customer{Code: "PLG9", Name: "Tono"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = env.API.Cart.Insert(ctx, sandboxtest.DemoUser, "BRG001", 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.API.Transactions.Commit(ctx, model.CommitRequest{UserID: sandboxtest.DemoUser})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, 0, env.Requests())
}

func TestCustomers(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{})
	ctx := context.Background()

	c := model.Customer{Code: "PLG100", Name: "Warung Mak Ijah", Phone: "0812", Address: "Jl. Pemuda 3"}
	require.NoError(t, env.API.Customers.Create(ctx, c))

	page, err := env.API.Customers.List(ctx, "ijah", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, c, page.Items[0])

	err = env.API.Customers.Create(ctx, c)
	assert.True(t, apperr.Is(err, apperr.KindServerRejected))

	c.Address = "Jl. Pemuda 4"
	require.NoError(t, env.API.Customers.Update(ctx, "PLG100", c))
	got, err := env.API.Customers.Get(ctx, "PLG100")
	require.NoError(t, err)
	assert.Equal(t, "Jl. Pemuda 4", got.Address)

	require.NoError(t, env.API.Customers.Delete(ctx, "PLG100"))
}

func TestCartAndTransaction(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{})
	ctx := context.Background()
	user := sandboxtest.DemoUser

	require.NoError(t, env.API.Cart.Insert(ctx, user, "BRG004", 1))
	require.NoError(t, env.API.Cart.Insert(ctx, user, "BRG001", 2))

	lines, err := env.API.Cart.Lines(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Beras Pandan Wangi 5kg", lines[0].ProductName)

	count, err := env.API.Cart.ItemCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	total, err := env.API.Cart.TotalDue(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(88000), total)

	require.NoError(t, env.API.Cart.Remove(ctx, user, "BRG001"))
	total, err = env.API.Cart.TotalDue(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(78000), total)

	number, err := env.API.Transactions.Commit(ctx, model.CommitRequest{UserID: user, CustomerCode: "PLG002", TotalAmount: total})
	require.NoError(t, err)
	assert.Equal(t, "F20240131-0001", number)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	records, err := env.API.Sales.Report(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Warung Bu Sri", records[0].CustomerName)

	doc, err := env.API.Sales.ReportPDF(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(doc[:4]))
}

func TestAuth(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{})
	ctx := context.Background()

	err := env.API.Auth.Register(ctx, api.RegisterRequest{Name: "Sari", Email: "sari@example.com", Password: "rahasia123"})
	require.NoError(t, err)

	resp, err := env.API.Auth.Login(ctx, api.LoginRequest{Email: "sari@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, "Sari", resp.User.Name)
	assert.NotEmpty(t, resp.Token)

	require.NoError(t, env.API.Auth.Logout(ctx))
	_, err = env.API.Products.List(ctx, "", 1)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}
