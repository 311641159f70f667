package sandbox

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/logger"
	"go.uber.org/zap"
)

func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (s *Server) listProducts(c echo.Context) error {
	items := s.store.searchProducts(c.QueryParam("search"))
	return c.JSON(http.StatusOK, page(items, pageParam(c), s.opts.PageSize, s.opts.DuplicateRows))
}

func (s *Server) getProduct(c echo.Context) error {
	p, err := s.store.product(c.Param("code"))
	if err != nil {
		return message(c, http.StatusNotFound, "Barang tidak ditemukan")
	}
	return c.JSON(http.StatusOK, p)
}

func bindProduct(c echo.Context) (model.Product, map[string][]string, error) {
	var p model.Product
	if err := c.Bind(&p); err != nil {
		return p, nil, err
	}
	fields := map[string][]string{}
	if strings.TrimSpace(p.Code) == "" {
		fields["kodebarang"] = []string{"The kodebarang field is required."}
	}
	if strings.TrimSpace(p.Name) == "" {
		fields["namabarang"] = []string{"The namabarang field is required."}
	}
	if strings.TrimSpace(p.Unit) == "" {
		fields["satuan"] = []string{"The satuan field is required."}
	}
	if p.UnitPrice <= 0 {
		fields["harga"] = []string{"The harga must be greater than 0."}
	}
	return p, fields, nil
}

func (s *Server) createProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	p, fields, err := bindProduct(c)
	if err != nil {
		log.Warn("Invalid product request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}
	if len(fields) > 0 {
		return validationFailed(c, fields)
	}
	p.ImagePath = ""
	if err := s.store.AddProduct(p); err != nil {
		return validationFailed(c, map[string][]string{"kodebarang": {"The kodebarang has already been taken."}})
	}

	log.Info("Product created", zap.String("code", p.Code))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Barang berhasil ditambahkan", "data": p})
}

func (s *Server) updateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	code := c.Param("code")

	p, fields, err := bindProduct(c)
	if err != nil {
		log.Warn("Invalid product request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}
	if len(fields) > 0 {
		return validationFailed(c, fields)
	}
	switch err := s.store.updateProduct(code, p); {
	case errors.Is(err, errNotFound):
		return message(c, http.StatusNotFound, "Barang tidak ditemukan")
	case errors.Is(err, errDuplicateCode):
		return validationFailed(c, map[string][]string{"kodebarang": {"The kodebarang has already been taken."}})
	}

	log.Info("Product updated", zap.String("code", code))
	return message(c, http.StatusOK, "Barang berhasil diperbarui")
}

func (s *Server) deleteProduct(c echo.Context) error {
	code := c.Param("code")
	if err := s.store.deleteProduct(code); err != nil {
		return message(c, http.StatusNotFound, "Barang tidak ditemukan")
	}
	logger.FromEcho(c).Info("Product deleted", zap.String("code", code))
	return message(c, http.StatusOK, "Barang berhasil dihapus")
}

func (s *Server) uploadProductImage(c echo.Context) error {
	log := logger.FromEcho(c)
	code := c.Param("code")

	file, err := c.FormFile("gambar")
	if err != nil {
		return validationFailed(c, map[string][]string{"gambar": {"The gambar field is required."}})
	}
	src, err := file.Open()
	if err != nil {
		return message(c, http.StatusBadRequest, "cannot read upload")
	}
	defer src.Close()
	size, err := io.Copy(io.Discard, src)
	if err != nil || size == 0 {
		return validationFailed(c, map[string][]string{"gambar": {"The gambar must be an image."}})
	}

	imagePath := "gambar/" + code + "/" + path.Base(file.Filename)
	if err := s.store.setProductImage(code, imagePath); err != nil {
		return message(c, http.StatusNotFound, "Barang tidak ditemukan")
	}

	log.Info("Product image uploaded",
		zap.String("code", code),
		zap.String("method_override", c.FormValue("_method")),
		zap.Int64("size", size))
	return c.JSON(http.StatusOK, echo.Map{"message": "Gambar berhasil diupload", "gambar": imagePath})
}

func (s *Server) listCustomers(c echo.Context) error {
	items := s.store.searchCustomers(c.QueryParam("search"))
	return c.JSON(http.StatusOK, page(items, pageParam(c), s.opts.PageSize, s.opts.DuplicateRows))
}

func (s *Server) getCustomer(c echo.Context) error {
	cust, err := s.store.customer(c.Param("code"))
	if err != nil {
		return message(c, http.StatusNotFound, "Pelanggan tidak ditemukan")
	}
	return c.JSON(http.StatusOK, cust)
}

func bindCustomer(c echo.Context) (model.Customer, map[string][]string, error) {
	var cust model.Customer
	if err := c.Bind(&cust); err != nil {
		return cust, nil, err
	}
	fields := map[string][]string{}
	if strings.TrimSpace(cust.Code) == "" {
		fields["kodepelanggan"] = []string{"The kodepelanggan field is required."}
	}
	if strings.TrimSpace(cust.Name) == "" {
		fields["namapelanggan"] = []string{"The namapelanggan field is required."}
	}
	if strings.TrimSpace(string(cust.Phone)) == "" {
		fields["nohp"] = []string{"The nohp field is required."}
	}
	if strings.TrimSpace(cust.Address) == "" {
		fields["alamat"] = []string{"The alamat field is required."}
	}
	return cust, fields, nil
}

func (s *Server) createCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	cust, fields, err := bindCustomer(c)
	if err != nil {
		log.Warn("Invalid customer request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}
	if len(fields) > 0 {
		return validationFailed(c, fields)
	}
	if err := s.store.AddCustomer(cust); err != nil {
		return validationFailed(c, map[string][]string{"kodepelanggan": {"The kodepelanggan has already been taken."}})
	}

	log.Info("Customer created", zap.String("code", cust.Code))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Pelanggan berhasil ditambahkan", "data": cust})
}

func (s *Server) updateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	code := c.Param("code")

	cust, fields, err := bindCustomer(c)
	if err != nil {
		log.Warn("Invalid customer request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}
	if len(fields) > 0 {
		return validationFailed(c, fields)
	}
	switch err := s.store.updateCustomer(code, cust); {
	case errors.Is(err, errNotFound):
		return message(c, http.StatusNotFound, "Pelanggan tidak ditemukan")
	case errors.Is(err, errDuplicateCode):
		return validationFailed(c, map[string][]string{"kodepelanggan": {"The kodepelanggan has already been taken."}})
	}

	log.Info("Customer updated", zap.String("code", code))
	return message(c, http.StatusOK, "Pelanggan berhasil diperbarui")
}

func (s *Server) deleteCustomer(c echo.Context) error {
	code := c.Param("code")
	if err := s.store.deleteCustomer(code); err != nil {
		return message(c, http.StatusNotFound, "Pelanggan tidak ditemukan")
	}
	logger.FromEcho(c).Info("Customer deleted", zap.String("code", code))
	return message(c, http.StatusOK, "Pelanggan berhasil dihapus")
}
