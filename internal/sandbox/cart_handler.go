package sandbox

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/logger"
	"go.uber.org/zap"
)

func (s *Server) cartLines(c echo.Context) error {
	lines := s.store.cartLines(c.Param("user"))
	if s.opts.DuplicateRows && len(lines) > 0 {
		lines = append(lines, lines[0])
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lines})
}

func (s *Server) insertCartItem(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Code     string       `json:"kodebarang"`
		Quantity model.Amount `json:"qty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid cart request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}
	if req.Code == "" || req.Quantity < 1 {
		return validationFailed(c, map[string][]string{"qty": {"The qty must be at least 1."}})
	}
	if err := s.store.addToCart(c.Param("user"), req.Code, int(req.Quantity)); err != nil {
		return message(c, http.StatusNotFound, "Barang tidak ditemukan")
	}

	log.Info("Cart item added", zap.String("code", req.Code), zap.Int64("qty", int64(req.Quantity)))
	return message(c, http.StatusOK, "Barang ditambahkan ke keranjang")
}

func (s *Server) removeCartItem(c echo.Context) error {
	code := c.Param("code")
	if err := s.store.removeFromCart(c.Param("user"), code); err != nil {
		return message(c, http.StatusNotFound, "Barang tidak ada di keranjang")
	}
	logger.FromEcho(c).Info("Cart item removed", zap.String("code", code))
	return message(c, http.StatusOK, "Barang dihapus dari keranjang")
}

func (s *Server) cartItemCount(c echo.Context) error {
	var n int64
	for _, l := range s.store.cartLines(c.Param("user")) {
		n += int64(l.Quantity)
	}
	return c.JSON(http.StatusOK, echo.Map{"totalItems": n})
}

func (s *Server) cartTotal(c echo.Context) error {
	var total int64
	for _, l := range s.store.cartLines(c.Param("user")) {
		total += l.Subtotal()
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}
