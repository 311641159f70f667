// Package sandbox is an in-memory stand-in for the storefront backend. It
// answers every endpoint the client uses with the same JSON shapes, so the
// client can be exercised end to end without the real server.
package sandbox

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/suteetoe/tokokita/pkg/jwtutil"
	"github.com/suteetoe/tokokita/pkg/logger"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

// Options tunes the backend
type Options struct {
	PageSize int
	// DuplicateRows repeats the previous page's last row at the top of every
	// following page, and the first cart line, like the production backend does
	DuplicateRows   bool
	SigningKey      string
	ExpirationHours int
	Now             func() time.Time
}

// Server is the sandbox HTTP backend
type Server struct {
	echo    *echo.Echo
	store   *Store
	jwt     *jwtutil.JWTUtil
	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(store *Store, opts Options, log *zap.Logger, m *metrics.Metrics) *Server {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.ExpirationHours < 1 {
		opts.ExpirationHours = 24
	}
	if opts.SigningKey == "" {
		opts.SigningKey = "tokokitasandboxkey"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		echo:    echo.New(),
		store:   store,
		jwt:     jwtutil.NewJWTUtil(opts.SigningKey, opts.ExpirationHours),
		opts:    opts,
		log:     logger.OrNop(log),
		metrics: m,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.Use(middleware.Recover())
	e.Use(RequestIDMiddleware)
	e.Use(logger.Middleware(s.log))
	e.Use(s.metrics.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	e.GET("/health", s.health)

	api := e.Group("/api")
	api.POST("/login", s.login)
	api.POST("/register", s.register)

	auth := api.Group("", s.authMiddleware)
	auth.POST("/logout", s.logout)

	auth.GET("/barang", s.listProducts)
	auth.GET("/barang/:code", s.getProduct)
	auth.POST("/barang", s.createProduct)
	auth.PUT("/barang/:code", s.updateProduct)
	auth.DELETE("/barang/:code", s.deleteProduct)
	auth.POST("/barang/upload/:code", s.uploadProductImage)

	auth.GET("/pelanggan", s.listCustomers)
	auth.GET("/pelanggan/:code", s.getCustomer)
	auth.POST("/pelanggan", s.createCustomer)
	auth.PUT("/pelanggan/:code", s.updateCustomer)
	auth.DELETE("/pelanggan/:code", s.deleteCustomer)

	auth.GET("/get-keranjang/:user", s.cartLines, ownCart)
	auth.POST("/insert-temp/:user", s.insertCartItem, ownCart)
	auth.DELETE("/hapus-item-keranjang/:user/:code", s.removeCartItem, ownCart)
	auth.GET("/total-items/:user", s.cartItemCount, ownCart)
	auth.GET("/total-pembayaran/:user", s.cartTotal, ownCart)

	auth.POST("/simpan-transaksi", s.commitTransaction)
	auth.GET("/laporan-penjualan", s.salesReport)
	auth.GET("/download-laporan-penjualan", s.downloadSalesReport)
}

// Echo exposes the router, e.g. to start it
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"time":   s.opts.Now().Format(time.RFC3339),
	})
}

// page slices items into the Laravel paginator shape
func page[T any](items []T, pageNumber, size int, duplicate bool) echo.Map {
	lastPage := (len(items) + size - 1) / size
	if lastPage < 1 {
		lastPage = 1
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > lastPage+1 {
		pageNumber = lastPage + 1
	}

	start := (pageNumber - 1) * size
	data := []T{}
	if start < len(items) {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		if duplicate && start > 0 {
			data = append(data, items[start-1])
		}
		data = append(data, items[start:end]...)
	}

	return echo.Map{
		"data":         data,
		"current_page": pageNumber,
		"last_page":    lastPage,
		"per_page":     size,
		"total":        len(items),
	}
}

func validationFailed(c echo.Context, fields map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"message": "The given data was invalid.",
		"errors":  fields,
	})
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
