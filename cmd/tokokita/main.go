package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/suteetoe/tokokita/internal/api"
	"github.com/suteetoe/tokokita/internal/auth"
	"github.com/suteetoe/tokokita/internal/cart"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/client"
	"github.com/suteetoe/tokokita/pkg/config"
	"github.com/suteetoe/tokokita/pkg/database"
	"github.com/suteetoe/tokokita/pkg/logger"
	"github.com/suteetoe/tokokita/pkg/session"
	"github.com/suteetoe/tokokita/pkg/storage"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	exitFailure         = 1
	exitUnauthenticated = 2
)

// app holds everything a command needs. It is built once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	db      *gorm.DB
	session *session.Provider
	api     *api.API
	auth    *auth.Service
	cart    *cart.Synchronizer
	storage storage.Authorizer

	in         io.Reader
	out        io.Writer
	metricsSrv *http.Server
}

func (a *app) open(verbose bool) error {
	cfg, err := config.Load("tokokita")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		cfg.Log.Level = "warn"
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.log = logger.GetLogger()
	a.log.Debug("Configuration loaded", cfg.LogFields()...)

	a.metrics = metrics.New(cfg.Metrics.Prefix)
	if cfg.Metrics.Addr != "" {
		a.metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: a.metrics.Handler()}
		go func() {
			if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("Metrics server stopped", zap.Error(err))
			}
		}()
	}

	a.db, err = database.Open(cfg.Session.Path, a.log, &session.SessionEntry{})
	if err != nil {
		return apperr.StorageUnavailable("session store is not available", err)
	}
	a.session = session.NewProvider(session.NewSQLiteStore(a.db))

	c := client.New(cfg.API.BaseURL, a.session,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(a.log),
		client.WithMetrics(a.metrics),
	)
	a.api = api.New(c)
	a.auth = auth.NewService(a.api.Auth, a.session, a.log)
	a.cart = cart.New(a.api.Cart, a.session, cart.WithLogger(a.log), cart.WithMetrics(a.metrics))
	a.storage = storage.DirAuthorizer{Dir: cfg.Storage.DownloadDir}
	return nil
}

func (a *app) close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metricsSrv.Shutdown(ctx)
		a.metricsSrv = nil
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Warn("Failed to close session store", zap.Error(err))
		}
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "tokokita",
		Short:         "Point-of-sale client for the TokoKita storefront",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(verbose); err != nil {
				return err
			}
			cmdLog := a.log.With(zap.String("command", cmd.CommandPath()))
			cmd.SetContext(logger.WithContext(cmd.Context(), cmdLog))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.SetIn(a.in)
	root.SetOut(a.out)

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newProductsCmd(a),
		newCustomersCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newReportCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// exitCode reports the error and maps it to the process exit status
func exitCode(w io.Writer, err error) int {
	if apperr.Is(err, apperr.KindUnauthenticated) {
		fmt.Fprintln(w, "session expired, please run `tokokita login`")
		return exitUnauthenticated
	}
	fmt.Fprintln(w, "error:", apperr.UserMessage(err))
	return exitFailure
}

func main() {
	a := &app{in: os.Stdin, out: os.Stdout}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		a.close()
		os.Exit(exitCode(os.Stderr, err))
	}
}
