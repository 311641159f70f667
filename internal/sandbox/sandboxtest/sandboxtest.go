// Package sandboxtest starts a seeded sandbox backend for tests and returns a
// logged-in client wired to it.
package sandboxtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/internal/api"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/internal/sandbox"
	"github.com/suteetoe/tokokita/pkg/client"
	"github.com/suteetoe/tokokita/pkg/session"
)

const (
	DemoEmail    = "demo@tokokita.test"
	DemoPassword = "password123"
	DemoUser     = "demo"
)

// Env is a running sandbox plus a client pointed at it
type Env struct {
	Store    *sandbox.Store
	Server   *httptest.Server
	Session  *session.Provider
	Client   *client.Client
	API      *api.API
	requests int64
}

// Requests is the number of HTTP requests the backend has received
func (e *Env) Requests() int {
	return int(atomic.LoadInt64(&e.requests))
}

// Start runs a demo-seeded backend and logs the demo user in
func Start(t *testing.T, opts sandbox.Options) *Env {
	t.Helper()

	store := sandbox.NewStore()
	require.NoError(t, sandbox.SeedDemo(store))
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC) }
	}
	srv := sandbox.New(store, opts, nil, nil)

	env := &Env{Store: store}
	env.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&env.requests, 1)
		srv.ServeHTTP(w, r)
	}))
	t.Cleanup(env.Server.Close)

	env.Session = session.NewProvider(session.NewMemoryStore())
	env.Client = client.New(env.Server.URL+"/api", env.Session)
	env.API = api.New(env.Client)

	resp, err := env.API.Auth.Login(context.Background(), api.LoginRequest{Email: DemoEmail, Password: DemoPassword})
	require.NoError(t, err)
	require.NoError(t, env.Session.Set(model.Credential{Token: resp.Token, UserID: resp.User.Name}))
	atomic.StoreInt64(&env.requests, 0)

	return env
}
