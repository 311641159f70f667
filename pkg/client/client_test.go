package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/logger"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type staticCreds struct {
	cred model.Credential
	ok   bool
}

func (s staticCreds) Get() (model.Credential, bool) { return s.cred, s.ok }

func loggedIn(token string) staticCreds {
	return staticCreds{cred: model.Credential{Token: token, UserID: "budi"}, ok: true}
}

func TestDoAttachesHeaders(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", loggedIn("opaque-token"))
	raw, err := c.Do(context.Background(), http.MethodPost, "/insert-temp/budi",
		map[string]interface{}{"kodebarang": "B1", "qty": 1},
		WithQuery(url.Values{"x": []string{"1"}}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, "/api/insert-temp/budi", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("x"))
	assert.Equal(t, "Bearer opaque-token", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"kodebarang":"B1","qty":1}`, string(body))
}

func TestUnauthenticatedWithoutRoundTrip(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	t.Run("no credential", func(t *testing.T) {
		c := New(srv.URL, staticCreds{})
		_, err := c.Do(context.Background(), http.MethodGet, "/barang", nil)
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})

	t.Run("expired jwt", func(t *testing.T) {
		claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)

		c := New(srv.URL, loggedIn(token))
		_, err = c.Do(context.Background(), http.MethodGet, "/barang", nil)
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	t.Run("without auth still goes out", func(t *testing.T) {
		c := New(srv.URL, staticCreds{})
		_, err := c.Do(context.Background(), http.MethodPost, "/login", map[string]string{"email": "a"}, WithoutAuth())
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    apperr.Kind
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Unauthenticated."}`, apperr.KindUnauthenticated, "Unauthenticated."},
		{"forbidden", http.StatusForbidden, ``, apperr.KindUnauthenticated, "request failed with status 403"},
		{"server message", http.StatusUnprocessableEntity, `{"message":"Stok habis"}`, apperr.KindServerRejected, "Stok habis"},
		{"error field", http.StatusBadRequest, `{"error":"bad input"}`, apperr.KindServerRejected, "bad input"},
		{"generic", http.StatusInternalServerError, `<html>oops</html>`, apperr.KindServerRejected, "request failed with status 500"},
		{"malformed success", http.StatusOK, `{"data":`, apperr.KindMalformedResponse, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, loggedIn("t")).Do(context.Background(), http.MethodGet, "/x", nil)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))

			var e *apperr.Error
			require.ErrorAs(t, err, &e)
			if tt.message != "" {
				assert.Equal(t, tt.message, e.Message)
			}
		})
	}
}

func TestFieldErrorsAreKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid","errors":{"email":["The email has already been taken."]}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, staticCreds{}).Do(context.Background(), http.MethodPost, "/register", map[string]string{}, WithoutAuth())

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusUnprocessableEntity, e.Status)
	assert.Equal(t, "The email has already been taken.", e.Fields["email"])
}

func TestNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New(base, loggedIn("t")).Do(context.Background(), http.MethodGet, "/barang", nil)
	assert.True(t, apperr.Is(err, apperr.KindNetworkUnavailable))
}

func TestEmptyBodyIsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw, err := New(srv.URL, loggedIn("t")).Do(context.Background(), http.MethodDelete, "/barang/B1", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestDoRawAndUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/report.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4 data"))
		case "/upload":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			file, header, err := r.FormFile("gambar")
			require.NoError(t, err)
			defer file.Close()
			content, _ := io.ReadAll(file)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"method": r.FormValue("_method"),
				"name":   header.Filename,
				"body":   string(content),
			})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, loggedIn("t"))

	data, ct, err := c.DoRaw(context.Background(), http.MethodGet, "/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, "%PDF-1.4 data", string(data))

	raw, err := c.Upload(context.Background(), "/upload", map[string]string{"_method": "PUT"}, "gambar", "teh.jpg", []byte("img"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"PUT","name":"teh.jpg","body":"img"}`, string(raw))
}

func TestMetricsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	m := metrics.New("test")
	c := New(srv.URL, loggedIn("t"), WithMetrics(m), WithTimeout(time.Second))
	_, err := c.Do(context.Background(), http.MethodGet, "/barang", nil, WithRoute("barang.list"))
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues(http.MethodGet, "barang.list", "200")))
}

func TestRequestLoggerFromContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	base, baseLogs := observer.New(zapcore.DebugLevel)
	scoped, scopedLogs := observer.New(zapcore.DebugLevel)
	c := New(srv.URL, loggedIn("t"), WithLogger(zap.New(base)))

	ctx := logger.WithContext(context.Background(), zap.New(scoped).With(zap.String("command", "tokokita cart")))
	_, err := c.Do(ctx, http.MethodGet, "/keranjang/budi", nil)
	require.NoError(t, err)

	assert.Zero(t, baseLogs.Len())
	entries := scopedLogs.FilterMessage("API request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tokokita cart", entries[0].ContextMap()["command"])

	_, err = c.Do(context.Background(), http.MethodGet, "/keranjang/budi", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, baseLogs.FilterMessage("API request").Len())
}
