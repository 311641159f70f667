package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/tokokita/internal/api"
	"github.com/suteetoe/tokokita/internal/api/mocks"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/internal/sandbox"
	"github.com/suteetoe/tokokita/internal/sandbox/sandboxtest"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/session"
)

func newProvider() *session.Provider {
	return session.NewProvider(session.NewMemoryStore())
}

func TestLogin(t *testing.T) {
	t.Run("stores token and user name", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		backend.On("Login", mock.Anything, api.LoginRequest{Email: "demo@tokokita.test", Password: "password123"}).
			Return(&api.LoginResponse{Token: "tok", User: model.User{Name: "demo"}}, nil)
		sess := newProvider()
		svc := NewService(backend, sess, nil)

		cred, err := svc.Login(context.Background(), " demo@tokokita.test ", "password123")
		require.NoError(t, err)
		assert.Equal(t, model.Credential{Token: "tok", UserID: "demo"}, cred)

		stored, ok := sess.Get()
		require.True(t, ok)
		assert.Equal(t, cred, stored)
	})

	t.Run("missing fields make no request", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		svc := NewService(backend, newProvider(), nil)

		_, err := svc.Login(context.Background(), "", "")
		var e *apperr.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, apperr.KindValidation, e.Kind)
		assert.Contains(t, e.Fields, "email")
		assert.Contains(t, e.Fields, "password")
		assert.Empty(t, backend.Calls)
	})

	t.Run("wrong password is a validation error", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		backend.On("Login", mock.Anything, mock.Anything).Return(nil, apperr.Unauthenticated("Email atau password salah"))
		sess := newProvider()
		svc := NewService(backend, sess, nil)

		_, err := svc.Login(context.Background(), "demo@tokokita.test", "nope")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		_, ok := sess.Get()
		assert.False(t, ok)
	})

	t.Run("response without token is malformed", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		backend.On("Login", mock.Anything, mock.Anything).Return(&api.LoginResponse{User: model.User{Name: "demo"}}, nil)
		svc := NewService(backend, newProvider(), nil)

		_, err := svc.Login(context.Background(), "demo@tokokita.test", "password123")
		assert.True(t, apperr.Is(err, apperr.KindMalformedResponse))
	})
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name, user, email, password string
		field                       string
	}{
		{"missing name", "", "a@b.test", "password123", "name"},
		{"bad email", "Ani", "not-an-email", "password123", "email"},
		{"short password", "Ani", "a@b.test", "short", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(mocks.MockAuthAPI)
			svc := NewService(backend, newProvider(), nil)

			err := svc.Register(context.Background(), tt.user, tt.email, tt.password)
			var e *apperr.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Contains(t, e.Fields, tt.field)
			assert.Empty(t, backend.Calls)
		})
	}
}

func TestRegisterServerFieldErrors(t *testing.T) {
	rejected := apperr.ServerRejected(422, "The email has already been taken.")
	rejected.Fields = map[string]string{"email": "The email has already been taken."}
	backend := new(mocks.MockAuthAPI)
	backend.On("Register", mock.Anything, mock.Anything).Return(rejected)
	svc := NewService(backend, newProvider(), nil)

	err := svc.Register(context.Background(), "Demo", "demo@tokokita.test", "password123")
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, "The email has already been taken.", e.Fields["email"])
}

func TestLogout(t *testing.T) {
	cred := model.Credential{Token: "tok", UserID: "demo"}

	t.Run("stale token still clears", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		backend.On("Logout", mock.Anything).Return(apperr.Unauthenticated("Unauthenticated."))
		sess := newProvider()
		require.NoError(t, sess.Set(cred))

		require.NoError(t, NewService(backend, sess, nil).Logout(context.Background()))
		_, ok := sess.Get()
		assert.False(t, ok)
	})

	t.Run("network failure keeps the session", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		backend.On("Logout", mock.Anything).Return(apperr.NetworkUnavailable(errors.New("refused")))
		sess := newProvider()
		require.NoError(t, sess.Set(cred))

		err := NewService(backend, sess, nil).Logout(context.Background())
		assert.True(t, apperr.Is(err, apperr.KindNetworkUnavailable))
		_, ok := sess.Get()
		assert.True(t, ok)
	})

	t.Run("no session is a no-op", func(t *testing.T) {
		backend := new(mocks.MockAuthAPI)
		require.NoError(t, NewService(backend, newProvider(), nil).Logout(context.Background()))
		assert.Empty(t, backend.Calls)
	})
}

func TestLifecycleAgainstSandbox(t *testing.T) {
	env := sandboxtest.Start(t, sandbox.Options{})
	svc := NewService(env.API.Auth, env.Session, nil)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx))
	_, ok := env.Session.Get()
	require.False(t, ok)

	_, err := env.API.Products.List(ctx, "", 1)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	err = svc.Register(ctx, "Ani", sandboxtest.DemoEmail, "password123")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.Register(ctx, "Ani", "ani@tokokita.test", "rahasia123"))
	cred, err := svc.Login(ctx, "ani@tokokita.test", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "Ani", cred.UserID)

	_, err = svc.Login(ctx, "ani@tokokita.test", "wrong-password")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	page, err := env.API.Products.List(ctx, "", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, page.Items)
}
