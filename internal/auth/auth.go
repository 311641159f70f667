// Package auth owns the session lifecycle: login writes it, logout clears it.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/suteetoe/tokokita/internal/api"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// Backend is implemented by *api.Auth
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
	Logout(ctx context.Context) error
}

// Session is implemented by *session.Provider
type Session interface {
	Get() (model.Credential, bool)
	Set(cred model.Credential) error
	Clear() error
}

type Service struct {
	backend Backend
	session Session
	log     *zap.Logger
}

func NewService(backend Backend, session Session, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, session: session, log: log}
}

// Login authenticates and stores the credential
func (s *Service) Login(ctx context.Context, email, password string) (model.Credential, error) {
	email = strings.TrimSpace(email)
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "required"
	}
	if password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		return model.Credential{}, apperr.ValidationFields("email and password are required", fields)
	}

	resp, err := s.backend.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		// Bad credentials come back as 401 before any session exists
		if apperr.Is(err, apperr.KindUnauthenticated) {
			return model.Credential{}, apperr.Validation("email or password is incorrect")
		}
		return model.Credential{}, asFieldErrors(err)
	}
	if resp.Token == "" || resp.User.Name == "" {
		return model.Credential{}, apperr.MalformedResponse(errors.New("login response has no token or user name"))
	}

	cred := model.Credential{Token: resp.Token, UserID: resp.User.Name}
	if err := s.session.Set(cred); err != nil {
		return model.Credential{}, err
	}
	s.log.Info("Logged in", zap.String("user", cred.UserID))
	return cred, nil
}

// Register creates an account. It does not log in.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if email == "" {
		fields["email"] = "required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "not a valid email address"
	}
	if len(password) < minPasswordLength {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("registration is incomplete", fields)
	}

	if err := s.backend.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password}); err != nil {
		return asFieldErrors(err)
	}
	s.log.Info("Account registered", zap.String("email", email))
	return nil
}

// Logout revokes the token and clears the session. A stale token still
// clears the session; any other failure keeps it.
func (s *Service) Logout(ctx context.Context) error {
	if _, ok := s.session.Get(); !ok {
		return nil
	}
	err := s.backend.Logout(ctx)
	if err != nil && !apperr.Is(err, apperr.KindUnauthenticated) {
		s.log.Warn("Logout failed", zap.Error(err))
		return err
	}
	if err := s.session.Clear(); err != nil {
		return err
	}
	s.log.Info("Logged out")
	return nil
}

// asFieldErrors turns a 422 carrying per-field messages into a validation error
func asFieldErrors(err error) error {
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind == apperr.KindServerRejected &&
		e.Status == http.StatusUnprocessableEntity && len(e.Fields) > 0 {
		return apperr.ValidationFields(e.Message, e.Fields)
	}
	return err
}
