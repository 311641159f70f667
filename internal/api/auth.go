package api

import (
	"context"
	"net/http"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/client"
)

// Auth is the account endpoints
type Auth struct {
	r Requester
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Auth) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := a.r.DoJSON(ctx, http.MethodPost, "/login", req, &out, client.WithoutAuth(), client.WithRoute("login")); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Auth) Register(ctx context.Context, req RegisterRequest) error {
	return a.r.DoJSON(ctx, http.MethodPost, "/register", req, nil, client.WithoutAuth(), client.WithRoute("register"))
}

func (a *Auth) Logout(ctx context.Context) error {
	return a.r.DoJSON(ctx, http.MethodPost, "/logout", nil, nil, client.WithRoute("logout"))
}
