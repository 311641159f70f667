package sandbox

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tokokita/pkg/logger"
	"go.uber.org/zap"
)

func (s *Server) login(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}

	u, ok := s.store.authenticate(req.Email, req.Password)
	if !ok {
		log.Info("Invalid credentials", zap.String("email", req.Email))
		return message(c, http.StatusUnauthorized, "Email atau password salah")
	}

	token, err := s.jwt.GenerateToken(u.Email, strconv.Itoa(u.ID), u.Name)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return message(c, http.StatusInternalServerError, "could not issue token")
	}

	log.Info("User logged in", zap.String("email", u.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login berhasil",
		"token":   token,
		"user": echo.Map{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		},
	})
}

func (s *Server) register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse register request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}

	fields := map[string][]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = []string{"The name field is required."}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = []string{"The email must be a valid email address."}
	} else if s.store.emailTaken(req.Email) {
		fields["email"] = []string{"The email has already been taken."}
	}
	if len(req.Password) < 8 {
		fields["password"] = []string{"The password must be at least 8 characters."}
	}
	if len(fields) > 0 {
		return validationFailed(c, fields)
	}

	if err := s.store.AddUser(req.Name, req.Email, req.Password); err != nil {
		if err == errEmailTaken {
			return validationFailed(c, map[string][]string{"email": {"The email has already been taken."}})
		}
		log.Error("Failed to register user", zap.Error(err))
		return message(c, http.StatusInternalServerError, "could not register user")
	}

	log.Info("User registered", zap.String("email", req.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registrasi berhasil",
		"user":    echo.Map{"name": req.Name, "email": req.Email},
	})
}

func (s *Server) logout(c echo.Context) error {
	token, _ := c.Get("token").(string)
	s.store.revoke(token)
	logger.FromEcho(c).Info("User logged out", zap.Any("user_id", c.Get("user_id")))
	return message(c, http.StatusOK, "Logout berhasil")
}
