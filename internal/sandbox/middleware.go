package sandbox

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tokokita/pkg/logger"
	"go.uber.org/zap"
)

// RequestIDMiddleware keeps the caller's X-Request-ID or assigns a new one
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request().Header.Set(echo.HeaderXRequestID, requestID)
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)
		c.Set("request_id", requestID)

		return next(c)
	}
}

// authMiddleware validates the bearer token and stores the user in the context
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return unauthenticated(c)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return unauthenticated(c)
		}
		tokenString := parts[1]

		claims, err := s.jwt.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			return unauthenticated(c)
		}
		if s.store.isRevoked(tokenString) {
			log.Warn("Revoked JWT token", zap.String("user_id", claims.UserID))
			return unauthenticated(c)
		}

		c.Set("token", tokenString)
		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("email", claims.Email)

		return next(c)
	}
}

// ownCart rejects cart access for another user's cart
func ownCart(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		name, _ := c.Get("user_name").(string)
		if c.Param("user") != name {
			logger.FromEcho(c).Warn("Cart access for another user",
				zap.String("user_name", name),
				zap.String("cart_user", c.Param("user")))
			return c.JSON(http.StatusForbidden, echo.Map{"message": "This action is unauthorized."})
		}
		return next(c)
	}
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthenticated."})
}
