package jwtutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims identifies the logged-in user inside a token
type UserClaims struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTUtil issues and validates tokens for the sandbox backend
type JWTUtil struct {
	signingKey      string
	expirationHours int
	now             func() time.Time
}

// NewJWTUtil creates a new JWT utility
func NewJWTUtil(signingKey string, expirationHours int) *JWTUtil {
	return &JWTUtil{
		signingKey:      signingKey,
		expirationHours: expirationHours,
		now:             time.Now,
	}
}

// GenerateToken creates a signed token for a user
func (j *JWTUtil) GenerateToken(email, userID, name string) (string, error) {
	if j.signingKey == "" {
		return "", errors.New("JWT signing key not configured")
	}

	now := j.now()
	claims := &UserClaims{
		Email:  email,
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(j.expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.signingKey))
}

// ValidateToken validates and parses a token
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.signingKey), nil
		},
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ExpiresAt reads the exp claim of a token without verifying its signature.
// ok is false when the token is not a JWT or carries no exp.
func ExpiresAt(tokenString string) (exp time.Time, ok bool) {
	if strings.Count(tokenString, ".") != 2 {
		return time.Time{}, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether a JWT is past its exp at the given instant.
// Opaque tokens are never considered expired.
func Expired(tokenString string, at time.Time) bool {
	exp, ok := ExpiresAt(tokenString)
	if !ok {
		return false
	}
	return !at.Before(exp)
}
