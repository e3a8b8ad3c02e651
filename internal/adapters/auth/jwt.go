// Package auth verifies the identity tokens issued by the accounts service.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dkeye/campfire/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims carries the user the token was issued to.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens. Issue exists for tests and local tooling;
// production tokens come from the accounts service.
type JWTVerifier struct {
	config Config
}

func NewJWTVerifier(config Config) *JWTVerifier {
	return &JWTVerifier{config: config}
}

func (v *JWTVerifier) Issue(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   string(user.ID),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.config.Issuer,
			Subject:   string(user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.config.Secret))
}

// Verify returns the user a valid token names.
func (v *JWTVerifier) Verify(tokenString string) (domain.User, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return domain.User{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.config.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.User{}, ErrExpiredToken
		}
		return domain.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return domain.User{}, ErrInvalidToken
	}
	username, err := domain.ValidateUsername(claims.Username)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	return domain.User{ID: domain.UserID(claims.UserID), Username: username}, nil
}
