package user

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
)

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// AccountID returns the account id carried in the subject.
func (c *Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing token subject: %w", err)
	}

	return id, nil
}

func (s *Service) issueToken(a *Account) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokens.TTL)

	claims := Claims{
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID, 10),
			Issuer:    s.tokens.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.tokens.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}

		return []byte(s.tokens.Secret), nil
	}, jwt.WithIssuer(s.tokens.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthorized("token has expired")
		}

		return nil, apperr.Unauthorized("invalid token")
	}

	if claims.Subject == "" {
		return nil, apperr.Unauthorized("invalid token claims")
	}

	return claims, nil
}
