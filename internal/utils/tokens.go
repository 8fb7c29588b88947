package utils

import (
	"errors"
	"time"

	"stresscheck-go/internal/config"
	"stresscheck-go/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// Claims is the bearer token payload: subject user, tenant company, role.
type Claims struct {
	UID   string `json:"uid"`
	CID   string `json:"cid"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.Conf.Server.JWTSecret)
}

// SignToken issues a bearer token for the user.
func SignToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   user.ID.String(),
		CID:   user.CompanyID.String(),
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ParseToken validates a bearer token and returns its claims.
func ParseToken(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}
