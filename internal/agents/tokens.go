package agents

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenManager issues and verifies HS256 session tokens for agents.
type TokenManager struct {
	signingKey string
	ttl        time.Duration
}

func NewTokenManager(signingKey string, ttl time.Duration) (*TokenManager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	return &TokenManager{signingKey: signingKey, ttl: ttl}, nil
}

// Issue creates a signed token whose subject is the agent id.
func (m *TokenManager) Issue(agentID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(m.ttl).Unix(),
		IssuedAt:  time.Now().Unix(),
		Subject:   agentID,
	})

	return token.SignedString([]byte(m.signingKey))
}

// Parse verifies a token and returns the agent id it was issued for.
func (m *TokenManager) Parse(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &jwt.StandardClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token claims")
	}

	return claims.Subject, nil
}
