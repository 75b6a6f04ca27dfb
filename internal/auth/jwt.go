// Package auth signs lock commands so a lock controller can reject forged
// or stale messages from the broker.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer names the relay in signed commands.
const DefaultIssuer = "kiosk-relay"

// CommandClaims is the signed form of a lock command.
type CommandClaims struct {
	RoomID string `json:"room_id"`
	Status string `json:"status"`
	jwt.RegisteredClaims
}

// SignCommand returns an HS256 token for roomID/status valid for ttl from issuedAt.
func SignCommand(roomID, status, key, issuer string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("empty signing key")
	}
	claims := CommandClaims{
		RoomID: roomID,
		Status: status,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   roomID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}

// ParseCommand validates a signed command and returns its claims.
func ParseCommand(tokenStr, key, issuer string) (CommandClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &CommandClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return CommandClaims{}, err
	}
	claims, ok := parsed.Claims.(*CommandClaims)
	if !ok || !parsed.Valid {
		return CommandClaims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return CommandClaims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}
