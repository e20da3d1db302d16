package session

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenExpiry decodes the access token's exp claim without verifying the
// signature. The client holds no signing key; the value is only used to log
// and to schedule pre-emptive refreshes sensibly.
func TokenExpiry(tokenStr string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token carries no expiry")
	}
	return claims.ExpiresAt.Time, nil
}
