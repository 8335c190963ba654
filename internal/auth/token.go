package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiryBuffer is subtracted from the token's exp so the session ends
// slightly before the API starts rejecting the token.
const TokenExpiryBuffer = 60 * time.Second

// ExtractExpiry reads the exp claim of a JWT without verifying the
// signature. The portal never trusts the claims; it only uses exp to size
// the session.
func ExtractExpiry(tokenString string) (time.Time, error) {
	if tokenString == "" {
		return time.Time{}, errors.New("empty token")
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("expiration claim not found in token")
	}
	return exp.Time, nil
}

// TokenTTL returns how long a session holding token should live: until the
// token's exp minus the buffer, or fallback for opaque tokens and tokens
// without exp.
func TokenTTL(fallback time.Duration) func(token string) time.Duration {
	return func(token string) time.Duration {
		return tokenTTLAt(token, fallback, time.Now())
	}
}

func tokenTTLAt(token string, fallback time.Duration, now time.Time) time.Duration {
	exp, err := ExtractExpiry(token)
	if err != nil {
		return fallback
	}
	ttl := exp.Sub(now) - TokenExpiryBuffer
	if ttl <= 0 {
		// already expired; keep it briefly so the next API call gets the 401
		return time.Second
	}
	if fallback > 0 && ttl > fallback {
		return fallback
	}
	return ttl
}
