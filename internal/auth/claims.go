package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is what the access token says about its holder.
type User struct {
	ID        string
	Name      string
	Email     string
	ExpiresAt time.Time // zero if the token carries no exp
}

// Expired reports whether the token's exp is in the past.
func (u User) Expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && now.After(u.ExpiresAt)
}

// DecodeClaims reads sub, username and email from an access token without
// verifying its signature. The backend is the only party holding the key.
func DecodeClaims(token string) (User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return User{}, fmt.Errorf("failed to decode token: %w", err)
	}

	u := User{
		ID:    stringClaim(claims, "sub"),
		Name:  stringClaim(claims, "username"),
		Email: stringClaim(claims, "email"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		u.ExpiresAt = exp.Time
	}
	return u, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
