package auth

import (
	"time"

	"atelier/atelier/types"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated user's id alongside the registered
// claim set. Tokens are stateless: expiry is the only invalidation.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

func GenerateToken(userID string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})
	return token.SignedString(secret)
}

// UserIDFromToken verifies signature and expiry and returns the embedded
// user id. Any failure collapses to ErrUnauthorized; callers never learn
// whether a token was tampered with or merely stale.
func UserIDFromToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", types.ErrUnauthorized
	}
	return claims.UserID, nil
}
