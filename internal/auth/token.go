package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims is the payload of an issued bearer token. It carries the
// subject id and email only. Role names are deliberately excluded so
// every request re-resolves them from the database; embedding them would
// keep stale grants alive until the token expires.
type TokenClaims struct {
	UserID uint64 `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken produces a signed bearer token for the given user, valid
// for the configured token TTL (7 days by default). There is no
// revocation list; expiry and re-signing the secret are the only
// invalidation paths.
func (s *Service) IssueToken(userID uint64, email string) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

// VerifyToken checks signature and expiry and returns the embedded
// claims. Malformed, expired and badly signed tokens all yield
// ErrUnauthenticated; the caller cannot tell which check failed.
func (s *Service) VerifyToken(tokenString string) (*TokenClaims, error) {
	claims := new(TokenClaims)

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}

		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	return claims, nil
}

// ExtractBearerToken pulls the token out of an Authorization header
// value. Returns an empty string when the header is absent or not of the
// form "Bearer <token>".
func ExtractBearerToken(authHeader string) string {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
