package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ccarlsson/todo-app/internal/domain"
)

const defaultExpiryMinutes = 60

var ErrTokenInvalid = errors.New("token is invalid or expired")

// Claims carried by an issued session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, self-contained session tokens.
// Validity lives entirely in the token plus the shared secret; nothing is
// persisted and revocation is not supported.
type TokenService struct {
	secret        []byte
	issuer        string
	audience      string
	expiryMinutes int
}

func NewTokenService(secret []byte, issuer, audience string, expiryMinutes int) *TokenService {
	if expiryMinutes <= 0 {
		expiryMinutes = defaultExpiryMinutes
	}
	return &TokenService{
		secret:        secret,
		issuer:        issuer,
		audience:      audience,
		expiryMinutes: expiryMinutes,
	}
}

// Issue signs an HS256 token for user. The second return value is the token
// lifetime in seconds.
func (s *TokenService) Issue(user *domain.User) (string, int, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expiryMinutes) * time.Minute)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, s.expiryMinutes * 60, nil
}

// Parse validates signature, lifetime, issuer and audience, and returns the
// claims of a token previously produced by Issue.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
