package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"eventsphere/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// JWT signs and verifies access tokens with HS256 and a shared secret.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a JWT issuer/verifier using the given secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

// Issue signs a token whose subject is the user's email and which carries the user id and admin flag.
func (j *JWT) Issue(user *domain.User, expiry time.Duration) (string, error) {
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks algorithm, signature and expiry. Every failure is reported as domain.ErrInvalidToken.
func (j *JWT) Verify(tokenString string) (*domain.Claims, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Claims{
		UserID:    claims.UserID,
		Email:     claims.Subject,
		IsAdmin:   claims.IsAdmin,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
