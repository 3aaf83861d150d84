package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// DefaultTokenTTL is the session token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// Claims is the session token payload. UserID duplicates the subject for
// clients that read the user id from the "id" field.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 session tokens with a single
// process-wide secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for user that expires after the configured TTL.
func (j *JWTIssuer) Issue(user *domain.User) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}

	now := j.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Verify checks signature and expiry. Every failure collapses to
// domain.ErrTokenInvalid.
func (j *JWTIssuer) Verify(token string) (*domain.Principal, error) {
	if token == "" || len(j.secret) == 0 {
		return nil, domain.ErrTokenInvalid
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.UserID
	}
	if subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Principal{UserID: subject, Username: claims.Username, Role: claims.Role}, nil
}
