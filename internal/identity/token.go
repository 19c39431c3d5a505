package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/bullionbook/internal/config"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
)

const defaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = apperror.New(apperror.KindUnauthenticated, "invalid_token")
	ErrMissingKey   = errors.New("identity: AUTH_JWT_SECRET is not configured")
)

// Claims is the bearer token payload. The subject is the tenant id.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(cfg config.Config) *TokenIssuer {
	return &TokenIssuer{secret: []byte(cfg.AuthJWTSecret), now: time.Now}
}

func (i *TokenIssuer) Issue(tenantID snowflake.ID, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingKey
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := i.now()
	claims := &Claims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tenantID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies the token and returns the tenant it was issued for.
func (i *TokenIssuer) Parse(raw string) (snowflake.ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(i.secret) == 0 {
		return 0, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, apperror.Wrap(apperror.KindUnauthenticated, "invalid_token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	tenantID, err := snowflake.ParseString(claims.TenantID)
	if err != nil || tenantID == 0 {
		return 0, ErrInvalidToken
	}
	return tenantID, nil
}
