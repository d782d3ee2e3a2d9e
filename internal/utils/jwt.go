package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// ErrInvalidToken is returned when a token fails signature
// verification, is malformed or has expired. Business-level checks
// (frozen users, revoked roles) are deliberately not performed
// here; callers decide those.
var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims is the payload carried by access tokens. Besides the
// registered claims it snapshots the user's identity and resolved
// authorization view at issue time. The snapshot goes stale when
// roles change; that staleness window is bounded by the access TTL
// because the refresh flow re-reads the store (see RefreshClaims).
type AccessClaims struct {
	UserID      uint64             `json:"userId"`
	Username    string             `json:"username"`
	Roles       []string           `json:"roles"`
	Permissions []model.Permission `json:"permissions"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only the user id. Everything else is
// re-fetched from the store when the token is exchanged, so role
// and permission changes take effect on the next refresh without
// forcing a logout.
type RefreshClaims struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// AccessToken bundles a signed access token with its expiry.
type AccessToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// RefreshToken bundles a signed refresh token with its expiry.
type RefreshToken struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// NewAccessToken builds and signs an HS256 JWT for a user. The
// user's roles must already be loaded; they are resolved through
// ResolveRoles so the token view matches the login response.
func NewAccessToken(secret string, u model.User, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	roles, perms := ResolveRoles(u.Roles)
	claims := AccessClaims{
		UserID:      u.ID,
		Username:    u.Username,
		Roles:       roles,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs a long-lived HS256 JWT carrying
// only the user id. Refresh tokens are not persisted server-side;
// validity is purely signature plus expiry, so locking a user out
// early requires the frozen flag on the user row.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (RefreshToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of an access
// token and returns its claims. Any failure maps to ErrInvalidToken.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseInto(secret, raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token and returns the user id
// it was issued for.
func ParseRefreshToken(secret, raw string) (uint64, error) {
	claims := &RefreshClaims{}
	if err := parseInto(secret, raw, claims); err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func parseInto(secret, raw string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC so a crafted
		// token cannot downgrade verification.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}
