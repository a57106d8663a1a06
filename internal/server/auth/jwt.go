// Package auth implements the token service and the credential store:
// typed, signed, expiring JWTs plus bcrypt password handling.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/evgsol/vipgate/internal/common"
)

// TokenType is the closed set of purposes a signed token may serve. Every
// validation checks the type structurally; it is never inferred from the
// token contents.
type TokenType string

const (
	TokenAccess     TokenType = "access"
	TokenRefresh    TokenType = "refresh"
	TokenReset      TokenType = "reset"
	TokenActivation TokenType = "activation"
)

const (
	resetTokenTTL      = time.Hour
	activationTokenTTL = 24 * time.Hour
)

// Claims carries the standard registered claims plus the vipgate-specific
// ones. Subject holds the user id. Reset and activation tokens carry the
// user's email as a correlation hint instead of the username.
type Claims struct {
	jwt.RegisteredClaims
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// UserID parses the subject claim back into a user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

// Manager signs and validates tokens with a shared HS256 secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret []byte, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken mints a short-lived access token for the user.
func (m *Manager) IssueAccessToken(userID int64, username string) (string, error) {
	return m.sign(Claims{
		RegisteredClaims: registered(userID, m.accessTTL),
		Username:         username,
		TokenType:        TokenAccess,
	})
}

// IssueRefreshToken mints a long-lived refresh token for the user.
func (m *Manager) IssueRefreshToken(userID int64, username string) (string, error) {
	return m.sign(Claims{
		RegisteredClaims: registered(userID, m.refreshTTL),
		Username:         username,
		TokenType:        TokenRefresh,
	})
}

// IssueResetToken mints a password-reset token carrying the user's email.
func (m *Manager) IssueResetToken(userID int64, email string) (string, error) {
	return m.sign(Claims{
		RegisteredClaims: registered(userID, resetTokenTTL),
		Email:            email,
		TokenType:        TokenReset,
	})
}

// IssueActivationToken mints an email-activation token.
func (m *Manager) IssueActivationToken(userID int64, email string) (string, error) {
	return m.sign(Claims{
		RegisteredClaims: registered(userID, activationTokenTTL),
		Email:            email,
		TokenType:        TokenActivation,
	})
}

// Validate checks signature, then expiry, then token type, in that order.
// Any failure fails closed: no claims are returned.
func (m *Manager) Validate(tokenString string, expected TokenType) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, common.ErrWrongTokenType
	}

	return claims, nil
}

func (m *Manager) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// registered includes a random jti so tokens minted within the same second
// still differ. Session rows are keyed by the token string and rely on that.
func registered(userID int64, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
