// Package auth issues and verifies JWT access/refresh pairs, hashes
// passwords and holds the ownership and visibility checks.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"videotube/pkg/apierror"
	"videotube/pkg/metrics"
	"videotube/pkg/models"
	"videotube/pkg/store"
)

var (
	ErrUnauthorized        = apierror.Unauthorized("Unauthorized request")
	ErrInvalidAccessToken  = apierror.Unauthorized("Invalid access token")
	ErrAccessTokenExpired  = apierror.Unauthorized("Access token expired")
	ErrInvalidRefreshToken = apierror.Unauthorized("Invalid refresh token")
	ErrRefreshTokenReused  = apierror.Unauthorized("Refresh token is expired or used")
)

type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenStore is the slice of the user store the token lifecycle needs.
type TokenStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	RotateRefreshToken(ctx context.Context, id, presented, next string) (bool, error)
}

type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.StandardClaims
}

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Tokens struct {
	cfg   Config
	store TokenStore
}

func NewTokens(cfg Config, store TokenStore) *Tokens {
	return &Tokens{cfg: cfg, store: store}
}

func (t *Tokens) standard(subject string, ttl time.Duration) jwt.StandardClaims {
	now := time.Now()
	return jwt.StandardClaims{
		Subject:   subject,
		Id:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

func (t *Tokens) sign(user *models.User) (Pair, error) {
	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		StandardClaims: t.standard(user.ID, t.cfg.AccessTTL),
	})
	accessToken, err := access.SignedString([]byte(t.cfg.AccessSecret))
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, t.standard(user.ID, t.cfg.RefreshTTL))
	refreshToken, err := refresh.SignedString([]byte(t.cfg.RefreshSecret))
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Issue signs a new pair and makes its refresh token the user's only valid one.
func (t *Tokens) Issue(ctx context.Context, user *models.User) (Pair, error) {
	pair, err := t.sign(user)
	if err != nil {
		return Pair{}, err
	}
	if err := t.store.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return Pair{}, fmt.Errorf("store refresh token: %w", err)
	}
	metrics.TokensIssued.Inc()
	return pair, nil
}

func keyFunc(secret string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}
}

func expired(err error) bool {
	var vErr *jwt.ValidationError
	return errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0
}

func (t *Tokens) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(t.cfg.AccessSecret))
	if err != nil {
		if expired(err) {
			return nil, ErrAccessTokenExpired
		}
		return nil, ErrInvalidAccessToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. A well-signed token that
// is no longer the stored one revokes the session.
func (t *Tokens) Refresh(ctx context.Context, presented string) (*models.User, Pair, error) {
	if presented == "" {
		return nil, Pair{}, ErrUnauthorized
	}

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(presented, claims, keyFunc(t.cfg.RefreshSecret))
	if err != nil || !token.Valid || claims.Subject == "" {
		if expired(err) {
			metrics.RefreshOutcomes.WithLabelValues(metrics.RefreshExpired).Inc()
			return nil, Pair{}, ErrRefreshTokenReused
		}
		metrics.RefreshOutcomes.WithLabelValues(metrics.RefreshInvalid).Inc()
		return nil, Pair{}, ErrInvalidRefreshToken
	}

	user, err := t.store.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		metrics.RefreshOutcomes.WithLabelValues(metrics.RefreshInvalid).Inc()
		return nil, Pair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, Pair{}, fmt.Errorf("load user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		metrics.RefreshOutcomes.WithLabelValues(metrics.RefreshReused).Inc()
		if err := t.store.SetRefreshToken(ctx, user.ID, ""); err != nil {
			return nil, Pair{}, fmt.Errorf("revoke session: %w", err)
		}
		return nil, Pair{}, ErrRefreshTokenReused
	}

	pair, err := t.sign(user)
	if err != nil {
		return nil, Pair{}, err
	}
	swapped, err := t.store.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return nil, Pair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		metrics.RefreshOutcomes.WithLabelValues(metrics.RefreshReused).Inc()
		return nil, Pair{}, ErrRefreshTokenReused
	}

	metrics.RefreshOutcomes.WithLabelValues(metrics.RefreshRotated).Inc()
	metrics.TokensIssued.Inc()
	user.RefreshToken = pair.RefreshToken
	return user, pair, nil
}

// Revoke clears the stored refresh token so no refresh can succeed.
func (t *Tokens) Revoke(ctx context.Context, userID string) error {
	if err := t.store.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
