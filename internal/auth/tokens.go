// Package auth issues, verifies, rotates and revokes session tokens.
//
// A session is a pair of HS256 JWTs signed with distinct secrets. The refresh token
// is also stored on the user row; rotation succeeds only while the stored value still
// equals the presented one, so a refresh token is usable exactly once.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "blacklist:"

// TokenStore persists the current refresh token of a user.
type TokenStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID uint, token *string) error
	// SwapRefreshToken replaces presented with next and reports whether a row matched.
	SwapRefreshToken(ctx context.Context, userID uint, presented, next string) (bool, error)
}

// Settings configures token signing and lifetimes.
type Settings struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
}

// SettingsFromConfig maps application config onto issuer settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiry,
		Issuer:        cfg.TokenIssuer,
		Audience:      cfg.TokenAudience,
	}
}

// TokenPair is what login and refresh hand back to clients.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccessClaims carries the identity snapshot embedded in an access token.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *AccessClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

// Issuer signs and verifies tokens. The Redis client is optional; without it access
// tokens cannot be revoked before they expire.
type Issuer struct {
	settings Settings
	store    TokenStore
	rdb      *redis.Client
	now      func() time.Time
}

// NewIssuer creates an Issuer.
func NewIssuer(settings Settings, store TokenStore, rdb *redis.Client) *Issuer {
	return &Issuer{settings: settings, store: store, rdb: rdb, now: time.Now}
}

func newJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid token subject")
	}
	return uint(id), nil
}

func (i *Issuer) signAccess(user *models.User, now time.Time) (string, error) {
	claims := AccessClaims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    i.settings.Issuer,
			Audience:  jwt.ClaimStrings{i.settings.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(i.settings.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        newJTI(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.settings.AccessSecret))
}

func (i *Issuer) signRefresh(userID uint, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    i.settings.Issuer,
		Audience:  jwt.ClaimStrings{i.settings.Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(i.settings.RefreshTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        newJTI(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.settings.RefreshSecret))
}

func (i *Issuer) signPair(user *models.User) (TokenPair, error) {
	now := i.now()
	access, err := i.signAccess(user, now)
	if err != nil {
		return TokenPair{}, models.NewInternalErrorMsg("Something went wrong while generating tokens", err)
	}
	refresh, err := i.signRefresh(user.ID, now)
	if err != nil {
		return TokenPair{}, models.NewInternalErrorMsg("Something went wrong while generating tokens", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueTokens signs a new pair for user and stores the refresh token, replacing any
// previous one.
func (i *Issuer) IssueTokens(ctx context.Context, user *models.User) (TokenPair, error) {
	pair, err := i.signPair(user)
	if err != nil {
		return TokenPair{}, err
	}
	if err := i.store.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return TokenPair{}, models.NewInternalErrorMsg("Something went wrong while generating tokens", err)
	}
	return pair, nil
}

func (i *Issuer) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.settings.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.settings.Issuer))
	}
	if i.settings.Audience != "" {
		opts = append(opts, jwt.WithAudience(i.settings.Audience))
	}
	return opts
}

// Refresh verifies presented, checks it is the user's current refresh token and
// rotates it. Any failure is a 401.
func (i *Issuer) Refresh(ctx context.Context, presented string) (TokenPair, *models.User, error) {
	if presented == "" {
		return TokenPair{}, nil, models.NewUnauthorizedError("Unauthorized request")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(presented, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(i.settings.RefreshSecret), nil
	}, i.parserOptions()...)
	if err != nil {
		return TokenPair{}, nil, models.NewUnauthorizedError("Invalid refresh token")
	}

	userID, err := parseSubject(claims.Subject)
	if err != nil {
		return TokenPair{}, nil, models.NewUnauthorizedError("Invalid refresh token")
	}

	user, err := i.store.GetByID(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return TokenPair{}, nil, models.NewUnauthorizedError("Invalid refresh token")
		}
		return TokenPair{}, nil, err
	}
	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return TokenPair{}, nil, models.NewUnauthorizedError("Refresh token is expired or used")
	}

	pair, err := i.signPair(user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	swapped, err := i.store.SwapRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return TokenPair{}, nil, models.NewInternalErrorMsg("Something went wrong while refreshing tokens", err)
	}
	if !swapped {
		return TokenPair{}, nil, models.NewUnauthorizedError("Refresh token is expired or used")
	}
	return pair, user, nil
}

// Revoke clears the stored refresh token so no refresh can succeed until the next login.
func (i *Issuer) Revoke(ctx context.Context, userID uint) error {
	if err := i.store.SetRefreshToken(ctx, userID, nil); err != nil {
		return models.NewInternalErrorMsg("Something went wrong while logging out", err)
	}
	return nil
}

// ParseAccessToken verifies signature, expiry, issuer and audience of an access token.
func (i *Issuer) ParseAccessToken(token string) (*AccessClaims, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(i.settings.AccessSecret), nil
	}, i.parserOptions()...)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid access token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, models.NewUnauthorizedError("Invalid access token")
	}
	return &claims, nil
}

// RevokeAccessToken blocks the token's jti until it would have expired anyway.
func (i *Issuer) RevokeAccessToken(ctx context.Context, claims *AccessClaims) error {
	if i.rdb == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(i.now())
	if ttl <= 0 {
		return nil
	}
	return i.rdb.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err()
}

// IsAccessTokenRevoked reports whether jti was revoked. Without Redis nothing is.
func (i *Issuer) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if i.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := i.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
