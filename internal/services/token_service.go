package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"usermgmt/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Configuration keys read by TokenService on every call.
const (
	ConfigJWTKey      = "jwt.key"
	ConfigJWTIssuer   = "jwt.issuer"
	ConfigJWTAudience = "jwt.audience"
)

const (
	tokenLifetime  = time.Hour
	minKeySizeBits = 256
)

var errIncompleteConfig = errors.New("JWT configuration is missing or incomplete")

// ConfigSource supplies string settings. *viper.Viper satisfies it.
type ConfigSource interface {
	GetString(key string) string
}

// TokenResult is the outcome of a token issuance attempt. Either Token and
// Expires are set (Success) or Error is.
type TokenResult struct {
	Success bool
	Token   string
	Expires time.Time
	Error   string
}

func tokenSuccess(token string, expires time.Time) TokenResult {
	return TokenResult{Success: true, Token: token, Expires: expires}
}

func tokenFailure(message string) TokenResult {
	return TokenResult{Error: message}
}

// UserClaims are the claims carried by an issued token.
type UserClaims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type signingConfig struct {
	key      []byte
	issuer   string
	audience string
}

// TokenService issues and validates HS256 bearer tokens.
type TokenService struct {
	config ConfigSource
	now    func() time.Time
}

// NewTokenService creates a TokenService reading its settings from config.
func NewTokenService(config ConfigSource) *TokenService {
	return &TokenService{
		config: config,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp tokens.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

func (s *TokenService) signingConfig() (signingConfig, error) {
	cfg := signingConfig{
		key:      []byte(s.config.GetString(ConfigJWTKey)),
		issuer:   s.config.GetString(ConfigJWTIssuer),
		audience: s.config.GetString(ConfigJWTAudience),
	}
	if len(cfg.key) == 0 || cfg.issuer == "" || cfg.audience == "" {
		return cfg, errIncompleteConfig
	}
	if len(cfg.key)*8 < minKeySizeBits {
		return cfg, fmt.Errorf("the JWT key size is insufficient, it should be at least %d bits", minKeySizeBits)
	}
	return cfg, nil
}

// Issue signs a token for user valid for one hour. It never panics on
// misconfiguration; the reason is returned in the result instead.
func (s *TokenService) Issue(user *models.User) TokenResult {
	cfg, err := s.signingConfig()
	if err != nil {
		return tokenFailure(err.Error())
	}

	// JWT NumericDate has second precision, so truncate once here and the
	// exp claim matches Expires exactly.
	now := s.now().UTC().Truncate(time.Second)
	expires := now.Add(tokenLifetime)

	claims := UserClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    cfg.issuer,
			Audience:  jwt.ClaimStrings{cfg.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.key)
	if err != nil {
		return tokenFailure(fmt.Sprintf("failed to sign token: %v", err))
	}
	return tokenSuccess(token, expires)
}

// Validate parses tokenString and returns its claims if the signature,
// issuer, audience and expiry all check out.
func (s *TokenService) Validate(tokenString string) (*UserClaims, error) {
	cfg, err := s.signingConfig()
	if err != nil {
		return nil, err
	}

	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return cfg.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.issuer),
		jwt.WithAudience(cfg.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
