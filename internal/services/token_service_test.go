package services_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTKey      = "0123456789abcdef0123456789abcdef" // 256 bits
	testJWTIssuer   = "usermgmt-test"
	testJWTAudience = "usermgmt-clients"
)

// mapConfig is a ConfigSource backed by a map.
type mapConfig map[string]string

func (m mapConfig) GetString(key string) string { return m[key] }

func validConfig() mapConfig {
	return mapConfig{
		services.ConfigJWTKey:      testJWTKey,
		services.ConfigJWTIssuer:   testJWTIssuer,
		services.ConfigJWTAudience: testJWTAudience,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenService_Issue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 750_000_000, time.UTC)
	tokenService := services.NewTokenService(validConfig()).WithClock(fixedClock(now))
	user := &models.User{ID: 7, Username: "alice"}

	result := tokenService.Issue(user)
	require.True(t, result.Success, result.Error)
	assert.NotEmpty(t, result.Token)
	assert.Empty(t, result.Error)
	assert.Equal(t, now.Truncate(time.Second).Add(time.Hour), result.Expires)

	claims := &services.UserClaims{}
	_, err := jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTKey), nil
	}, jwt.WithTimeFunc(fixedClock(now)))
	require.NoError(t, err)

	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, strconv.Itoa(7), claims.Subject)
	assert.Equal(t, testJWTIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{testJWTAudience}, claims.Audience)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.Time.Equal(result.Expires), "exp claim must equal returned expiry")
}

func TestTokenService_IssueFailsClosed(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name    string
		config  mapConfig
		message string
	}{
		{"missing key", mapConfig{services.ConfigJWTIssuer: testJWTIssuer, services.ConfigJWTAudience: testJWTAudience}, "missing or incomplete"},
		{"missing issuer", mapConfig{services.ConfigJWTKey: testJWTKey, services.ConfigJWTAudience: testJWTAudience}, "missing or incomplete"},
		{"missing audience", mapConfig{services.ConfigJWTKey: testJWTKey, services.ConfigJWTIssuer: testJWTIssuer}, "missing or incomplete"},
		{"short key", mapConfig{services.ConfigJWTKey: testJWTKey[:31], services.ConfigJWTIssuer: testJWTIssuer, services.ConfigJWTAudience: testJWTAudience}, "at least 256 bits"},
		{"tiny key", mapConfig{services.ConfigJWTKey: "k", services.ConfigJWTIssuer: testJWTIssuer, services.ConfigJWTAudience: testJWTAudience}, "at least 256 bits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := services.NewTokenService(tt.config).Issue(user)
			assert.False(t, result.Success)
			assert.Empty(t, result.Token)
			assert.True(t, result.Expires.IsZero())
			assert.Contains(t, result.Error, tt.message)
		})
	}
}

func TestTokenService_IssueAcceptsLongKey(t *testing.T) {
	config := validConfig()
	config[services.ConfigJWTKey] = strings.Repeat("x", 64)

	result := services.NewTokenService(config).Issue(&models.User{ID: 1, Username: "alice"})
	assert.True(t, result.Success)
}

func TestTokenService_Validate(t *testing.T) {
	now := time.Now()
	tokenService := services.NewTokenService(validConfig()).WithClock(fixedClock(now))
	result := tokenService.Issue(&models.User{ID: 3, Username: "bob"})
	require.True(t, result.Success)

	// Valid token
	claims, err := tokenService.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, 3, claims.UserID)
	assert.Equal(t, "bob", claims.Username)

	// Garbage
	_, err = tokenService.Validate("invalid.token.string")
	assert.Error(t, err)

	// Expired
	later := services.NewTokenService(validConfig()).WithClock(fixedClock(now.Add(2 * time.Hour)))
	_, err = later.Validate(result.Token)
	assert.Error(t, err)
}

func TestTokenService_ValidateRejectsForeignTokens(t *testing.T) {
	tokenService := services.NewTokenService(validConfig())
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, key interface{}, claims services.UserClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func(issuer, audience string) services.UserClaims {
		return services.UserClaims{
			UserID:   1,
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{audience},
				ExpiresAt: exp,
			},
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testJWTKey), base("someone-else", testJWTAudience))},
		{"wrong audience", sign(jwt.SigningMethodHS256, []byte(testJWTKey), base(testJWTIssuer, "other-app"))},
		{"wrong key", sign(jwt.SigningMethodHS256, []byte(strings.Repeat("z", 32)), base(testJWTIssuer, testJWTAudience))},
		{"other algorithm", sign(jwt.SigningMethodHS512, []byte(testJWTKey), base(testJWTIssuer, testJWTAudience))},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte(testJWTKey), services.UserClaims{
			UserID:           1,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: testJWTIssuer, Audience: jwt.ClaimStrings{testJWTAudience}},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokenService.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestTokenService_ValidateMisconfigured(t *testing.T) {
	_, err := services.NewTokenService(mapConfig{}).Validate("anything")
	assert.Error(t, err)
}
