package security_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"codbank/internal/auth/adapter/security"
	"codbank/internal/auth/config"
	"codbank/internal/auth/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	config  *config.Config
	now     time.Time
	service *security.JWTokenService
}

func (suite *JWTTestSuite) SetupTest() {
	suite.config = &config.Config{
		JWTSecretKey: "test-secret-key-32-characters-long-12345",
		JWTIssuer:    "codbank-test",
		SessionTTL:   2 * time.Hour,
	}
	suite.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	service, err := security.NewJWTokenService(suite.config, security.WithClock(suite.clock))
	require.NoError(suite.T(), err)
	suite.service = service
}

func (suite *JWTTestSuite) clock() time.Time {
	return suite.now
}

func (suite *JWTTestSuite) identity() model.Identity {
	return model.Identity{UserID: "uid-123", Username: "alexpierce", Role: model.RoleCustomer}
}

func (suite *JWTTestSuite) TestNewJWTokenService_ValidationErrors() {
	testCases := []struct {
		name         string
		modifyConfig func(*config.Config)
		expectedErr  string
	}{
		{"empty secret key", func(cfg *config.Config) { cfg.JWTSecretKey = "" }, "jwt secret key cannot be empty"},
		{"empty issuer", func(cfg *config.Config) { cfg.JWTIssuer = "" }, "jwt issuer cannot be empty"},
		{"zero TTL", func(cfg *config.Config) { cfg.SessionTTL = 0 }, "jwt session TTL must be positive"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := *suite.config
			tc.modifyConfig(&cfg)

			service, err := security.NewJWTokenService(&cfg)

			assert.Nil(suite.T(), service)
			assert.EqualError(suite.T(), err, tc.expectedErr)
		})
	}
}

func (suite *JWTTestSuite) TestGenerateAndValidate_RoundTrip() {
	token, issued, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), token)

	claims, err := suite.service.ValidateToken(context.Background(), token)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "alexpierce", claims.Subject)
	assert.Equal(suite.T(), "alexpierce", claims.Username())
	assert.Equal(suite.T(), "uid-123", claims.UserID)
	assert.Equal(suite.T(), model.RoleCustomer, claims.Role)
	assert.Equal(suite.T(), "codbank-test", claims.Issuer)
	assert.Equal(suite.T(), suite.now, claims.IssuedAt.Time.UTC())
	assert.Equal(suite.T(), suite.now.Add(2*time.Hour), claims.Expiry().UTC())
	assert.Equal(suite.T(), issued.ID, claims.ID)
	assert.NotEmpty(suite.T(), claims.ID)
}

func (suite *JWTTestSuite) TestGenerateToken_UsesHS256() {
	token, _, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "HS256", parsed.Header["alg"])
}

func (suite *JWTTestSuite) TestGenerateToken_FreshIDEachCall() {
	first, firstClaims, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)
	second, secondClaims, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)

	assert.NotEqual(suite.T(), first, second)
	assert.NotEqual(suite.T(), firstClaims.ID, secondClaims.ID)
}

func (suite *JWTTestSuite) TestValidateToken_Expiry() {
	token, _, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)

	suite.now = suite.now.Add(2*time.Hour - time.Second)
	_, err = suite.service.ValidateToken(context.Background(), token)
	assert.NoError(suite.T(), err)

	suite.now = suite.now.Add(2 * time.Second)
	claims, err := suite.service.ValidateToken(context.Background(), token)
	assert.Nil(suite.T(), claims)
	assert.ErrorIs(suite.T(), err, security.ErrTokenExpired)
}

func (suite *JWTTestSuite) TestValidateToken_RejectsEveryBitFlip() {
	token, _, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)

	raw := []byte(token)
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			tampered := make([]byte, len(raw))
			copy(tampered, raw)
			tampered[i] ^= 1 << bit

			claims, err := suite.service.ValidateToken(context.Background(), string(tampered))
			if !assert.Error(suite.T(), err, fmt.Sprintf("byte %d bit %d accepted", i, bit)) {
				return
			}
			assert.Nil(suite.T(), claims)
		}
	}
}

func (suite *JWTTestSuite) TestValidateToken_WrongSecret() {
	token, _, err := suite.service.GenerateToken(context.Background(), suite.identity())
	require.NoError(suite.T(), err)

	other := *suite.config
	other.JWTSecretKey = "a-completely-different-secret-key-value"
	otherService, err := security.NewJWTokenService(&other, security.WithClock(suite.clock))
	require.NoError(suite.T(), err)

	_, err = otherService.ValidateToken(context.Background(), token)
	assert.ErrorIs(suite.T(), err, security.ErrTokenSignatureInvalid)
}

func (suite *JWTTestSuite) TestValidateToken_RejectsOtherAlgorithms() {
	claims := jwt.MapClaims{
		"sub":    "alexpierce",
		"userId": "uid-123",
		"role":   model.RoleAdmin,
		"iss":    "codbank-test",
		"iat":    suite.now.Unix(),
		"exp":    suite.now.Add(time.Hour).Unix(),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(suite.T(), err)
	_, err = suite.service.ValidateToken(context.Background(), none)
	assert.ErrorIs(suite.T(), err, security.ErrTokenSignatureInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(suite.config.JWTSecretKey))
	require.NoError(suite.T(), err)
	_, err = suite.service.ValidateToken(context.Background(), hs512)
	assert.ErrorIs(suite.T(), err, security.ErrTokenSignatureInvalid)
}

func (suite *JWTTestSuite) TestValidateToken_RequiresExpiryAndIssuer() {
	noExp := jwt.MapClaims{"sub": "alexpierce", "userId": "uid-123", "iss": "codbank-test"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noExp).SignedString([]byte(suite.config.JWTSecretKey))
	require.NoError(suite.T(), err)
	_, err = suite.service.ValidateToken(context.Background(), token)
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)

	foreign := jwt.MapClaims{"sub": "alexpierce", "iss": "someone-else", "exp": suite.now.Add(time.Hour).Unix()}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, foreign).SignedString([]byte(suite.config.JWTSecretKey))
	require.NoError(suite.T(), err)
	_, err = suite.service.ValidateToken(context.Background(), token)
	assert.ErrorIs(suite.T(), err, security.ErrTokenInvalid)
}

func (suite *JWTTestSuite) TestValidateToken_Garbage() {
	for _, input := range []string{"", "not-a-token", "a.b.c", "...."} {
		claims, err := suite.service.ValidateToken(context.Background(), input)
		assert.Error(suite.T(), err, input)
		assert.Nil(suite.T(), claims)
	}
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}
