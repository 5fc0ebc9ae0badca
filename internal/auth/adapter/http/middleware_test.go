package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "codbank/internal/auth/adapter/http"
	"codbank/internal/auth/domain/repository"
	"codbank/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockSessionUsecase
	middleware *authhttp.AuthMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.mockUC = &mockSessionUsecase{}
	suite.middleware = authhttp.NewAuthMiddleware(suite.mockUC, authhttp.NewSessionCookies(testConfig()))
	suite.app = fiber.New()
	suite.app.Get("/protected", suite.middleware.RequireSession(), func(c *fiber.Ctx) error {
		userID, ok := authhttp.GetUserID(c)
		if !ok {
			return c.Status(500).JSON(fiber.Map{"error": "user id not found"})
		}
		ctxUserID, err := utils.GetUserIDFromContext(c.UserContext())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"userId": userID, "ctxUserId": ctxUserID})
	})
}

func (suite *MiddlewareTestSuite) TearDownTest() {
	suite.mockUC.AssertExpectations(suite.T())
}

func (suite *MiddlewareTestSuite) get(token string) *http.Response {
	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "cod_session", Value: token})
	}
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *MiddlewareTestSuite) TestRequireSession_Success() {
	claims := &repository.Claims{
		UserID:           "user-123",
		Role:             "CUSTOMER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alexpierce"},
	}
	suite.mockUC.On("VerifySession", mock.Anything, "valid-token").Return(claims, true).Once()

	resp := suite.get("valid-token")

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body := decodeBody(suite.T(), resp)
	assert.Equal(suite.T(), "user-123", body["userId"])
	assert.Equal(suite.T(), "user-123", body["ctxUserId"])
}

func (suite *MiddlewareTestSuite) TestRequireSession_NoCookie() {
	suite.mockUC.On("VerifySession", mock.Anything, "").Return(nil, false).Once()

	resp := suite.get("")

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "Unauthorized session", decodeBody(suite.T(), resp)["error"])
}

func (suite *MiddlewareTestSuite) TestRequireSession_InvalidToken() {
	suite.mockUC.On("VerifySession", mock.Anything, "forged").Return(nil, false).Once()

	resp := suite.get("forged")

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequireSession_MissingUserIDClaim() {
	claims := &repository.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alexpierce"}}
	suite.mockUC.On("VerifySession", mock.Anything, "no-uid").Return(claims, true).Once()

	resp := suite.get("no-uid")

	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "Unauthorized session", decodeBody(suite.T(), resp)["error"])
}

func (suite *MiddlewareTestSuite) TestSecurityHeaders() {
	app := fiber.New()
	app.Use(suite.middleware.SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(suite.T(), "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(suite.T(), "no-store", resp.Header.Get("Cache-Control"))
}

func (suite *MiddlewareTestSuite) TestRateLimiter() {
	app := fiber.New()
	app.Use(suite.middleware.RateLimiter(2))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		resp, err := app.Test(req)
		require.NoError(suite.T(), err)
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(suite.T(), []int{200, 200, 429}, codes)
}

func (suite *MiddlewareTestSuite) TestRateLimiter_IgnoresUntrustedForwardedFor() {
	app := fiber.New()
	app.Use(suite.middleware.RateLimiter(2))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		resp, err := app.Test(req)
		require.NoError(suite.T(), err)
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(suite.T(), []int{200, 200, 429}, codes)
}

func (suite *MiddlewareTestSuite) TestRequestID() {
	app := fiber.New()
	app.Use(authhttp.RequestID(), authhttp.RequestContext())
	app.Get("/", func(c *fiber.Ctx) error {
		id, err := utils.GetRequestIDFromContext(c.UserContext())
		if err != nil {
			return c.Status(500).SendString(err.Error())
		}
		return c.SendString(id)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	resp, err := app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "req-abc", resp.Header.Get("X-Request-ID"))
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
