package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// AuthMiddlewareTestSuite defines the test suite for the auth middleware
type AuthMiddlewareTestSuite struct {
	suite.Suite
	echo         *echo.Echo
	jwtConfig    *config.JWTConfig
	tokenService services.TokenServiceInterface
	user         *models.User
}

// SetupTest runs before each test
func (s *AuthMiddlewareTestSuite) SetupTest() {
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	s.jwtConfig = &config.JWTConfig{
		AccessTokenDuration: 15 * time.Minute,
		PrivateKey:          privateKey,
		PublicKey:           publicKey,
		Issuer:              "fintrack-test",
	}
	s.tokenService = services.NewTokenService(s.jwtConfig)
	s.echo = echo.New()
	s.user = &models.User{
		ID:          uuid.New(),
		Email:       "user@example.com",
		DisplayName: "Test User",
	}
}

// TestAuthMiddlewareTestSuite runs the test suite
func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) runMiddleware(authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	nextCalled := false
	handler := RequireAuth(s.tokenService)(func(c echo.Context) error {
		nextCalled = true
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	s.NoError(err)
	return rec, c, nextCalled
}

func (s *AuthMiddlewareTestSuite) decodeError(rec *httptest.ResponseRecorder) errors.ErrorResponse {
	var errorResponse errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &errorResponse))
	return errorResponse
}

// TestRequireAuth_ValidToken tests that a valid token passes and puts the
// owner identity on the context
func (s *AuthMiddlewareTestSuite) TestRequireAuth_ValidToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, c, nextCalled := s.runMiddleware("Bearer " + token)

	s.True(nextCalled)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(s.user.ID, c.Get("user_id"))
	s.Equal(s.user.Email, c.Get("user_email"))
	s.Equal(s.user.DisplayName, c.Get("user_display_name"))
}

// TestRequireAuth_MissingHeader tests rejection when no Authorization header is present
func (s *AuthMiddlewareTestSuite) TestRequireAuth_MissingHeader() {
	rec, c, nextCalled := s.runMiddleware("")

	s.False(nextCalled)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthMissingToken), s.decodeError(rec).Error.Code)
	s.Nil(c.Get("user_id"))
}

// TestRequireAuth_MalformedHeader tests rejection of non-Bearer headers
func (s *AuthMiddlewareTestSuite) TestRequireAuth_MalformedHeader() {
	testCases := []struct {
		name   string
		header string
	}{
		{"No Bearer prefix", "some-token"},
		{"Basic scheme", "Basic dXNlcjpwYXNz"},
		{"Prefix without token", "Bearer "},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			rec, _, nextCalled := s.runMiddleware(tc.header)

			s.False(nextCalled)
			s.Equal(http.StatusUnauthorized, rec.Code)
			s.Equal(string(errors.AuthInvalidTokenFormat), s.decodeError(rec).Error.Code)
		})
	}
}

// TestRequireAuth_GarbageToken tests rejection of an unparseable token
func (s *AuthMiddlewareTestSuite) TestRequireAuth_GarbageToken() {
	rec, _, nextCalled := s.runMiddleware("Bearer not.a.jwt")

	s.False(nextCalled)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthInvalidTokenFormat), s.decodeError(rec).Error.Code)
}

// TestRequireAuth_ExpiredToken tests that an expired token maps to the
// dedicated expiry error code
func (s *AuthMiddlewareTestSuite) TestRequireAuth_ExpiredToken() {
	expiredConfig := &config.JWTConfig{
		AccessTokenDuration: -time.Minute,
		PrivateKey:          s.jwtConfig.PrivateKey,
		PublicKey:           s.jwtConfig.PublicKey,
		Issuer:              s.jwtConfig.Issuer,
	}
	token, _, err := services.NewTokenService(expiredConfig).GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, _, nextCalled := s.runMiddleware("Bearer " + token)

	s.False(nextCalled)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthExpiredToken), s.decodeError(rec).Error.Code)
}

// TestRequireAuth_TokenSignedWithDifferentKey tests rejection of tokens from
// another key pair
func (s *AuthMiddlewareTestSuite) TestRequireAuth_TokenSignedWithDifferentKey() {
	otherPrivate, otherPublic, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	foreignConfig := &config.JWTConfig{
		AccessTokenDuration: 15 * time.Minute,
		PrivateKey:          otherPrivate,
		PublicKey:           otherPublic,
		Issuer:              s.jwtConfig.Issuer,
	}
	token, _, err := services.NewTokenService(foreignConfig).GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, _, nextCalled := s.runMiddleware("Bearer " + token)

	s.False(nextCalled)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(errors.AuthInvalidTokenFormat), s.decodeError(rec).Error.Code)
}
