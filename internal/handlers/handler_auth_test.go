package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/shikshaspace/user-service/internal/apperrors"
	portssvc "github.com/shikshaspace/user-service/internal/core/ports/services"
	"github.com/shikshaspace/user-service/internal/dto"
	"github.com/shikshaspace/user-service/internal/handlers"
)

// --- Mock AuthSvcFacade ---
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthResponse), args.Error(1)
}

var _ portssvc.AuthSvcFacade = (*MockAuthService)(nil)

type AuthHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockAuthService
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockService = new(MockAuthService)
	h := handlers.NewAuthHandler(suite.mockService)

	suite.router = gin.New()
	auth := suite.router.Group("/api/v1/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
}

func (suite *AuthHandlerTestSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	b, err := json.Marshal(body)
	suite.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthHandlerTestSuite) TestRegister_Created() {
	reqBody := dto.RegisterRequest{
		Username: "jdoe", Email: "jdoe@example.com", Password: "s3cretpass",
		FirstName: "John", LastName: "Doe",
	}
	resp := &dto.AuthResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 300, UserID: "user-1", Username: "jdoe", Email: "jdoe@example.com"}

	suite.mockService.On("Register", mock.Anything, reqBody).Return(resp, nil).Once()

	w := suite.postJSON("/api/v1/auth/register", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var got dto.AuthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(*resp, got)
}

func (suite *AuthHandlerTestSuite) TestRegister_ValidationRejectsShortPassword() {
	w := suite.postJSON("/api/v1/auth/register", gin.H{
		"username": "jdoe", "email": "jdoe@example.com", "password": "short",
		"firstName": "John", "lastName": "Doe",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Register", mock.Anything, mock.Anything)
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateMapsToConflict() {
	reqBody := dto.RegisterRequest{
		Username: "jdoe", Email: "jdoe@example.com", Password: "s3cretpass",
		FirstName: "John", LastName: "Doe",
	}
	dupErr := apperrors.New(apperrors.KindDuplicate, "username or email already registered", nil)

	suite.mockService.On("Register", mock.Anything, reqBody).Return(nil, dupErr).Once()

	w := suite.postJSON("/api/v1/auth/register", reqBody)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "already registered")
}

func (suite *AuthHandlerTestSuite) TestLogin_OK() {
	resp := &dto.AuthResponse{AccessToken: "access", UserID: "user-1", Username: "jdoe"}

	suite.mockService.On("Login", mock.Anything, "jdoe", "s3cretpass").Return(resp, nil).Once()

	w := suite.postJSON("/api/v1/auth/login", dto.LoginRequest{Username: "jdoe", Password: "s3cretpass"})

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *AuthHandlerTestSuite) TestLogin_BadCredentialsMapTo401() {
	authErr := apperrors.New(apperrors.KindAuthenticationFailed, "invalid username or password", nil)

	suite.mockService.On("Login", mock.Anything, "jdoe", "wrong").Return(nil, authErr).Once()

	w := suite.postJSON("/api/v1/auth/login", dto.LoginRequest{Username: "jdoe", Password: "wrong"})

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthHandlerTestSuite) TestLogin_ProviderOutageMapsTo503() {
	outage := apperrors.New(apperrors.KindIdentityProviderUnavailable, "identity provider unreachable during token exchange", nil)

	suite.mockService.On("Login", mock.Anything, "jdoe", "s3cretpass").Return(nil, outage).Once()

	w := suite.postJSON("/api/v1/auth/login", dto.LoginRequest{Username: "jdoe", Password: "s3cretpass"})

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *AuthHandlerTestSuite) TestRefresh_ExpiredMapsTo401() {
	refreshErr := apperrors.New(apperrors.KindTokenRefreshFailed, "refresh token expired or revoked", nil)

	suite.mockService.On("Refresh", mock.Anything, "stale").Return(nil, refreshErr).Once()

	w := suite.postJSON("/api/v1/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "stale"})

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthHandlerTestSuite) TestUnclassifiedErrorIsMasked() {
	suite.mockService.On("Login", mock.Anything, "jdoe", "s3cretpass").
		Return(nil, context.DeadlineExceeded).Once()

	w := suite.postJSON("/api/v1/auth/login", dto.LoginRequest{Username: "jdoe", Password: "s3cretpass"})

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "Internal server error")
	suite.NotContains(w.Body.String(), "deadline")
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
