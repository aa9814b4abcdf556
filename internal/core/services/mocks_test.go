package services_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	"github.com/shikshaspace/user-service/internal/dto"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByKeycloakID(ctx context.Context, keycloakID string) (*domain.User, error) {
	args := m.Called(ctx, keycloakID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock IdP Client ---

type MockIdPClient struct {
	mock.Mock
}

func (m *MockIdPClient) CreateAccount(ctx context.Context, account portsidp.NewAccount) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

func (m *MockIdPClient) DeleteAccount(ctx context.Context, subjectID string) error {
	args := m.Called(ctx, subjectID)
	return args.Error(0)
}

func (m *MockIdPClient) GetAccount(ctx context.Context, subjectID string) (*domain.ProviderProfile, error) {
	args := m.Called(ctx, subjectID)
	var profile *domain.ProviderProfile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.ProviderProfile)
	}
	return profile, args.Error(1)
}

func (m *MockIdPClient) FindAccountByEmail(ctx context.Context, email string) (*domain.ProviderProfile, error) {
	args := m.Called(ctx, email)
	var profile *domain.ProviderProfile
	if args.Get(0) != nil {
		profile = args.Get(0).(*domain.ProviderProfile)
	}
	return profile, args.Error(1)
}

func (m *MockIdPClient) ResetPassword(ctx context.Context, subjectID string, password string) error {
	args := m.Called(ctx, subjectID, password)
	return args.Error(0)
}

func (m *MockIdPClient) PasswordGrant(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	args := m.Called(ctx, username, password)
	var pair *domain.TokenPair
	if args.Get(0) != nil {
		pair = args.Get(0).(*domain.TokenPair)
	}
	return pair, args.Error(1)
}

func (m *MockIdPClient) RefreshGrant(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	var pair *domain.TokenPair
	if args.Get(0) != nil {
		pair = args.Get(0).(*domain.TokenPair)
	}
	return pair, args.Error(1)
}

func (m *MockIdPClient) FetchUserInfo(ctx context.Context, accessToken string) (*portsidp.UserInfo, error) {
	args := m.Called(ctx, accessToken)
	var info *portsidp.UserInfo
	if args.Get(0) != nil {
		info = args.Get(0).(*portsidp.UserInfo)
	}
	return info, args.Error(1)
}

// --- Mock Google Token Validator ---

type MockGoogleValidator struct {
	mock.Mock
}

func (m *MockGoogleValidator) Validate(ctx context.Context, idToken string) (*domain.VerifiedClaims, error) {
	args := m.Called(ctx, idToken)
	var claims *domain.VerifiedClaims
	if args.Get(0) != nil {
		claims = args.Get(0).(*domain.VerifiedClaims)
	}
	return claims, args.Error(1)
}

// --- Mock TokenSvcFacade ---

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) PasswordLogin(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	var resp *dto.AuthResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*dto.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *MockTokenService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	var resp *dto.AuthResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*dto.AuthResponse)
	}
	return resp, args.Error(1)
}

// --- Mock SyncSvcFacade ---

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) EnsureLocalUser(ctx context.Context, keycloakID string) (*domain.User, error) {
	args := m.Called(ctx, keycloakID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}
