package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/shikshaspace/user-service/internal/apperrors"
	"github.com/shikshaspace/user-service/internal/core/domain"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	"github.com/shikshaspace/user-service/internal/metrics"
	"github.com/shikshaspace/user-service/internal/platform/config"
)

// Client talks to Keycloak over two surfaces: the realm's OIDC token/userinfo
// endpoints using the confidential client, and the admin REST API using a
// service-account client via the client-credentials flow. It holds no mutable
// state beyond configuration; the admin token is managed by the oauth2
// transport.
type Client struct {
	tokenURL      string
	userInfoURL   string
	adminUsersURL string

	clientID     string
	clientSecret string

	httpClient  *http.Client
	adminClient *http.Client

	timeout time.Duration
	logger  *slog.Logger
}

var _ portsidp.Client = (*Client)(nil)

// New constructs a Keycloak client from configuration. The admin client
// obtains and refreshes its own access token through the realm token endpoint.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	adminCreds := clientcredentials.Config{
		ClientID:     cfg.KeycloakAdminClientID,
		ClientSecret: cfg.KeycloakAdminClientSecret,
		TokenURL:     cfg.TokenURL(),
	}
	adminClient := adminCreds.Client(context.Background())
	adminClient.Timeout = cfg.KeycloakTimeout

	return &Client{
		tokenURL:      cfg.TokenURL(),
		userInfoURL:   cfg.UserInfoURL(),
		adminUsersURL: cfg.AdminUsersURL(),
		clientID:      cfg.KeycloakClientID,
		clientSecret:  cfg.KeycloakClientSecret,
		httpClient:    &http.Client{Timeout: cfg.KeycloakTimeout},
		adminClient:   adminClient,
		timeout:       cfg.KeycloakTimeout,
		logger:        logger,
	}
}

// userRepresentation mirrors the admin API's user payload.
type userRepresentation struct {
	ID               string                     `json:"id,omitempty"`
	Username         string                     `json:"username"`
	Email            string                     `json:"email"`
	FirstName        string                     `json:"firstName"`
	LastName         string                     `json:"lastName"`
	Enabled          bool                       `json:"enabled"`
	EmailVerified    bool                       `json:"emailVerified"`
	CreatedTimestamp int64                      `json:"createdTimestamp,omitempty"`
	Credentials      []credentialRepresentation `json:"credentials,omitempty"`
}

type credentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// tokenResponse mirrors the token endpoint's vocabulary.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// observe records the latency of an outbound provider call.
func observe(operation string, start time.Time) {
	metrics.IdentityProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (c *Client) CreateAccount(ctx context.Context, account portsidp.NewAccount) (string, error) {
	defer observe("create_account", time.Now())
	rep := userRepresentation{
		Username:      account.Username,
		Email:         account.Email,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		Enabled:       true,
		EmailVerified: account.EmailVerified,
		Credentials: []credentialRepresentation{
			{Type: "password", Value: account.Password, Temporary: false},
		},
	}

	body, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user representation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.adminUsersURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build create account request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.adminClient.Do(req)
	if err != nil {
		return "", unavailable("create account", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated:
		// Subject id is the last path segment of the Location header.
		location := resp.Header.Get("Location")
		subjectID := location[strings.LastIndex(location, "/")+1:]
		if subjectID == "" {
			return "", apperrors.New(apperrors.KindIdentityProvider, "identity provider returned no account location", nil)
		}
		c.logger.Info("Keycloak account created", slog.String("subject_id", subjectID), slog.String("username", account.Username))
		return subjectID, nil
	case resp.StatusCode == http.StatusConflict:
		return "", apperrors.New(apperrors.KindDuplicate, "username or email already registered", readAPIError(resp.Body))
	case resp.StatusCode >= 500:
		return "", unavailableStatus("create account", resp.StatusCode)
	default:
		return "", apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("identity provider rejected account creation (status %d)", resp.StatusCode), readAPIError(resp.Body))
	}
}

func (c *Client) DeleteAccount(ctx context.Context, subjectID string) error {
	defer observe("delete_account", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.adminUsersURL+"/"+url.PathEscape(subjectID), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete account request: %w", err)
	}

	resp, err := c.adminClient.Do(req)
	if err != nil {
		return unavailable("delete account", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK:
		c.logger.Info("Keycloak account deleted", slog.String("subject_id", subjectID))
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.KindNotFound, "identity provider account not found", nil)
	case resp.StatusCode >= 500:
		return unavailableStatus("delete account", resp.StatusCode)
	default:
		return apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("identity provider rejected account deletion (status %d)", resp.StatusCode), readAPIError(resp.Body))
	}
}

func (c *Client) GetAccount(ctx context.Context, subjectID string) (*domain.ProviderProfile, error) {
	defer observe("get_account", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.adminUsersURL+"/"+url.PathEscape(subjectID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build get account request: %w", err)
	}

	resp, err := c.adminClient.Do(req)
	if err != nil {
		return nil, unavailable("get account", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var rep userRepresentation
		if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
			return nil, fmt.Errorf("failed to decode account representation: %w", err)
		}
		return toProviderProfile(rep), nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.New(apperrors.KindNotFound, "identity provider account not found", apperrors.ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, unavailableStatus("get account", resp.StatusCode)
	default:
		return nil, apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("identity provider rejected account lookup (status %d)", resp.StatusCode), readAPIError(resp.Body))
	}
}

func (c *Client) FindAccountByEmail(ctx context.Context, email string) (*domain.ProviderProfile, error) {
	defer observe("find_account_by_email", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lookup := c.adminUsersURL + "?exact=true&email=" + url.QueryEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookup, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build account lookup request: %w", err)
	}

	resp, err := c.adminClient.Do(req)
	if err != nil {
		return nil, unavailable("find account by email", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, unavailableStatus("find account by email", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("identity provider rejected account lookup (status %d)", resp.StatusCode), readAPIError(resp.Body))
	}

	var reps []userRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&reps); err != nil {
		return nil, fmt.Errorf("failed to decode account lookup response: %w", err)
	}
	if len(reps) == 0 {
		return nil, apperrors.New(apperrors.KindNotFound, "identity provider account not found", apperrors.ErrNotFound)
	}
	return toProviderProfile(reps[0]), nil
}

func (c *Client) ResetPassword(ctx context.Context, subjectID string, password string) error {
	defer observe("reset_password", time.Now())
	body, err := json.Marshal(credentialRepresentation{Type: "password", Value: password, Temporary: false})
	if err != nil {
		return fmt.Errorf("failed to marshal credential representation: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.adminUsersURL + "/" + url.PathEscape(subjectID) + "/reset-password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build reset password request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.adminClient.Do(req)
	if err != nil {
		return unavailable("reset password", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK:
		c.logger.Info("Keycloak credential reset", slog.String("subject_id", subjectID))
		return nil
	case resp.StatusCode >= 500:
		return unavailableStatus("reset password", resp.StatusCode)
	default:
		return apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("identity provider rejected credential reset (status %d)", resp.StatusCode), readAPIError(resp.Body))
	}
}

func (c *Client) PasswordGrant(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"username":      {username},
		"password":      {password},
	}
	pair, err := c.exchange(ctx, form)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthenticationFailed {
			// Explicit rejection of the supplied credentials.
			return nil, apperrors.New(apperrors.KindAuthenticationFailed, "invalid username or password", err)
		}
		return nil, err
	}
	return pair, nil
}

func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {refreshToken},
	}
	pair, err := c.exchange(ctx, form)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthenticationFailed {
			return nil, apperrors.New(apperrors.KindTokenRefreshFailed, "refresh token expired or revoked", err)
		}
		return nil, err
	}
	return pair, nil
}

// exchange posts a form to the realm token endpoint and maps rejection to
// KindAuthenticationFailed; grant-specific callers re-kind as needed.
func (c *Client) exchange(ctx context.Context, form url.Values) (*domain.TokenPair, error) {
	defer observe("token_exchange", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("token exchange", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var tr tokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			return nil, fmt.Errorf("failed to decode token response: %w", err)
		}
		return &domain.TokenPair{
			AccessToken:  tr.AccessToken,
			RefreshToken: tr.RefreshToken,
			ExpiresIn:    tr.ExpiresIn,
		}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, apperrors.New(apperrors.KindAuthenticationFailed, "identity provider rejected the grant", readAPIError(resp.Body))
	case resp.StatusCode >= 500:
		return nil, unavailableStatus("token exchange", resp.StatusCode)
	default:
		return nil, apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("unexpected token endpoint status %d", resp.StatusCode), readAPIError(resp.Body))
	}
}

func (c *Client) FetchUserInfo(ctx context.Context, accessToken string) (*portsidp.UserInfo, error) {
	defer observe("userinfo", time.Now())
	// Userinfo is on the request hot path; keep its budget tighter than the
	// admin calls.
	timeout := c.timeout
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("userinfo", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var info portsidp.UserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
		}
		return &info, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.New(apperrors.KindAuthenticationFailed, "access token rejected by identity provider", nil)
	case resp.StatusCode >= 500:
		return nil, unavailableStatus("userinfo", resp.StatusCode)
	default:
		return nil, apperrors.New(apperrors.KindIdentityProvider,
			fmt.Sprintf("unexpected userinfo status %d", resp.StatusCode), readAPIError(resp.Body))
	}
}

func toProviderProfile(rep userRepresentation) *domain.ProviderProfile {
	return &domain.ProviderProfile{
		SubjectID:        rep.ID,
		Username:         rep.Username,
		Email:            rep.Email,
		FirstName:        rep.FirstName,
		LastName:         rep.LastName,
		EmailVerified:    rep.EmailVerified,
		Enabled:          rep.Enabled,
		CreatedTimestamp: rep.CreatedTimestamp,
	}
}

// unavailable maps transport failures (timeouts, connection errors) to the
// retryable taxonomy kind.
func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.New(apperrors.KindIdentityProviderUnavailable,
		fmt.Sprintf("identity provider unreachable during %s", op), err)
}

func unavailableStatus(op string, status int) error {
	return apperrors.New(apperrors.KindIdentityProviderUnavailable,
		fmt.Sprintf("identity provider returned status %d during %s", status, op), nil)
}

// readAPIError drains a small amount of the error body for logging context.
// The content never reaches a caller; AppError messages stay safe.
func readAPIError(r io.Reader) error {
	b, err := io.ReadAll(io.LimitReader(r, 2048))
	if err != nil || len(b) == 0 {
		return nil
	}
	return errors.New(string(b))
}
