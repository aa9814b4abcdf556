package keycloak_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshaspace/user-service/internal/adapters/idp/keycloak"
	"github.com/shikshaspace/user-service/internal/apperrors"
	portsidp "github.com/shikshaspace/user-service/internal/core/ports/idp"
	"github.com/shikshaspace/user-service/internal/platform/config"
)

// fakeRealm serves the subset of the Keycloak API the client touches: the
// realm token endpoint, userinfo, and the admin users resource.
type fakeRealm struct {
	createStatus int
	subjectID    string
	accounts     map[string]map[string]any // subjectID -> representation
}

func newFakeRealm() *fakeRealm {
	return &fakeRealm{
		createStatus: http.StatusCreated,
		subjectID:    "new-subject-id",
		accounts:     map[string]map[string]any{},
	}
}

func (f *fakeRealm) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /realms/test/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form := string(body)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(form, "grant_type=client_credentials"):
			json.NewEncoder(w).Encode(map[string]any{"access_token": "admin-token", "expires_in": 300})
		case strings.Contains(form, "grant_type=password") && strings.Contains(form, "password=goodpass"):
			json.NewEncoder(w).Encode(map[string]any{"access_token": "access", "refresh_token": "refresh", "expires_in": 300})
		case strings.Contains(form, "grant_type=refresh_token") && strings.Contains(form, "refresh_token=good-refresh"):
			json.NewEncoder(w).Encode(map[string]any{"access_token": "access2", "refresh_token": "refresh2", "expires_in": 300})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
		}
	})

	mux.HandleFunc("GET /realms/test/protocol/openid-connect/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sub": "kc-sub-1", "email": "jdoe@example.com", "preferred_username": "jdoe",
		})
	})

	mux.HandleFunc("POST /admin/realms/test/users", func(w http.ResponseWriter, r *http.Request) {
		if f.createStatus != http.StatusCreated {
			w.WriteHeader(f.createStatus)
			return
		}
		w.Header().Set("Location", r.Host+"/admin/realms/test/users/"+f.subjectID)
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("GET /admin/realms/test/users", func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		var out []map[string]any
		for _, rep := range f.accounts {
			if rep["email"] == email {
				out = append(out, rep)
			}
		}
		if out == nil {
			out = []map[string]any{}
		}
		json.NewEncoder(w).Encode(out)
	})

	mux.HandleFunc("GET /admin/realms/test/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		rep, ok := f.accounts[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(rep)
	})

	mux.HandleFunc("DELETE /admin/realms/test/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := f.accounts[r.PathValue("id")]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.accounts, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("PUT /admin/realms/test/users/{id}/reset-password", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func newTestClient(t *testing.T, srv *httptest.Server) *keycloak.Client {
	cfg := &config.Config{
		KeycloakServerURL:         srv.URL,
		KeycloakRealm:             "test",
		KeycloakClientID:          "user-service",
		KeycloakClientSecret:      "client-secret",
		KeycloakAdminClientID:     "user-service-admin",
		KeycloakAdminClientSecret: "admin-secret",
		KeycloakTimeout:           5 * time.Second,
	}
	return keycloak.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateAccount_ParsesSubjectFromLocation(t *testing.T) {
	realm := newFakeRealm()
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	subjectID, err := client.CreateAccount(context.Background(), portsidp.NewAccount{
		Username: "jdoe", Email: "jdoe@example.com", Password: "goodpass",
	})

	require.NoError(t, err)
	assert.Equal(t, "new-subject-id", subjectID)
}

func TestCreateAccount_Conflict(t *testing.T) {
	realm := newFakeRealm()
	realm.createStatus = http.StatusConflict
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.CreateAccount(context.Background(), portsidp.NewAccount{Username: "jdoe", Email: "jdoe@example.com"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
}

func TestCreateAccount_ServerErrorIsUnavailable(t *testing.T) {
	realm := newFakeRealm()
	realm.createStatus = http.StatusBadGateway
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.CreateAccount(context.Background(), portsidp.NewAccount{Username: "jdoe", Email: "jdoe@example.com"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindIdentityProviderUnavailable, apperrors.KindOf(err))
}

func TestPasswordGrant(t *testing.T) {
	realm := newFakeRealm()
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	pair, err := client.PasswordGrant(context.Background(), "jdoe", "goodpass")
	require.NoError(t, err)
	assert.Equal(t, "access", pair.AccessToken)
	assert.Equal(t, "refresh", pair.RefreshToken)
	assert.Equal(t, int64(300), pair.ExpiresIn)

	_, err = client.PasswordGrant(context.Background(), "jdoe", "wrongpass")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthenticationFailed, apperrors.KindOf(err))
}

func TestRefreshGrant(t *testing.T) {
	realm := newFakeRealm()
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	pair, err := client.RefreshGrant(context.Background(), "good-refresh")
	require.NoError(t, err)
	assert.Equal(t, "access2", pair.AccessToken)

	_, err = client.RefreshGrant(context.Background(), "stale-refresh")
	require.Error(t, err)
	// A rejected refresh grant carries its own kind, not bad-credentials.
	assert.Equal(t, apperrors.KindTokenRefreshFailed, apperrors.KindOf(err))
}

func TestGetAccount(t *testing.T) {
	realm := newFakeRealm()
	realm.accounts["kc-sub-1"] = map[string]any{
		"id": "kc-sub-1", "username": "jdoe", "email": "jdoe@example.com",
		"firstName": "John", "lastName": "Doe", "enabled": true, "emailVerified": true,
	}
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	profile, err := client.GetAccount(context.Background(), "kc-sub-1")
	require.NoError(t, err)
	assert.Equal(t, "kc-sub-1", profile.SubjectID)
	assert.Equal(t, "jdoe", profile.Username)
	assert.True(t, profile.EmailVerified)

	_, err = client.GetAccount(context.Background(), "kc-sub-missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindAccountByEmail(t *testing.T) {
	realm := newFakeRealm()
	realm.accounts["kc-sub-1"] = map[string]any{
		"id": "kc-sub-1", "username": "jdoe", "email": "jdoe@example.com",
	}
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	profile, err := client.FindAccountByEmail(context.Background(), "jdoe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "kc-sub-1", profile.SubjectID)

	_, err = client.FindAccountByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	realm := newFakeRealm()
	realm.accounts["kc-sub-1"] = map[string]any{"id": "kc-sub-1"}
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	require.NoError(t, client.DeleteAccount(context.Background(), "kc-sub-1"))

	err := client.DeleteAccount(context.Background(), "kc-sub-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestResetPassword(t *testing.T) {
	realm := newFakeRealm()
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	assert.NoError(t, client.ResetPassword(context.Background(), "kc-sub-1", "new-password"))
}

func TestFetchUserInfo(t *testing.T) {
	realm := newFakeRealm()
	srv := httptest.NewServer(realm.handler(t))
	defer srv.Close()
	client := newTestClient(t, srv)

	info, err := client.FetchUserInfo(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, "kc-sub-1", info.Subject)
	assert.Equal(t, "jdoe", info.PreferredUsername)

	_, err = client.FetchUserInfo(context.Background(), "stale")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthenticationFailed, apperrors.KindOf(err))
}

func TestUnreachableProviderIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	client := newTestClient(t, srv)

	_, err := client.PasswordGrant(context.Background(), "jdoe", "goodpass")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindIdentityProviderUnavailable, apperrors.KindOf(err))
}
