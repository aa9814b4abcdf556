package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Keycloak connection
	KeycloakServerURL string
	KeycloakRealm     string
	// Confidential client used for the token endpoint grants.
	KeycloakClientID     string
	KeycloakClientSecret string
	// Service account client with realm user-management roles, used for the
	// admin REST API via the client-credentials flow.
	KeycloakAdminClientID     string
	KeycloakAdminClientSecret string
	// Bounded timeout applied to every IdP network call.
	KeycloakTimeout time.Duration

	// Google Sign-In
	GoogleClientID string

	// Secret key for deriving the deterministic federated credential.
	FederatedSecretKey string

	FrontendBaseURL string
}

// RealmURL returns the base URL of the configured realm,
// e.g. https://idp.example.com/realms/shikshaspace.
func (c *Config) RealmURL() string {
	return strings.TrimRight(c.KeycloakServerURL, "/") + "/realms/" + c.KeycloakRealm
}

// TokenURL returns the realm's OIDC token endpoint.
func (c *Config) TokenURL() string {
	return c.RealmURL() + "/protocol/openid-connect/token"
}

// UserInfoURL returns the realm's OIDC userinfo endpoint.
func (c *Config) UserInfoURL() string {
	return c.RealmURL() + "/protocol/openid-connect/userinfo"
}

// AdminUsersURL returns the admin REST endpoint for realm users.
func (c *Config) AdminUsersURL() string {
	return strings.TrimRight(c.KeycloakServerURL, "/") + "/admin/realms/" + c.KeycloakRealm + "/users"
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("KEYCLOAK_SERVER_URL", "http://localhost:8081")
	viper.SetDefault("KEYCLOAK_REALM", "shikshaspace")
	viper.SetDefault("KEYCLOAK_CLIENT_ID", "user-service")
	viper.SetDefault("KEYCLOAK_CLIENT_SECRET", "")
	viper.SetDefault("KEYCLOAK_ADMIN_CLIENT_ID", "user-service-admin")
	viper.SetDefault("KEYCLOAK_ADMIN_CLIENT_SECRET", "")
	viper.SetDefault("KEYCLOAK_TIMEOUT", "10s")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("FEDERATED_SECRET_KEY", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.KeycloakServerURL = viper.GetString("KEYCLOAK_SERVER_URL")
	cfg.KeycloakRealm = viper.GetString("KEYCLOAK_REALM")
	cfg.KeycloakClientID = viper.GetString("KEYCLOAK_CLIENT_ID")
	cfg.KeycloakClientSecret = viper.GetString("KEYCLOAK_CLIENT_SECRET")
	cfg.KeycloakAdminClientID = viper.GetString("KEYCLOAK_ADMIN_CLIENT_ID")
	cfg.KeycloakAdminClientSecret = viper.GetString("KEYCLOAK_ADMIN_CLIENT_SECRET")
	if cfg.KeycloakClientSecret == "" {
		log.Println("Warning: KEYCLOAK_CLIENT_SECRET not set. Token endpoint grants will fail.")
	}
	if cfg.KeycloakAdminClientSecret == "" {
		log.Println("Warning: KEYCLOAK_ADMIN_CLIENT_SECRET not set. Admin API calls will fail.")
	}

	timeoutStr := viper.GetString("KEYCLOAK_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 10 * time.Second
		if timeoutStr != "" {
			log.Printf("Warning: Invalid value for KEYCLOAK_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
		}
	}
	cfg.KeycloakTimeout = timeout

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google Sign-In will not function.")
	}

	cfg.FederatedSecretKey = viper.GetString("FEDERATED_SECRET_KEY")
	if cfg.FederatedSecretKey == "" {
		return nil, fmt.Errorf("FEDERATED_SECRET_KEY must be set: it anchors the deterministic credential for federated logins")
	}

	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	return cfg, nil
}
